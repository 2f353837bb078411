package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/listview"
	"github.com/MrSnakeDoc/snote/internal/prefs"
)

func addList(topLevel *cobra.Command, v *viper.Viper) {
	var (
		query, icon, sort, view string
		noPreview               bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List entries, newest first.",
		Example: `
snotectl list
snotectl list -q groceries --sort title
snotectl list --icon coffee --view gallery
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, v)
			if err != nil {
				return err
			}
			key, err := listview.ParseSort(sort)
			if err != nil {
				return err
			}
			ic, err := parseIcon(icon)
			if err != nil {
				return err
			}
			pr, err := s.prefs.Load()
			if err != nil {
				return err
			}
			if view != "" {
				if pr.ViewMode, err = prefs.ParseViewMode(view); err != nil {
					return err
				}
			}
			if noPreview {
				pr.HidePreview = true
			}

			ctx, cancel := s.context()
			defer cancel()
			q := s.entries.Entries(ctx)
			if q.Err != nil {
				return q.Err
			}
			printer{out: s.out, prefs: pr}.entries(listview.Apply(q.Data, listview.Options{Query: query, Icon: ic, Sort: key}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Only show entries whose title or preview contains this text.")
	cmd.Flags().StringVar(&icon, "icon", "", "Only show entries with this icon.")
	cmd.Flags().StringVar(&sort, "sort", string(listview.SortDate), "Sort by date, title or index.")
	cmd.Flags().StringVar(&view, "view", "", "Override the preferred view (list or gallery).")
	cmd.Flags().BoolVar(&noPreview, "no-preview", false, "Hide previews.")

	topLevel.AddCommand(cmd)
}

func addGet(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one entry.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, v)
			if err != nil {
				return err
			}
			ctx, cancel := s.context()
			defer cancel()
			q := s.entries.Entry(ctx, args[0])
			if q.Err != nil {
				return q.Err
			}
			printer{out: s.out}.entry(q.Data)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

// contentFlags is the shared --content/--file pair.
type contentFlags struct {
	content string
	file    string
}

func (c *contentFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.content, "content", "", "HTML content of the entry.")
	cmd.Flags().StringVarP(&c.file, "file", "f", "", `Read the content from a file ("-" for stdin).`)
	cmd.MarkFlagsMutuallyExclusive("content", "file")
}

func (c *contentFlags) set(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("content") || cmd.Flags().Changed("file")
}

func (c *contentFlags) read(cmd *cobra.Command) (string, error) {
	switch c.file {
	case "":
		return c.content, nil
	case "-":
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	default:
		raw, err := os.ReadFile(c.file)
		if err != nil {
			return "", fmt.Errorf("read content file: %w", err)
		}
		return string(raw), nil
	}
}

func addCreate(topLevel *cobra.Command, v *viper.Viper) {
	var (
		title, icon string
		content     contentFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an entry.",
		Example: `
snotectl create --content "<p>Hello world</p>"
snotectl create --title "Trip" --icon plane -f trip.html
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, v)
			if err != nil {
				return err
			}
			body, err := content.read(cmd)
			if err != nil {
				return err
			}
			ic, err := parseIcon(icon)
			if err != nil {
				return err
			}
			in := domain.CreateInput{Title: title, Content: body, Icon: ic}
			if err := in.Validate(); err != nil {
				return err
			}

			ctx, cancel := s.context()
			defer cancel()
			e, err := s.entries.Create(ctx, in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(s.out, "created entry #%d %s (%s)\n", e.Index, e.ID, e.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Entry title (defaults to the creation time).")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon key, see 'snotectl icons'.")
	content.add(cmd)

	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command, v *viper.Viper) {
	var (
		title, icon string
		content     contentFlags
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the title, content or icon of an entry.",
		Example: `
snotectl edit 3f1c... --title "Renamed"
snotectl edit 3f1c... --icon ""          # clear the icon
snotectl edit 3f1c... --title ""         # reset the title to the creation time
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, v)
			if err != nil {
				return err
			}

			var in domain.UpdateInput
			if cmd.Flags().Changed("title") {
				in.Title = &title
			}
			if cmd.Flags().Changed("icon") {
				ic, err := parseIcon(icon)
				if err != nil {
					return err
				}
				in.Icon = &ic
			}
			if content.set(cmd) {
				body, err := content.read(cmd)
				if err != nil {
					return err
				}
				in.Content = &body
			}
			if in.Title == nil && in.Icon == nil && in.Content == nil {
				return errors.New("nothing to change: set --title, --icon, --content or --file")
			}
			if err := in.Validate(); err != nil {
				return err
			}

			ctx, cancel := s.context()
			defer cancel()
			e, err := s.entries.Update(ctx, args[0], in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(s.out, "updated entry #%d %s (%s)\n", e.Index, e.ID, e.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title; empty resets it to the creation time.")
	cmd.Flags().StringVar(&icon, "icon", "", "New icon key; empty clears it.")
	content.add(cmd)

	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:     "delete ID...",
		Aliases: []string{"rm"},
		Short:   "Delete entries.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, v)
			if err != nil {
				return err
			}
			ctx, cancel := s.context()
			defer cancel()

			var errs []error
			for _, id := range args {
				if err := s.entries.Delete(ctx, id); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", id, err))
					continue
				}
				_, _ = fmt.Fprintf(s.out, "deleted %s\n", id)
			}
			return errors.Join(errs...)
		},
	}
	topLevel.AddCommand(cmd)
}

func addCopy(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:     "copy ID",
		Aliases: []string{"cp"},
		Short:   `Duplicate an entry as "<title> (Copy)".`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, v)
			if err != nil {
				return err
			}
			ctx, cancel := s.context()
			defer cancel()
			e, err := s.entries.Copy(ctx, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(s.out, "created entry #%d %s (%s)\n", e.Index, e.ID, e.Title)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addIcons(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:   "icons",
		Short: "List the available icons and which ones are in use.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, v)
			if err != nil {
				return err
			}
			ctx, cancel := s.context()
			defer cancel()
			set, err := s.api.Icons(ctx)
			if err != nil {
				return err
			}
			printer{out: s.out}.icons(set)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func parseIcon(s string) (domain.Icon, error) {
	ic := domain.Icon(s)
	if ic != "" && !ic.Valid() {
		return "", fmt.Errorf("%w: unknown icon %q", domain.ErrValidation, s)
	}
	return ic, nil
}
