package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/prefs"
)

func addPrefs(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change local display preferences.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showPrefs(cmd, v)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current preferences.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showPrefs(cmd, v)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one preference (font, view or hide-preview).",
		Example: `
snotectl prefs set font georgia
snotectl prefs set view gallery
snotectl prefs set hide-preview true
`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"font", "view", "hide-preview"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, v)
			if err != nil {
				return err
			}
			pr, err := s.prefs.Update(func(p *prefs.Preferences) error {
				return setPref(p, args[0], args[1])
			})
			if err != nil {
				return err
			}
			printer{out: s.out}.preferences(pr)
			return nil
		},
	})

	topLevel.AddCommand(cmd)
}

func showPrefs(cmd *cobra.Command, v *viper.Viper) error {
	s, err := open(cmd, v)
	if err != nil {
		return err
	}
	pr, err := s.prefs.Load()
	if err != nil {
		return err
	}
	printer{out: s.out}.preferences(pr)
	return nil
}

func setPref(p *prefs.Preferences, key, value string) error {
	switch key {
	case "font":
		f, err := prefs.ParseFont(value)
		if err != nil {
			return err
		}
		p.Font = f
	case "view":
		m, err := prefs.ParseViewMode(value)
		if err != nil {
			return err
		}
		p.ViewMode = m
	case "hide-preview":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: hide-preview expects true or false, got %q", domain.ErrValidation, value)
		}
		p.HidePreview = b
	default:
		return fmt.Errorf("%w: unknown preference %q", domain.ErrValidation, key)
	}
	return nil
}
