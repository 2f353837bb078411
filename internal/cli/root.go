// Package cli implements snotectl, the command-line client of the snote server.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MrSnakeDoc/snote/internal/client"
	"github.com/MrSnakeDoc/snote/internal/prefs"
)

const (
	envPrefix      = "SNOTECTL"
	defaultServer  = "http://localhost:8080"
	defaultDataDir = "~/.snote"
)

// session is what a command needs at run time, resolved from flags and environment.
type session struct {
	entries *client.Cache
	api     *client.Client
	prefs   *prefs.Store
	out     io.Writer
	timeout time.Duration
}

func (s *session) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// New returns the snotectl root command.
func New() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("server", defaultServer)
	v.SetDefault("data-dir", defaultDataDir)
	v.SetDefault("timeout", 10*time.Second)

	cmd := &cobra.Command{
		Use:           "snotectl",
		Short:         "Read and write snote journal entries from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("server", defaultServer, "Base URL of the snote server.")
	flags.String("data-dir", defaultDataDir, "Directory holding local preferences.")
	flags.Duration("timeout", 10*time.Second, "Timeout for each request.")
	_ = v.BindPFlags(flags)

	AddCommands(cmd, v)
	return cmd
}

func AddCommands(topLevel *cobra.Command, v *viper.Viper) {
	addList(topLevel, v)
	addGet(topLevel, v)
	addCreate(topLevel, v)
	addEdit(topLevel, v)
	addDelete(topLevel, v)
	addCopy(topLevel, v)
	addIcons(topLevel, v)
	addPrefs(topLevel, v)
	addVersion(topLevel)
}

// open builds the session for cmd. No request is made here, so "prefs"
// works without a reachable server.
func open(cmd *cobra.Command, v *viper.Viper) (*session, error) {
	dir, err := homedir.Expand(v.GetString("data-dir"))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	api := client.New(v.GetString("server"), &http.Client{Timeout: timeout})
	return &session{
		entries: client.NewCache(api),
		api:     api,
		prefs:   prefs.Open(dir),
		out:     cmd.OutOrStdout(),
		timeout: timeout,
	}, nil
}
