package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/schedsync/internal/client/config"
)

// newApp is a test seam for NewApp.
var newApp = NewApp

// runtime holds what the root command resolves before a subcommand runs.
type runtime struct {
	configDir string
	cfg       *config.Config
}

// NewRootCommand builds the schedsync command tree.
func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:           "schedsync",
		Short:         "Shared calendar and notes that work offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir := rt.configDir
			if dir == "" {
				d, err := config.DefaultDir()
				if err != nil {
					return fmt.Errorf("resolve config dir: %w", err)
				}
				dir = d
			}
			cfg, err := config.Load(dir, cmd.Flags())
			if err != nil {
				return err
			}
			rt.cfg = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rt.configDir, "config-dir", "", "configuration directory (default: user config dir/schedsync)")
	for _, k := range config.Keys {
		pf.String(config.FlagName(k), "", "override the "+k+" setting")
	}

	root.AddCommand(
		newLoginCommand(rt),
		newLogoutCommand(rt),
		newStatusCommand(rt),
		newPingCommand(rt),
		newSyncCommand(rt),
		newAppointmentCommand(rt),
		newNoteCommand(rt),
		newBackupCommand(rt),
	)
	return root
}

// run opens the app for the duration of fn.
func (rt *runtime) run(fn func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		app, err := newApp(ctx, rt.cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := app.Close(); err == nil {
				err = cerr
			}
		}()
		return fn(ctx, cmd, app, args)
	}
}

// remote bounds a server round trip by the configured timeout.
func (a *App) remote(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.Timeout)
}
