package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/schedsync/internal/client/client"
	"github.com/dmitrijs2005/schedsync/internal/client/models"
)

func newLoginCommand(rt *runtime) *cobra.Command {
	var username string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name (prompted when empty)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from standard input")

	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		out := cmd.OutOrStdout()
		p := newPrompter(cmd.InOrStdin(), out)

		var err error
		if username == "" {
			if username, err = p.line("Username"); err != nil {
				return err
			}
		}

		var password string
		if passwordStdin {
			if password, err = p.readLine(); err != nil {
				return fmt.Errorf("read password: %w", err)
			}
		} else if password, err = p.password(); err != nil {
			return err
		}

		ctx, cancel := app.remote(ctx)
		defer cancel()
		acc, err := app.Auth.Login(ctx, username, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Logged in as %s (#%d)\n", ownerStyle(acc.ColorCode).Render(acc.Username), acc.ID)
		return nil
	})
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session; local data is kept",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		if err := app.Auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	})
	return cmd
}

func newStatusCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session, the sync watermark and unsent changes",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		out := cmd.OutOrStdout()

		s, err := app.Auth.Restore(ctx)
		switch {
		case errors.Is(err, client.ErrNotLoggedIn):
			fmt.Fprintln(out, "Not logged in")
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "Logged in as %s (#%d)\n", s.Username, s.AccountID)
		}

		wm, err := app.repos.Metadata.Get(ctx, models.MetaWatermark)
		if err != nil {
			return err
		}
		if wm == "" {
			wm = "never"
		}
		fmt.Fprintf(out, "Last sync: %s\n", wm)

		apts, err := app.repos.Appointments.Pending(ctx)
		if err != nil {
			return err
		}
		notes, err := app.repos.Notes.Pending(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Unsent changes: %d appointments, %d notes\n", len(apts), len(notes))
		return nil
	})
	return cmd
}

func newPingCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		ctx, cancel := app.remote(ctx)
		defer cancel()
		if err := app.Auth.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "pong")
		return nil
	})
	return cmd
}

func newSyncCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push local changes and pull everything changed since the last sync",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		ctx, cancel := app.remote(ctx)
		defer cancel()
		r, err := app.Sync.Sync(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d, pulled %d, removed %d (watermark %s)\n",
			r.Pushed, r.Pulled, r.Removed, r.Watermark)
		return nil
	})
	return cmd
}
