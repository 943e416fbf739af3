package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/schedsync/internal/netx"
)

func newBackupCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload and list snapshots of the local database",
	}
	cmd.AddCommand(newBackupPushCommand(rt), newBackupListCommand(rt), newBackupFetchCommand(rt))
	return cmd
}

func newBackupPushCommand(rt *runtime) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload a consistent snapshot of the local database",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&notes, "notes", "", "description stored with the backup")

	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		if app.backups == nil {
			return ErrBackupsUnsupported
		}

		dir, err := os.MkdirTemp("", "schedsync-backup-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		name := fmt.Sprintf("schedsync-%s.db", time.Now().UTC().Format("20060102-150405"))
		path := filepath.Join(dir, name)
		if err := app.repos.Snapshot(ctx, path); err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		ctx, cancel := app.remote(ctx)
		defer cancel()
		resp, err := app.backups.UploadBackup(ctx, name, f, notes)
		if err != nil {
			return err
		}
		app.log.Info(ctx, "backup uploaded", "path", resp.FilePath)
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", resp.FilePath)
		return nil
	})
	return cmd
}

func newBackupListCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List uploaded backups",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		if app.backups == nil {
			return ErrBackupsUnsupported
		}
		ctx, cancel := app.remote(ctx)
		defer cancel()
		items, err := app.backups.ListBackups(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("No backups"))
			return nil
		}
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-5s %-20s %10s  %s", "ID", "DATE", "BYTES", "FILE")))
		for _, b := range items {
			fmt.Fprintf(out, "%-5d %-20s %10d  %s\n", b.ID, b.BackupDate, b.FileSize, b.FilePath)
			if b.Notes != "" {
				fmt.Fprintf(out, "      %s\n", mutedStyle.Render(b.Notes))
			}
		}
		return nil
	})
	return cmd
}

func newBackupFetchCommand(rt *runtime) *cobra.Command {
	var output string
	var direct bool
	cmd := &cobra.Command{
		Use:   "fetch <backup-id>",
		Short: "Download an uploaded backup",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default: ./backup-<id>.db)")
	cmd.Flags().BoolVar(&direct, "direct", false, "download straight from object storage through a presigned link")

	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		if app.backups == nil {
			return ErrBackupsUnsupported
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid backup id %q", args[0])
		}
		if output == "" {
			output = fmt.Sprintf("backup-%d.db", id)
		}

		f, err := os.Create(output)
		if err != nil {
			return err
		}

		ctx, cancel := app.remote(ctx)
		defer cancel()
		if direct {
			var url string
			if url, err = app.backups.BackupURL(ctx, id); err == nil {
				_, err = netx.DownloadPresignedURL(ctx, nil, url, f)
			}
		} else {
			err = app.backups.DownloadBackup(ctx, id, f)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(output)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", output)
		return nil
	})
	return cmd
}
