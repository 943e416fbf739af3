package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/schedsync/internal/client/services"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
)

type noteFlags struct {
	title        string
	content      string
	color        string
	contentStdin bool
}

func (f *noteFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "note title")
	fs.StringVar(&f.content, "content", "", "note body")
	fs.StringVar(&f.color, "color", "", "display color as #rrggbb")
	fs.BoolVar(&f.contentStdin, "content-stdin", false, "read the body from standard input until an empty line")
}

// readContent replaces --content with standard input when --content-stdin
// is set.
func (f *noteFlags) readContent(cmd *cobra.Command) error {
	if !f.contentStdin {
		return nil
	}
	body, err := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).multiline("Note text")
	if err != nil {
		return err
	}
	f.content = body
	return nil
}

func (f *noteFlags) apply(fs *pflag.FlagSet, dst *protocol.NoteFields) {
	if fs.Changed("title") {
		dst.Title = optional(f.title)
	}
	if fs.Changed("color") {
		dst.ColorCode = optional(f.color)
	}
	if f.contentStdin || fs.Changed("content") {
		dst.Content = optional(f.content)
	}
}

func newNoteCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"n"},
		Short:   "Manage shared notes",
		Long: `Manage general notes. Notes are shared: every account can edit them.

Notes are referenced by the ID prefix shown in listings or by their
server id written as #<id>.`,
	}
	cmd.AddCommand(
		newNoteAddCommand(rt),
		newNoteListCommand(rt),
		newNoteShowCommand(rt),
		newNoteEditCommand(rt),
		newNoteRemoveCommand(rt),
	)
	return cmd
}

func newNoteAddCommand(rt *runtime) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
	}
	f.register(cmd.Flags())
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		if err := f.readContent(cmd); err != nil {
			return err
		}
		var fields protocol.NoteFields
		f.apply(cmd.Flags(), &fields)
		n, err := app.Notes.Add(ctx, fields)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", services.ShortID(n.LocalID))
		return nil
	})
	return cmd
}

func newNoteListCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		items, err := app.Notes.List(ctx)
		if err != nil {
			return err
		}
		renderNotes(cmd.OutOrStdout(), items)
		return nil
	})
	return cmd
}

func newNoteShowCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one note",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		n, err := app.Notes.Get(ctx, args[0])
		if err != nil {
			return err
		}
		renderNote(cmd.OutOrStdout(), n)
		return nil
	})
	return cmd
}

func newNoteEditCommand(rt *runtime) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the given fields of a note",
		Args:  cobra.ExactArgs(1),
	}
	f.register(cmd.Flags())
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		if err := f.readContent(cmd); err != nil {
			return err
		}
		n, err := app.Notes.Update(ctx, args[0], func(dst *protocol.NoteFields) {
			f.apply(cmd.Flags(), dst)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", services.ShortID(n.LocalID))
		return nil
	})
	return cmd
}

func newNoteRemoveCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		if err := app.Notes.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
	return cmd
}
