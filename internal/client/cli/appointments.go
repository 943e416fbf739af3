package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/schedsync/internal/client/services"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
)

// appointmentFlags mirrors protocol.AppointmentFields on the command line.
type appointmentFlags struct {
	title      string
	date       string
	start      string
	duration   int64
	notes      string
	recurrence string
}

func (f *appointmentFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "appointment title")
	fs.StringVar(&f.date, "date", "", "date as YYYY-MM-DD")
	fs.StringVar(&f.start, "start", "", "start time as HH:MM")
	fs.Int64Var(&f.duration, "duration", 0, "duration in minutes")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.StringVar(&f.recurrence, "recurrence", "", "recurrence rule, e.g. weekly")
}

// optional maps an empty flag value to nil.
func optional[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// apply copies the flags the user set onto dst.
func (f *appointmentFlags) apply(fs *pflag.FlagSet, dst *protocol.AppointmentFields) {
	if fs.Changed("title") {
		dst.Title = f.title
	}
	if fs.Changed("date") {
		dst.AppointmentDate = f.date
	}
	if fs.Changed("start") {
		dst.StartTime = optional(f.start)
	}
	if fs.Changed("duration") {
		dst.DurationMinutes = optional(f.duration)
	}
	if fs.Changed("notes") {
		dst.Notes = optional(f.notes)
	}
	if fs.Changed("recurrence") {
		dst.RecurrenceType = optional(f.recurrence)
	}
}

func newAppointmentCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointment",
		Aliases: []string{"appt", "a"},
		Short:   "Manage calendar appointments",
		Long: `Manage calendar appointments stored on this device.

Appointments are referenced by the ID prefix shown in listings or by
their server id written as #<id>. Changes are sent on the next sync.
Only the owner of an appointment can edit or delete it.`,
	}
	cmd.AddCommand(
		newAppointmentAddCommand(rt),
		newAppointmentListCommand(rt),
		newAppointmentShowCommand(rt),
		newAppointmentEditCommand(rt),
		newAppointmentRemoveCommand(rt),
	)
	return cmd
}

func newAppointmentAddCommand(rt *runtime) *cobra.Command {
	var f appointmentFlags
	var interactive bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an appointment",
		Args:  cobra.NoArgs,
		Example: `  schedsync appointment add --title "Dentist" --date 2025-03-14 --start 09:30 --duration 45
  schedsync appointment add -i`,
	}
	f.register(cmd.Flags())
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "ask for each field instead of reading flags")
	cmd.MarkFlagsMutuallyExclusive("interactive", "title")
	cmd.MarkFlagsMutuallyExclusive("interactive", "date")

	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		var fields protocol.AppointmentFields
		if interactive {
			var err error
			if fields, err = newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).appointment(); err != nil {
				return err
			}
		} else {
			f.apply(cmd.Flags(), &fields)
		}
		a, err := app.Appointments.Add(ctx, fields)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", services.ShortID(a.LocalID))
		return nil
	})
	return cmd
}

func newAppointmentListCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List appointments by date",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		items, err := app.Appointments.List(ctx)
		if err != nil {
			return err
		}
		renderAppointments(cmd.OutOrStdout(), items)
		return nil
	})
	return cmd
}

func newAppointmentShowCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one appointment",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		a, err := app.Appointments.Get(ctx, args[0])
		if err != nil {
			return err
		}
		renderAppointment(cmd.OutOrStdout(), a)
		return nil
	})
	return cmd
}

func newAppointmentEditCommand(rt *runtime) *cobra.Command {
	var f appointmentFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the given fields of an appointment",
		Args:  cobra.ExactArgs(1),
	}
	f.register(cmd.Flags())
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		a, err := app.Appointments.Update(ctx, args[0], func(dst *protocol.AppointmentFields) {
			f.apply(cmd.Flags(), dst)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", services.ShortID(a.LocalID))
		return nil
	})
	return cmd
}

func newAppointmentRemoveCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an appointment",
		Args:    cobra.ExactArgs(1),
	}
	cmd.RunE = rt.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		if err := app.Appointments.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
	return cmd
}
