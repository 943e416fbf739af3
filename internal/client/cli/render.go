package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/schedsync/internal/client/models"
	"github.com/dmitrijs2005/schedsync/internal/client/services"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// ownerStyle tints text with an account's display color.
func ownerStyle(color string) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	if color != "" {
		s = s.Foreground(lipgloss.Color(color))
	}
	return s
}

func serverRef(id int64) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("#%d", id)
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

func pendingMark(dirty bool) string {
	if dirty {
		return pendingStyle.Render("*")
	}
	return " "
}

func renderAppointments(w io.Writer, items []models.Appointment) {
	if len(items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No appointments"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("  %-8s %-6s %-10s %-5s %5s  %s", "ID", "SERVER", "DATE", "START", "MIN", "TITLE")))
	for _, a := range items {
		duration := ""
		if a.DurationMinutes != nil {
			duration = fmt.Sprint(*a.DurationMinutes)
		}
		owner := ""
		if a.Owner.Username != "" {
			owner = " " + ownerStyle(a.Owner.ColorCode).Render("@"+a.Owner.Username)
		}
		fmt.Fprintf(w, "%s %-8s %-6s %-10s %-5s %5s  %s%s\n",
			pendingMark(a.Dirty),
			services.ShortID(a.LocalID),
			serverRef(a.ServerID),
			a.AppointmentDate,
			deref(a.StartTime, ""),
			duration,
			a.Title,
			owner,
		)
	}
}

func renderAppointment(w io.Writer, a *models.Appointment) {
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render(a.Title), mutedStyle.Render(services.ShortID(a.LocalID)))
	fmt.Fprintf(w, "Server id:  %s\n", serverRef(a.ServerID))
	fmt.Fprintf(w, "Date:       %s %s\n", a.AppointmentDate, deref(a.StartTime, ""))
	if a.DurationMinutes != nil {
		fmt.Fprintf(w, "Duration:   %d min\n", *a.DurationMinutes)
	}
	if a.RecurrenceType != nil {
		fmt.Fprintf(w, "Recurrence: %s\n", *a.RecurrenceType)
	}
	if a.Owner.Username != "" {
		fmt.Fprintf(w, "Owner:      %s\n", ownerStyle(a.Owner.ColorCode).Render(a.Owner.Username))
	}
	if a.Notes != nil && *a.Notes != "" {
		fmt.Fprintf(w, "\n%s\n", *a.Notes)
	}
}

func firstLine(s string, limit int) string {
	s, _, _ = strings.Cut(s, "\n")
	if r := []rune(s); len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}

func renderNotes(w io.Writer, items []models.Note) {
	if len(items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No notes"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("  %-8s %-6s %-24s %s", "ID", "SERVER", "TITLE", "CONTENT")))
	for _, n := range items {
		title := firstLine(deref(n.Title, "(untitled)"), 24)
		fmt.Fprintf(w, "%s %-8s %-6s %s%s %s\n",
			pendingMark(n.Dirty),
			services.ShortID(n.LocalID),
			serverRef(n.ServerID),
			ownerStyle(deref(n.ColorCode, "")).Render(title),
			strings.Repeat(" ", max(0, 24-lipgloss.Width(title))),
			firstLine(deref(n.Content, ""), 48),
		)
	}
}

func renderNote(w io.Writer, n *models.Note) {
	title := deref(n.Title, "(untitled)")
	fmt.Fprintf(w, "%s %s\n", ownerStyle(deref(n.ColorCode, "")).Render(title), mutedStyle.Render(services.ShortID(n.LocalID)))
	fmt.Fprintf(w, "Server id: %s\n", serverRef(n.ServerID))
	if n.Content != nil && *n.Content != "" {
		fmt.Fprintf(w, "\n%s\n", *n.Content)
	}
}
