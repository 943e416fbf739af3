package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestPrompter(in string) (*prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return newPrompter(strings.NewReader(in), &out), &out
}

func TestPrompter_Line(t *testing.T) {
	p, out := newTestPrompter("  hello world \n")
	got, err := p.line("Name?")
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if out.String() != "Name?\n> " {
		t.Fatalf("unexpected prompt %q", out.String())
	}
}

func TestPrompter_LineEOF(t *testing.T) {
	p, _ := newTestPrompter("lastline")
	got, err := p.line("Name?")
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if _, err := p.line("Again?"); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestPrompter_Multiline(t *testing.T) {
	p, _ := newTestPrompter("a\r\nb\n\n\n")
	got, err := p.multiline("Enter text")
	if err != nil {
		t.Fatal(err)
	}
	if want := "a\nb"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	p, _ = newTestPrompter("unterminated")
	if got, _ := p.multiline("Enter text"); got != "unterminated" {
		t.Fatalf("got %q", got)
	}
}

func TestPrompter_PasswordError(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	p, _ := newTestPrompter("")
	if _, err := p.password(); err == nil {
		t.Fatal("expected error")
	}
}

func TestPrompter_PasswordReadsFromSeam(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return []byte("s3cret"), nil
	}
	p, out := newTestPrompter("")
	pw, err := p.password()
	if err != nil || pw != "s3cret" {
		t.Fatalf("got %q, err=%v", pw, err)
	}
	if !strings.HasPrefix(out.String(), "Enter password: ") {
		t.Fatalf("unexpected prompt %q", out.String())
	}
}

func TestPrompter_CheckedAsksAgain(t *testing.T) {
	p, out := newTestPrompter("14/03/2025\n2025-02-30\n2025-03-14\n")
	got, err := p.checked("Date", false, isDate)
	if err != nil || got != "2025-03-14" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if n := strings.Count(out.String(), "expected YYYY-MM-DD"); n != 2 {
		t.Fatalf("expected 2 complaints, got %d in %q", n, out.String())
	}
}

func TestPrompter_CheckedOptional(t *testing.T) {
	p, _ := newTestPrompter("\n")
	got, err := p.checked("Start", true, isClock)
	if err != nil || got != "" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	p, _ = newTestPrompter("\n")
	if _, err := p.checked("Title", false, notEmpty); !errors.Is(err, io.EOF) {
		t.Fatalf("required answer at EOF: got %v", err)
	}
}

func TestPrompter_Appointment(t *testing.T) {
	p, _ := newTestPrompter("Dentist\n2025-03-14\n9:3\n09:30\n0\n45\nbring x-rays\n\n")
	f, err := p.appointment()
	if err != nil {
		t.Fatal(err)
	}
	if f.Title != "Dentist" || f.AppointmentDate != "2025-03-14" {
		t.Fatalf("unexpected fields %+v", f)
	}
	if f.StartTime == nil || *f.StartTime != "09:30" {
		t.Fatalf("start = %v", f.StartTime)
	}
	if f.DurationMinutes == nil || *f.DurationMinutes != 45 {
		t.Fatalf("duration = %v", f.DurationMinutes)
	}
	if f.Notes == nil || *f.Notes != "bring x-rays" {
		t.Fatalf("notes = %v", f.Notes)
	}
	if f.RecurrenceType != nil {
		t.Fatalf("recurrence = %q", *f.RecurrenceType)
	}
}

func TestPrompter_AppointmentSkipsOptionalFields(t *testing.T) {
	p, _ := newTestPrompter("Standup\n2025-05-01\n\n\n")
	f, err := p.appointment()
	if err != nil {
		t.Fatal(err)
	}
	if f.StartTime != nil || f.DurationMinutes != nil || f.Notes != nil || f.RecurrenceType != nil {
		t.Fatalf("expected optional fields to stay nil: %+v", f)
	}
}

func TestPrompter_AppointmentTruncatedInput(t *testing.T) {
	p, _ := newTestPrompter("Dentist\n")
	if _, err := p.appointment(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
