package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/dmitrijs2005/schedsync/internal/protocol"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// prompter asks questions on w and reads the answers from r.
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{r: bufio.NewReader(r), w: w}
}

// readLine returns one line without its line ending. A final line without a
// newline is returned as is; io.EOF is reported only when nothing was read.
func (p *prompter) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// line prints
//
//	Label
//	> _
//
// and returns the trimmed answer.
func (p *prompter) line(label string) (string, error) {
	if _, err := fmt.Fprint(p.w, label+"\n> "); err != nil {
		return "", err
	}
	s, err := p.readLine()
	return strings.TrimSpace(s), err
}

// password reads from the terminal without echo.
func (p *prompter) password() (string, error) {
	if _, err := fmt.Fprint(p.w, "Enter password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.w)
	if err != nil {
		return "", err
	}
	defer clear(pw)
	return string(pw), nil
}

// multiline collects lines until an empty one and joins them with '\n'.
func (p *prompter) multiline(label string) (string, error) {
	if _, err := fmt.Fprint(p.w, label+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := p.readLine()
		if err != nil || line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// checked asks again until check accepts the answer. An empty answer to an
// optional question is accepted without calling check.
func (p *prompter) checked(label string, optional bool, check func(string) error) (string, error) {
	for {
		s, err := p.line(label)
		if err != nil {
			return "", err
		}
		if s == "" && optional {
			return "", nil
		}
		if err := check(s); err != nil {
			fmt.Fprintf(p.w, "  %v\n", err)
			continue
		}
		return s, nil
	}
}

func notEmpty(s string) error {
	if s == "" {
		return errors.New("a value is required")
	}
	return nil
}

func isDate(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return errors.New("expected YYYY-MM-DD")
	}
	return nil
}

func isClock(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return errors.New("expected HH:MM")
	}
	return nil
}

func isMinutes(s string) error {
	if n, err := strconv.ParseInt(s, 10, 64); err != nil || n <= 0 {
		return errors.New("expected a positive number of minutes")
	}
	return nil
}

// appointment walks through every appointment field. Optional fields are
// left nil when skipped with an empty answer.
func (p *prompter) appointment() (protocol.AppointmentFields, error) {
	var f protocol.AppointmentFields
	var err error

	if f.Title, err = p.checked("Title", false, notEmpty); err != nil {
		return f, err
	}
	if f.AppointmentDate, err = p.checked("Date (YYYY-MM-DD)", false, isDate); err != nil {
		return f, err
	}

	start, err := p.checked("Start time (HH:MM, optional)", true, isClock)
	if err != nil {
		return f, err
	}
	f.StartTime = optional(start)

	duration, err := p.checked("Duration in minutes (optional)", true, isMinutes)
	if err != nil {
		return f, err
	}
	if duration != "" {
		n, _ := strconv.ParseInt(duration, 10, 64)
		f.DurationMinutes = &n
	}

	notes, err := p.line("Notes (optional)")
	if err != nil && !errors.Is(err, io.EOF) {
		return f, err
	}
	f.Notes = optional(notes)

	recurrence, err := p.line("Recurrence, e.g. weekly (optional)")
	if err != nil && !errors.Is(err, io.EOF) {
		return f, err
	}
	f.RecurrenceType = optional(recurrence)
	return f, nil
}
