package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mclang-up/internal/logger"
)

// ErrInvalidInput is returned when an answer is outside the accepted set.
var ErrInvalidInput = errors.New("invalid input")

// Default is the answer assumed for a yes/no question when the user just presses enter.
type Default int

const (
	// NoDefault requires an explicit answer.
	NoDefault Default = iota
	// DefaultYes treats an empty answer as yes.
	DefaultYes
	// DefaultNo treats an empty answer as no.
	DefaultNo
)

// Prompter asks questions on out and reads one line per answer from in.
// Reads block until a full line (or EOF) is available.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	label *color.Color
}

// New creates a Prompter reading answers from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	label := color.New(color.FgCyan)
	if !logger.IsTerminal(out) {
		label.DisableColor()
	}
	return &Prompter{in: bufio.NewReader(in), out: out, label: label}
}

// String prints msg and returns the next input line without its line ending.
// EOF is treated as an empty answer.
func (p *Prompter) String(msg string) (string, error) {
	_, _ = p.label.Fprint(p.out, "prompt")
	_, _ = fmt.Fprintf(p.out, ": %s ", msg)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Default asks msg and returns def when the answer is empty.
func (p *Prompter) Default(msg, def string) (string, error) {
	answer, err := p.String(fmt.Sprintf("%s. Leave blank for default [%s]:", msg, def))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return def, nil
	}
	return strings.TrimSpace(answer), nil
}

// Confirm asks a yes/no question. An empty answer resolves to def; any answer that
// is neither yes nor no (or empty with NoDefault) yields ErrInvalidInput.
func (p *Prompter) Confirm(msg string, def Default) (bool, error) {
	hint := "[y/n]"
	switch def {
	case DefaultYes:
		hint = "[Y/n]"
	case DefaultNo:
		hint = "[y/N]"
	}

	answer, err := p.String(fmt.Sprintf("%s %s", msg, hint))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "ye", "yes", "t", "true":
		return true, nil
	case "n", "no", "nah", "f", "false":
		return false, nil
	case "":
		switch def {
		case DefaultYes:
			return true, nil
		case DefaultNo:
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: unknown answer %q, please answer 'yes' or 'no'", ErrInvalidInput, answer)
}
