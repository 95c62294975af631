package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color" // Colored level labels
	"github.com/mattn/go-isatty"
)

// Logger prints leveled, colorized messages to a single writer.
//
// Unlike a package-level logger, a Logger is constructed once at startup with the
// verbose flag and handed to every component that needs to report progress.
// Each message is prefixed with its level label, e.g. "[INFO] Cloning mclangc".
type Logger struct {
	out     io.Writer
	verbose bool

	errorColor *color.Color
	warnColor  *color.Color
	infoColor  *color.Color
	noteColor  *color.Color
	helpColor  *color.Color
	cmdColor   *color.Color
	debugColor *color.Color
}

// New creates a Logger writing to out.
// Colors are only emitted when out is a terminal; buffers and pipes get plain text.
func New(out io.Writer, verbose bool) *Logger {
	l := &Logger{
		out:        out,
		verbose:    verbose,
		errorColor: color.New(color.FgRed),
		warnColor:  color.New(color.FgHiMagenta),
		infoColor:  color.New(color.FgGreen),
		noteColor:  color.New(color.FgBlue),
		helpColor:  color.New(color.FgCyan),
		cmdColor:   color.New(color.FgMagenta),
		debugColor: color.New(color.FgCyan),
	}

	if !IsTerminal(out) {
		for _, c := range []*color.Color{l.errorColor, l.warnColor, l.infoColor, l.noteColor, l.helpColor, l.cmdColor, l.debugColor} {
			c.DisableColor()
		}
	}
	return l
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() *Logger {
	return New(io.Discard, false)
}

// IsTerminal reports whether w is an *os.File attached to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Verbose reports whether verbose output was requested.
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Error logs a failure in red.
func (l *Logger) Error(format string, a ...any) {
	l.print(l.errorColor, "[ERROR]", format, a...)
}

// Warn logs a warning in bright magenta.
func (l *Logger) Warn(format string, a ...any) {
	l.print(l.warnColor, "[WARN]", format, a...)
}

// Info logs progress in green.
func (l *Logger) Info(format string, a ...any) {
	l.print(l.infoColor, "[INFO]", format, a...)
}

// Note logs supplementary information in blue.
func (l *Logger) Note(format string, a ...any) {
	l.print(l.noteColor, "[NOTE]", format, a...)
}

// Help logs remediation guidance in cyan.
func (l *Logger) Help(format string, a ...any) {
	l.print(l.helpColor, "[HELP]", format, a...)
}

// Cmd echoes an external command line before it runs.
func (l *Logger) Cmd(format string, a ...any) {
	l.print(l.cmdColor, "[CMD]", format, a...)
}

// Debug logs only when verbose output is enabled.
func (l *Logger) Debug(format string, a ...any) {
	if !l.verbose {
		return
	}
	l.print(l.debugColor, "[DEBUG]", format, a...)
}

func (l *Logger) print(c *color.Color, label, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	_, _ = c.Fprint(l.out, label)
	_, _ = fmt.Fprintf(l.out, " %s\n", strings.TrimRight(msg, "\n"))
}

// CodeBlock renders text with every line prefixed by its 1-based line number,
// e.g. "1 | error: could not compile".
func CodeBlock(text string) string {
	var b strings.Builder
	lines := strings.Split(strings.TrimRight(text, "\r\n"), "\n")
	for i, line := range lines {
		fmt.Fprintf(&b, "%d | %s\n", i+1, strings.TrimRight(line, "\r"))
	}
	return b.String()
}
