package runner

import (
	"os/exec"

	"mclang-up/internal/logger"
)

// Checker verifies that required programs can be invoked.
// It only reports; a missing program never stops the caller; the first
// invocation of that program fails instead.
type Checker struct {
	log   *logger.Logger
	hints map[string][]string

	// lookPath resolves a program name to an executable, exec.LookPath by default.
	lookPath func(string) (string, error)
}

// NewChecker creates a Checker. hints maps a program name to remediation lines
// printed when that program is missing; programs without hints get generic
// package manager instructions.
func NewChecker(log *logger.Logger, hints map[string][]string) *Checker {
	return &Checker{log: log, hints: hints, lookPath: exec.LookPath}
}

// Check logs whether program is available and how to install it if not.
func (c *Checker) Check(program string) {
	// Look the program up on PATH without running it
	path, err := c.lookPath(program)
	if err == nil {
		c.log.Debug("Program %q was found at %s", program, path)
		return
	}

	// Prefer the manifest's hints for this program over generic package manager advice
	c.log.Error("Program %q could not be found.", program)
	if lines, ok := c.hints[program]; ok && len(lines) > 0 {
		for _, line := range lines {
			c.log.Help("%s", line)
		}
		return
	}
	c.log.Help("Install %q with your package manager.", program)
	c.log.Help("    Ubuntu/Debian: sudo apt install %s", program)
	c.log.Help("    Arch: sudo pacman -Sy %s", program)
	c.log.Help("    macOS: brew install %s", program)
}
