package installer

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mclang-up/internal/config"
	"mclang-up/internal/logger"
	"mclang-up/internal/prompt"
	"mclang-up/internal/runner"
)

const testRoot = "/home/me/.mclang"

// fakeRunner records invocations and simulates git and cargo on an in-memory fs.
type fakeRunner struct {
	fs     afero.Fs
	calls  []runner.Invocation
	failOn func(inv runner.Invocation) bool
}

func (f *fakeRunner) Run(inv runner.Invocation) error {
	f.calls = append(f.calls, inv)
	if f.failOn != nil && f.failOn(inv) {
		return &runner.ExecError{Kind: runner.KindExit, Invocation: inv, Outcome: &runner.Outcome{ExitCode: 1}}
	}

	switch inv.Args[0] {
	case "clone":
		dir := filepath.Join(inv.Dir, inv.Args[len(inv.Args)-1])
		_ = f.fs.MkdirAll(filepath.Join(dir, ".git"), 0o755)
		_ = afero.WriteFile(f.fs, filepath.Join(dir, ".git", "HEAD"), []byte("ref: refs/heads/stable\n"), 0o644)
		_ = afero.WriteFile(f.fs, filepath.Join(dir, "README.md"), []byte("# "+filepath.Base(dir)), 0o644)
	case "build":
		name := filepath.Base(inv.Dir)
		_ = afero.WriteFile(f.fs, filepath.Join(inv.Dir, "target", "release", name), []byte("binary "+name), 0o755)
	}
	return nil
}

// commands renders each recorded call as "<base of dir>: <command line>".
func (f *fakeRunner) commands() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, filepath.Base(c.Dir)+": "+c.CommandLine())
	}
	return out
}

type recordingChecker struct {
	checked []string
}

func (c *recordingChecker) Check(program string) {
	c.checked = append(c.checked, program)
}

type fakeRevisions struct{}

func (fakeRevisions) Revision(dir string) (string, error) {
	return "rev-" + filepath.Base(dir), nil
}

type testEnv struct {
	fs      afero.Fs
	runner  *fakeRunner
	checker *recordingChecker
	log     *bytes.Buffer
}

func newTestEnv() *testEnv {
	fsys := afero.NewMemMapFs()
	return &testEnv{
		fs:      fsys,
		runner:  &fakeRunner{fs: fsys},
		checker: &recordingChecker{},
		log:     &bytes.Buffer{},
	}
}

// workflow builds a Workflow answering the prompts with answers, one per line.
func (e *testEnv) workflow(t *testing.T, m config.Manifest, comps []config.Component, answers ...string) *Workflow {
	t.Helper()
	log := logger.New(e.log, false)
	return &Workflow{
		Log:        log,
		Prompt:     prompt.New(strings.NewReader(strings.Join(answers, "\n")+"\n"), io.Discard),
		Checker:    e.checker,
		Installer:  NewInstaller(log, e.runner, e.fs, m),
		FS:         e.fs,
		Manifest:   m,
		Components: comps,
		Revisions:  fakeRevisions{},
		Home:       "/home/me",
		Now:        func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) },
	}
}
