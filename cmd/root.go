package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mclang-up/internal/config"
	"mclang-up/internal/exitcode"
	"mclang-up/internal/installer"
	"mclang-up/internal/logger"
	"mclang-up/internal/prompt"
	"mclang-up/internal/runner"
)

// options holds the parsed command line flags.
type options struct {
	install    bool
	update     bool
	verbose    bool
	component  string
	configPath string
}

// environment is everything the command touches outside of its flags.
// Tests swap in buffers, an in-memory filesystem and a fake runner.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	fs     afero.Fs
	home   func() (string, error)

	// newRunner builds the process runner once the logger exists.
	newRunner func(log *logger.Logger) runner.Runner
	revisions installer.RevisionReader
}

func defaultEnvironment() environment {
	return environment{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		fs:        afero.NewOsFs(),
		home:      os.UserHomeDir,
		newRunner: func(log *logger.Logger) runner.Runner { return runner.New(log) },
		revisions: installer.GitRevisions{},
	}
}

// newRootCmd creates the `mclang-up` command.
// Errors returned by the workflow carry an exit code (see exitcode.WithCode); flag
// and argument errors produced by cobra itself do not.
func newRootCmd(env environment) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "mclang-up",
		Short: "Install and update the mclang toolchain",
		Long: `mclang-up installs the mclang compiler, package manager and standard library
from source, or updates an existing installation in place.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(env, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.install, "install", "i", false, "Install mclang")
	flags.BoolVarP(&opts.update, "update", "u", false, "Update an existing mclang installation")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show every command and its output")
	flags.StringVarP(&opts.component, "component", "c", config.AllComponents, "Only install or update this component")
	flags.StringVar(&opts.configPath, "config", "", "YAML manifest replacing the built-in component list")

	cmd.MarkFlagsMutuallyExclusive("install", "update")
	cmd.MarkFlagsOneRequired("install", "update")
	return cmd
}

// run wires the workflow from opts and executes the requested mode.
func run(env environment, opts *options) error {
	log := logger.New(env.stdout, opts.verbose)

	manifest, err := config.LoadManifest(opts.configPath)
	if err != nil {
		log.Error("%v", err)
		return exitcode.WithCode(exitcode.UsageError, err)
	}
	comps, err := manifest.Select(opts.component)
	if err != nil {
		log.Error("%v", err)
		return exitcode.WithCode(exitcode.UsageError, err)
	}

	home, err := env.home()
	if err != nil {
		log.Error("Could not determine the home directory: %v", err)
		return exitcode.WithCode(exitcode.Failure, err)
	}

	if f, ok := env.stdin.(*os.File); ok && !logger.IsTerminal(f) {
		log.Debug("stdin is not a terminal, reading answers from it")
	}

	w := &installer.Workflow{
		Log:        log,
		Prompt:     prompt.New(env.stdin, env.stdout),
		Checker:    runner.NewChecker(log, manifest.Hints),
		Installer:  installer.NewInstaller(log, env.newRunner(log), env.fs, manifest),
		FS:         env.fs,
		Manifest:   manifest,
		Components: comps,
		Revisions:  env.revisions,
		Home:       home,
		Verbose:    opts.verbose,
	}

	mode, do := "Installation", w.Install
	if opts.update {
		mode, do = "Update", w.Update
	}

	err = do()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, installer.ErrUserAborted):
		log.Note("%s aborted, nothing was changed", mode)
		return exitcode.WithCode(exitcode.Aborted, err)
	default:
		log.Error("%v", err)
		log.Error("%s failed", mode)
		return exitcode.WithCode(exitcode.Failure, err)
	}
}

// execute runs the root command with args and returns the process exit code.
func execute(env environment, args []string) int {
	cmd := newRootCmd(env)
	cmd.SetArgs(args)
	cmd.SetIn(env.stdin)
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stdout)

	err := cmd.Execute()
	if err == nil {
		return exitcode.Success
	}

	var coded *exitcode.Error
	if !errors.As(err, &coded) {
		// Flag parsing, flag group and argument errors come straight from cobra.
		fmt.Fprintf(env.stdout, "Error: %v\n%s", err, cmd.UsageString())
		return exitcode.UsageError
	}
	if coded.Code == exitcode.UsageError {
		fmt.Fprint(env.stdout, cmd.UsageString())
	}
	return exitcode.DetermineExitCode(err)
}

// Execute runs mclang-up with the process arguments and exits with its status.
func Execute() {
	exitcode.Exit(execute(defaultEnvironment(), os.Args[1:]))
}
