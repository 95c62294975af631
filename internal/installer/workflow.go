package installer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"mclang-up/internal/config"
	"mclang-up/internal/logger"
	"mclang-up/internal/prompt"
	"mclang-up/internal/state"
)

// Prompter asks the user for run options.
type Prompter interface {
	Default(msg, def string) (string, error)
	Confirm(msg string, def prompt.Default) (bool, error)
}

// DependencyChecker reports whether an external program is available.
type DependencyChecker interface {
	Check(program string)
}

// Workflow is the top-level install and update procedure. Both entry points are a
// fixed sequence of steps; the first failing step ends the run and its error is
// returned. Nothing done before the failure is rolled back.
type Workflow struct {
	Log       *logger.Logger
	Prompt    Prompter
	Checker   DependencyChecker
	Installer *Installer
	FS        afero.Fs
	Manifest  config.Manifest

	// Components are processed in order, one at a time.
	Components []config.Component

	// Revisions reads component revisions for the receipt; nil skips them.
	Revisions RevisionReader

	// Home is the user's home directory, used for the default install root.
	Home    string
	Verbose bool

	// Now stamps the receipt, time.Now when nil.
	Now func() time.Time
}

// Install performs a fresh installation of the selected components.
func (w *Workflow) Install() error {
	cfg, err := w.resolve()
	if err != nil {
		return err
	}

	w.Log.Info("Beginning installation of mclang %s to %s", cfg.Branch, cfg.Root)
	w.checkDependencies()

	// Make sure the install root and its components directory exist
	w.Log.Info("Creating '%s' if it doesn't exist", cfg.Root)
	if err := w.FS.MkdirAll(cfg.ComponentsDir(), 0o755); err != nil {
		return fsError("create directory", cfg.ComponentsDir(), err)
	}

	// Wipe previous checkouts so every clone starts from an empty directory
	if err := w.cleanComponents(cfg, w.Components); err != nil {
		return err
	}

	// Clone and build one component at a time; the first failure ends the run
	for _, comp := range w.Components {
		if err := w.Installer.InstallComponent(cfg, comp); err != nil {
			return err
		}
	}

	staged, err := w.stage(cfg, w.Components)
	if err != nil {
		return err
	}

	w.Log.Warn("Before you can use mclang you have to put 'export PATH=\"$PATH:%s\"' in your .bashrc or .zshrc (fish uses 'fish_add_path %s')",
		cfg.BinDir(), cfg.BinDir())

	// Everything is staged; a failed receipt write is only reported
	if err := w.writeReceipt(cfg, "install", staged); err != nil {
		w.Log.Warn("Could not record the installation: %v", err)
	}
	w.Log.Info("mclang was successfully installed")
	return nil
}

// Update pulls and rebuilds the selected components of an existing installation.
func (w *Workflow) Update() error {
	cfg, err := w.resolve()
	if err != nil {
		return err
	}

	w.Log.Info("Beginning update of mclang %s in %s", cfg.Branch, cfg.Root)
	w.checkDependencies()

	// Pull and rebuild in place, nothing is wiped on update
	for _, comp := range w.Components {
		if err := w.Installer.UpdateComponent(cfg, comp); err != nil {
			return err
		}
	}

	staged, err := w.stage(cfg, w.Components)
	if err != nil {
		return err
	}

	if err := w.writeReceipt(cfg, "update", staged); err != nil {
		w.Log.Warn("Could not record the update: %v", err)
	}
	w.Log.Info("mclang was successfully updated")
	return nil
}

// resolve asks for the install root and branch and for confirmation. No file is
// touched and no process is started before it returns successfully.
func (w *Workflow) resolve() (config.InstallConfig, error) {
	def := filepath.Join(w.Home, w.Manifest.InstallDir)
	root, err := w.Prompt.Default("Enter install location", def)
	if err != nil {
		return config.InstallConfig{}, err
	}
	root = w.expandHome(root)

	// The branch is shared by every component, so it must be one the manifest knows

	branches := strings.Join(w.Manifest.Branches, "', '")
	branch, err := w.Prompt.Default(fmt.Sprintf("Enter install branch, '%s'", branches), w.Manifest.DefaultBranch)
	if err != nil {
		return config.InstallConfig{}, err
	}
	if !w.Manifest.HasBranch(branch) {
		w.Log.Error("Unknown value %q, please answer '%s'", branch, branches)
		return config.InstallConfig{}, fmt.Errorf("%w %q", ErrInvalidBranch, branch)
	}

	// An empty answer means no; anything unrecognized is returned to the caller to report
	ok, err := w.Prompt.Confirm("Are you sure you want to proceed? This may delete your files if you put any in the mclang install location", prompt.DefaultNo)
	if err != nil {
		return config.InstallConfig{}, err
	}
	if !ok {
		return config.InstallConfig{}, ErrUserAborted
	}

	return config.InstallConfig{Root: root, Branch: branch, Verbose: w.Verbose}, nil
}

func (w *Workflow) expandHome(p string) string {
	if p == "~" {
		return w.Home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(w.Home, p[2:])
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// checkDependencies is advisory: missing programs are reported, never fatal.
func (w *Workflow) checkDependencies() {
	w.Log.Info("Checking dependencies")
	w.Checker.Check(w.Manifest.VCS)
	w.Checker.Check(w.Manifest.Build.Program)
}

// writeReceipt merges the processed components into <root>/receipt.json.
// Callers treat a failure as a warning: by the time it runs everything is staged.
func (w *Workflow) writeReceipt(cfg config.InstallConfig, mode string, staged map[string]string) error {
	receipt, err := state.Load(w.FS, cfg.Root)
	if err != nil {
		w.Log.Warn("Ignoring unreadable receipt: %v", err)
		receipt = &state.Receipt{Components: make(map[string]state.ComponentState)}
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	receipt.Root = cfg.Root
	receipt.Branch = cfg.Branch
	receipt.Mode = mode
	receipt.UpdatedAt = now().UTC()

	// Components not part of this run keep their previous entries
	for _, comp := range w.Components {
		cs := state.ComponentState{Source: comp.Repo, Binary: staged[comp.Name]}
		if comp.FromArchive() {
			cs.Source = comp.Archive
		} else if w.Revisions != nil {
			rev, err := w.Revisions.Revision(cfg.ComponentDir(comp))
			if err != nil {
				w.Log.Warn("Could not read revision of %s: %v", comp.Name, err)
			}
			cs.Revision = rev
		}
		receipt.Components[comp.Name] = cs
	}

	return fsError("write", state.Path(cfg.Root), state.Save(w.FS, receipt))
}
