package installer

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"mclang-up/internal/config"
	"mclang-up/internal/logger"
	"mclang-up/internal/runner"
)

// Installer fetches and builds single components. Every external step goes through
// the Runner; the first failing step ends the component and its error is returned.
type Installer struct {
	log      *logger.Logger
	runner   runner.Runner
	fs       afero.Fs
	manifest config.Manifest

	// HTTPClient downloads archive sources given as URLs.
	HTTPClient *http.Client
}

// NewInstaller creates an Installer using r for git and build invocations and fsys
// for archive sources.
func NewInstaller(log *logger.Logger, r runner.Runner, fsys afero.Fs, manifest config.Manifest) *Installer {
	return &Installer{
		log:        log,
		runner:     r,
		fs:         fsys,
		manifest:   manifest,
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

// InstallComponent clones (or unpacks) comp into the components directory and builds it.
func (in *Installer) InstallComponent(cfg config.InstallConfig, comp config.Component) error {
	if comp.FromArchive() {
		in.log.Info("Unpacking %s", comp.Name)
		if err := in.unpack(cfg, comp); err != nil {
			return fmt.Errorf("failed to unpack %s: %w", comp.Name, err)
		}
	} else {
		// Clone the configured branch straight into components/<dir>
		in.log.Info("Cloning %s", comp.Name)
		err := in.runner.Run(runner.Invocation{
			Program: in.manifest.VCS,
			Args:    []string{"clone", "-b", cfg.Branch, comp.Repo, comp.Dir()},
			Dir:     cfg.ComponentsDir(),
			Mode:    runner.ModeFor(cfg.Verbose),
		})
		if err != nil {
			return fmt.Errorf("failed to clone %s: %w", comp.Name, err)
		}
	}
	return in.build(cfg, comp)
}

// UpdateComponent pulls the configured branch into an existing checkout of comp
// (or unpacks its archive again) and rebuilds it.
func (in *Installer) UpdateComponent(cfg config.InstallConfig, comp config.Component) error {
	if comp.FromArchive() {
		in.log.Info("Refreshing %s", comp.Name)
		// Archives have nothing to pull from, so start over from a fresh copy
		dir := cfg.ComponentDir(comp)
		if err := in.fs.RemoveAll(dir); err != nil {
			return fsError("remove", dir, err)
		}
		if err := in.unpack(cfg, comp); err != nil {
			return fmt.Errorf("failed to unpack %s: %w", comp.Name, err)
		}
	} else {
		// Pull the requested branch into the existing checkout
		in.log.Info("Updating %s", comp.Name)
		err := in.runner.Run(runner.Invocation{
			Program: in.manifest.VCS,
			Args:    []string{"pull", "origin", cfg.Branch},
			Dir:     cfg.ComponentDir(comp),
			Mode:    runner.ModeFor(cfg.Verbose),
		})
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", comp.Name, err)
		}
	}
	return in.build(cfg, comp)
}

func (in *Installer) build(cfg config.InstallConfig, comp config.Component) error {
	// Source-only components such as the core library are never built
	if comp.SkipBuild {
		in.log.Debug("Skipping build of %s", comp.Name)
		return nil
	}

	// Every component shares the manifest's build command, run inside its own directory
	in.log.Info("Building %s", comp.Name)
	err := in.runner.Run(runner.Invocation{
		Program: in.manifest.Build.Program,
		Args:    in.manifest.Build.Args,
		Dir:     cfg.ComponentDir(comp),
		Mode:    runner.ModeFor(cfg.Verbose),
	})
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", comp.Name, err)
	}
	return nil
}

// unpack extracts comp's archive into its component directory, downloading it first
// when the archive is given as an http(s) URL.
func (in *Installer) unpack(cfg config.InstallConfig, comp config.Component) error {
	src := comp.Archive
	if isURL(src) {
		u, _ := url.Parse(src)
		tmp := filepath.Join(cfg.ComponentsDir(), "."+comp.Name+"-download"+archiveExtension(u.Path))
		in.log.Debug("Downloading %s to %s", src, tmp)

		// Remove the download afterwards, including a partial one left by a failed transfer
		defer in.fs.Remove(tmp)
		if err := downloadFile(in.HTTPClient, in.fs, src, tmp); err != nil {
			return err
		}
		src = tmp
	}

	return ExtractArchive(in.fs, src, cfg.ComponentDir(comp), comp.StripComponents)
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
