package installer

import (
	"path/filepath"

	"mclang-up/internal/config"
)

// stage copies built binaries into <root>/bin and standard library payloads into
// <root>/stdlib. It returns the staged binary path of every component that has one.
// Existing files are overwritten; nothing is removed first.
func (w *Workflow) stage(cfg config.InstallConfig, comps []config.Component) (map[string]string, error) {
	w.Log.Info("Creating '%s'", cfg.BinDir())
	if err := w.FS.MkdirAll(cfg.BinDir(), 0o755); err != nil {
		return nil, fsError("create directory", cfg.BinDir(), err)
	}

	// Binaries live at <component>/<output dir>/<binary> after the build
	staged := make(map[string]string)
	w.Log.Info("Copying binaries to '%s'", cfg.BinDir())
	for _, comp := range comps {
		if comp.Binary == "" {
			continue
		}
		src := filepath.Join(cfg.ComponentDir(comp), w.Manifest.Build.OutputDir, comp.Binary)
		dst := filepath.Join(cfg.BinDir(), comp.Binary)
		w.Log.Debug("Copying %s to %s", src, dst)
		if err := copyFile(w.FS, src, dst, 0o755); err != nil {
			return nil, err
		}
		staged[comp.Name] = dst
	}

	// Standard library payloads are merged into stdlib/ without VCS metadata
	for _, comp := range comps {
		if comp.Stdlib == "" {
			continue
		}
		src := filepath.Join(cfg.ComponentDir(comp), comp.Stdlib)
		w.Log.Info("Copying %s standard library to '%s'", comp.Name, cfg.StdlibDir())
		if err := copyDir(w.FS, src, cfg.StdlibDir(), skipVCS); err != nil {
			return nil, err
		}
	}
	return staged, nil
}
