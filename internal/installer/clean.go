package installer

import (
	"mclang-up/internal/config"
)

// cleanComponents removes previously installed checkouts of comps, and the staged
// standard library when one of them provides it. Missing directories are fine.
//
// This is the destructive step the confirmation prompt warns about: anything a
// user put inside these directories is lost.
func (w *Workflow) cleanComponents(cfg config.InstallConfig, comps []config.Component) error {
	w.Log.Info("Cleaning out old versions")

	stdlib := false
	for _, comp := range comps {
		dir := cfg.ComponentDir(comp)
		w.Log.Debug("Removing %s", dir)
		if err := w.FS.RemoveAll(dir); err != nil {
			return fsError("remove", dir, err)
		}
		if comp.Stdlib != "" {
			stdlib = true
		}
	}

	if stdlib {
		w.Log.Debug("Removing %s", cfg.StdlibDir())
		if err := w.FS.RemoveAll(cfg.StdlibDir()); err != nil {
			return fsError("remove", cfg.StdlibDir(), err)
		}
	}
	return nil
}
