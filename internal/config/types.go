package config

import (
	"path/filepath"
)

// Component is one independently cloned and built sub-project of the toolchain.
//   - Name: Logical name, also accepted by --component.
//   - Repo: Git URL cloned on install and pulled on update.
//   - Path: Directory under <root>/components; defaults to Name.
//   - Binary: Artifact produced by the build and staged into <root>/bin (optional).
//   - Stdlib: Directory inside the component staged into <root>/stdlib (optional).
//   - SkipBuild: Clone only, e.g. a pure-source core library.
//   - Archive/StripComponents: Unpack a source archive (path or URL) instead of cloning.
type Component struct {
	Name            string `yaml:"name"`
	Repo            string `yaml:"repo"`
	Path            string `yaml:"path"`
	Binary          string `yaml:"binary"`
	Stdlib          string `yaml:"stdlib"`
	SkipBuild       bool   `yaml:"skip_build"`
	Archive         string `yaml:"archive"`
	StripComponents int    `yaml:"strip_components"`
}

// Dir returns the component's directory relative to the components directory.
func (c Component) Dir() string {
	if c.Path != "" {
		return c.Path
	}
	return c.Name
}

// FromArchive reports whether the component's sources come from an archive rather than git.
func (c Component) FromArchive() bool {
	return c.Archive != ""
}

// BuildTool describes how every component is built.
type BuildTool struct {
	Program   string   `yaml:"program"`
	Args      []string `yaml:"args"`
	OutputDir string   `yaml:"output_dir"` // where Binary ends up, relative to the component
}

// Manifest is the static description of the toolchain: which components exist and
// which external tools build them. It is never mutated after loading.
type Manifest struct {
	VCS           string              `yaml:"vcs"`
	Build         BuildTool           `yaml:"build"`
	Branches      []string            `yaml:"branches"`
	DefaultBranch string              `yaml:"default_branch"`
	InstallDir    string              `yaml:"install_dir"` // default install root, relative to $HOME
	Hints         map[string][]string `yaml:"hints"`       // remediation lines per missing program
	Components    []Component         `yaml:"components"`
}

// HasBranch reports whether name is one of the accepted branches.
func (m Manifest) HasBranch(name string) bool {
	for _, b := range m.Branches {
		if b == name {
			return true
		}
	}
	return false
}

// InstallConfig is resolved once per run from user input and read-only afterwards.
type InstallConfig struct {
	Root    string
	Branch  string
	Verbose bool
}

// ComponentsDir is where component sources are cloned.
func (c InstallConfig) ComponentsDir() string {
	return filepath.Join(c.Root, "components")
}

// ComponentDir is the checkout of a single component.
func (c InstallConfig) ComponentDir(comp Component) string {
	return filepath.Join(c.ComponentsDir(), comp.Dir())
}

// BinDir holds the staged executables users put on their PATH.
func (c InstallConfig) BinDir() string {
	return filepath.Join(c.Root, "bin")
}

// StdlibDir holds the staged standard library sources.
func (c InstallConfig) StdlibDir() string {
	return filepath.Join(c.Root, "stdlib")
}
