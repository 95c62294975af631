package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is returned when a manifest file is unreadable or inconsistent.
var ErrInvalidManifest = errors.New("invalid manifest")

// ErrUnknownComponent is returned when --component names no known component.
var ErrUnknownComponent = errors.New("unknown component")

// AllComponents selects every component of the manifest.
const AllComponents = "all"

// Default returns the built-in manifest for the mclang toolchain.
func Default() Manifest {
	return Manifest{
		VCS: "git",
		Build: BuildTool{
			Program:   "cargo",
			Args:      []string{"build", "--release"},
			OutputDir: "target/release",
		},
		Branches:      []string{"dev", "stable", "main-v2"},
		DefaultBranch: "stable",
		InstallDir:    ".mclang",
		Hints: map[string][]string{
			"cargo": {
				"To install the rust toolchain follow the instructions on https://rustup.rs/",
				"Or run `curl --proto '=https' --tlsv1.2 -sSf https://sh.rustup.rs | sh`",
			},
		},
		Components: []Component{
			{Name: "mclangc", Repo: "https://github.com/mc-lang/mclangc.git", Binary: "mclangc"},
			{Name: "mclang-up", Repo: "https://github.com/mc-lang/mclang-up.git", Binary: "mclang-up"},
			{Name: "mclang-pkm", Repo: "https://github.com/mc-lang/mclang-pkm.git", Binary: "mclang-pkm"},
			{Name: "libmc", Repo: "https://github.com/mc-lang/libmc.git", SkipBuild: true, Stdlib: "."},
		},
	}
}

// LoadManifest reads a YAML manifest from path. An empty path yields Default().
// Fields left out of the file keep their default values.
func LoadManifest(path string) (Manifest, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidManifest, path, err)
	}
	return ParseManifest(raw)
}

// ParseManifest decodes a YAML manifest, applies defaults and validates it.
func ParseManifest(raw []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: failed to unmarshal: %v", ErrInvalidManifest, err)
	}

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (m *Manifest) applyDefaults() {
	def := Default()

	if m.VCS == "" {
		m.VCS = def.VCS
	}
	if m.Build.Program == "" {
		m.Build = def.Build
	}
	if len(m.Branches) == 0 {
		m.Branches = def.Branches
	}
	if m.DefaultBranch == "" {
		m.DefaultBranch = m.Branches[0]
		if m.HasBranch(def.DefaultBranch) {
			m.DefaultBranch = def.DefaultBranch
		}
	}
	if m.InstallDir == "" {
		m.InstallDir = def.InstallDir
	}
	if m.Hints == nil {
		m.Hints = def.Hints
	}
	if len(m.Components) == 0 {
		m.Components = def.Components
	}
}

// Validate checks the manifest for inconsistencies that would only surface mid-install.
func (m Manifest) Validate() error {
	if m.VCS == "" || m.Build.Program == "" {
		return fmt.Errorf("%w: vcs and build program are required", ErrInvalidManifest)
	}
	if !m.HasBranch(m.DefaultBranch) {
		return fmt.Errorf("%w: default branch %q is not one of %v", ErrInvalidManifest, m.DefaultBranch, m.Branches)
	}

	seen := make(map[string]bool)
	for i, c := range m.Components {
		switch {
		case c.Name == "":
			return fmt.Errorf("%w: component #%d has no name", ErrInvalidManifest, i+1)
		case c.Name == AllComponents:
			return fmt.Errorf("%w: %q is reserved", ErrInvalidManifest, AllComponents)
		case seen[c.Name]:
			return fmt.Errorf("%w: duplicate component %q", ErrInvalidManifest, c.Name)
		case c.Repo == "" && c.Archive == "":
			return fmt.Errorf("%w: component %q needs a repo or an archive", ErrInvalidManifest, c.Name)
		case !filepath.IsLocal(c.Dir()):
			return fmt.Errorf("%w: component %q path %q must stay inside the components directory", ErrInvalidManifest, c.Name, c.Dir())
		case c.Stdlib != "" && !filepath.IsLocal(c.Stdlib):
			return fmt.Errorf("%w: component %q stdlib %q must be relative", ErrInvalidManifest, c.Name, c.Stdlib)
		case c.StripComponents < 0:
			return fmt.Errorf("%w: component %q strip_components cannot be negative", ErrInvalidManifest, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// Select returns the components named by --component, in manifest order.
// "all" (or an empty name) selects every component.
func (m Manifest) Select(name string) ([]Component, error) {
	if name == "" || name == AllComponents {
		return m.Components, nil
	}
	for _, c := range m.Components {
		if c.Name == name {
			return []Component{c}, nil
		}
	}

	names := make([]string, 0, len(m.Components))
	for _, c := range m.Components {
		names = append(names, c.Name)
	}
	return nil, fmt.Errorf("%w %q, expected one of %v or %q", ErrUnknownComponent, name, names, AllComponents)
}
