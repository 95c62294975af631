package state

import (
	"encoding/json" // For JSON encoding and decoding of the receipt file
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// FileName is the receipt's name inside the install root.
const FileName = "receipt.json"

// ComponentState records how a single component was last installed or updated.
type ComponentState struct {
	Source   string `json:"source"`             // Repository URL or archive location
	Revision string `json:"revision,omitempty"` // Commit hash of the checkout, empty for archives
	Binary   string `json:"binary,omitempty"`   // Path of the staged executable, if any
}

// Receipt is written to the install root after every successful run so users (and
// later updates) can tell which branch and revisions are installed.
type Receipt struct {
	Root       string                    `json:"root"`
	Branch     string                    `json:"branch"`
	Mode       string                    `json:"mode"` // "install" or "update"
	UpdatedAt  time.Time                 `json:"updated_at"`
	Components map[string]ComponentState `json:"components"`
}

// Path returns the receipt location for an install root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads the receipt of root. A missing receipt yields an empty one.
func Load(fsys afero.Fs, root string) (*Receipt, error) {
	data, err := afero.ReadFile(fsys, Path(root))
	if errors.Is(err, fs.ErrNotExist) {
		return &Receipt{Root: root, Components: make(map[string]ComponentState)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}

	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse receipt %s: %w", Path(root), err)
	}

	// JSON may contain null for the map
	if r.Components == nil {
		r.Components = make(map[string]ComponentState)
	}
	return &r, nil
}

// Save writes r as indented JSON to its root.
func Save(fsys afero.Fs, r *Receipt) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	if err := afero.WriteFile(fsys, Path(r.Root), data, 0o644); err != nil {
		return fmt.Errorf("failed to write receipt %s: %w", Path(r.Root), err)
	}
	return nil
}
