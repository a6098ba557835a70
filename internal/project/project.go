// Package project loads the optional modplan.toml project declaration: a
// per-engagement file pinning the client identity and planning targets so
// repeated runs do not depend on remembering the right flags.
package project

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// DeclarationFile is the well-known project declaration filename.
const DeclarationFile = "modplan.toml"

// Declaration pins planning defaults for one engagement. Zero values mean
// "not declared"; CLI flags always win over declared values.
type Declaration struct {
	ProjectID       string `toml:"project_id"`
	ClientName      string `toml:"client_name"`
	Edition         string `toml:"edition"`
	PlatformVersion string `toml:"platform_version"`
	RegistryDir     string `toml:"registry_dir"`
	OutputDir       string `toml:"output_dir"`
}

// Load reads the declaration from dir. A missing file is not an error; it
// returns an empty declaration.
func Load(dir string) (*Declaration, error) {
	path := filepath.Join(dir, DeclarationFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Declaration{}, nil
	}
	if err != nil {
		return nil, err
	}

	var decl Declaration
	if err := toml.Unmarshal(data, &decl); err != nil {
		return nil, err
	}
	return &decl, nil
}

// Save writes the declaration to dir.
func (d *Declaration) Save(dir string) error {
	data, err := toml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, DeclarationFile), data, 0644)
}

// Merge returns value when non-empty, otherwise fallback. Used to layer
// CLI flags over declared values.
func Merge(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
