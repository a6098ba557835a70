package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"modplan/internal/errors"
)

// snapshotFile is the on-disk shape of a registry snapshot. The top-level
// version_patterns declare which platform versions the snapshot covers;
// modules maps module id to its descriptor.
type snapshotFile struct {
	VersionPatterns []string                  `json:"version_patterns" toml:"version_patterns"`
	Modules         map[string]descriptorFile `json:"modules" toml:"modules"`
}

// descriptorFile is a descriptor as stored in a snapshot; the module id is
// the map key, not a field.
type descriptorFile struct {
	DisplayName           string            `json:"display_name" toml:"display_name"`
	Domain                string            `json:"domain" toml:"domain"`
	Description           string            `json:"description" toml:"description"`
	Dependencies          []string          `json:"dependencies" toml:"dependencies"`
	Edition               string            `json:"edition" toml:"edition"`
	CommunityAlternatives []string          `json:"community_alternatives" toml:"community_alternatives"`
	SupportedVersions     []string          `json:"supported_versions" toml:"supported_versions"`
	ConflictsWith         []string          `json:"conflicts_with" toml:"conflicts_with"`
	ConfigurationSteps    []string          `json:"configuration_steps" toml:"configuration_steps"`
	DefaultSettings       map[string]string `json:"default_settings" toml:"default_settings"`
	EstimatedMinutes      int               `json:"estimated_minutes" toml:"estimated_minutes"`
}

// Load reads a registry snapshot from a JSON or TOML file and validates it.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.RegistryMalformed, errors.StageRegistry,
			fmt.Sprintf("cannot read registry snapshot %s", path), err)
	}

	var file snapshotFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, errors.New(errors.RegistryMalformed, errors.StageRegistry,
			fmt.Sprintf("cannot decode registry snapshot %s", path), err)
	}

	if len(file.Modules) == 0 {
		return nil, errors.New(errors.RegistryMalformed, errors.StageRegistry,
			fmt.Sprintf("registry snapshot %s declares no modules", path), nil)
	}

	descriptors := make(map[string]Descriptor, len(file.Modules))
	for id, d := range file.Modules {
		edition := Edition(strings.ToLower(strings.TrimSpace(d.Edition)))
		if edition == "" {
			edition = EditionCommunity
		}
		descriptors[id] = Descriptor{
			ModuleID:              id,
			DisplayName:           d.DisplayName,
			Domain:                d.Domain,
			Description:           d.Description,
			Dependencies:          d.Dependencies,
			Edition:               edition,
			CommunityAlternatives: d.CommunityAlternatives,
			SupportedVersions:     d.SupportedVersions,
			ConflictsWith:         d.ConflictsWith,
			ConfigurationSteps:    d.ConfigurationSteps,
			DefaultSettings:       d.DefaultSettings,
			EstimatedMinutes:      d.EstimatedMinutes,
		}
	}

	reg := newRegistry(descriptors, path, file.VersionPatterns)
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}
