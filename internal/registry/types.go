// Package registry provides the versioned module catalog: immutable
// descriptor tables loaded from JSON or TOML snapshots, pure lookups, and a
// resolver that selects the snapshot matching a requested platform version.
package registry

import "fmt"

// Edition describes which ERP edition a module ships with.
type Edition string

const (
	// EditionCommunity modules are freely installable
	EditionCommunity Edition = "community"
	// EditionEnterprise modules need an enterprise subscription
	EditionEnterprise Edition = "enterprise"
	// EditionUnknown is only valid as a *requested* edition, never in a descriptor
	EditionUnknown Edition = "unknown"
)

// ParseEdition parses a user-supplied edition string.
func ParseEdition(s string) (Edition, error) {
	switch Edition(s) {
	case EditionCommunity, EditionEnterprise, EditionUnknown:
		return Edition(s), nil
	default:
		return "", fmt.Errorf("invalid edition %q (must be community, enterprise, or unknown)", s)
	}
}

// BaseModuleID is the platform module every installation requires. The
// validator injects it into any plan that lacks it.
const BaseModuleID = "base"

// Descriptor is one registry entry describing an installable module.
type Descriptor struct {
	ModuleID              string            `json:"module_id"`
	DisplayName           string            `json:"display_name"`
	Domain                string            `json:"domain,omitempty"`
	Description           string            `json:"description,omitempty"`
	Dependencies          []string          `json:"dependencies,omitempty"`
	Edition               Edition           `json:"edition"`
	CommunityAlternatives []string          `json:"community_alternatives,omitempty"`
	SupportedVersions     []string          `json:"supported_versions,omitempty"`
	ConflictsWith         []string          `json:"conflicts_with,omitempty"`
	ConfigurationSteps    []string          `json:"configuration_steps,omitempty"`
	DefaultSettings       map[string]string `json:"default_settings,omitempty"`
	EstimatedMinutes      int               `json:"estimated_minutes,omitempty"`
}
