package registry

import (
	"fmt"
	"sort"
	"strings"

	"modplan/internal/errors"
)

// Registry is an immutable module descriptor table. It is loaded once per
// run, shared read-only across every pipeline stage, and never mutated.
type Registry struct {
	descriptors map[string]Descriptor
	ids         []string // sorted module ids
	source      string   // file the snapshot was loaded from
	patterns    []string // version patterns this snapshot covers
}

// newRegistry indexes descriptors and freezes the id order.
func newRegistry(descriptors map[string]Descriptor, source string, patterns []string) *Registry {
	ids := make([]string, 0, len(descriptors))
	for id := range descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &Registry{
		descriptors: descriptors,
		ids:         ids,
		source:      source,
		patterns:    patterns,
	}
}

// Source returns the path the snapshot was loaded from.
func (r *Registry) Source() string {
	return r.source
}

// VersionPatterns returns the version patterns the snapshot declares.
func (r *Registry) VersionPatterns() []string {
	out := make([]string, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// Descriptor returns the descriptor for a module id.
func (r *Registry) Descriptor(moduleID string) (Descriptor, bool) {
	d, ok := r.descriptors[moduleID]
	return d, ok
}

// DependenciesOf returns the direct dependencies of a module, or nil when
// the module is unknown.
func (r *Registry) DependenciesOf(moduleID string) []string {
	d, ok := r.descriptors[moduleID]
	if !ok {
		return nil
	}
	deps := make([]string, len(d.Dependencies))
	copy(deps, d.Dependencies)
	return deps
}

// IsEnterprise reports whether a module requires the enterprise edition.
// Unknown modules are not enterprise.
func (r *Registry) IsEnterprise(moduleID string) bool {
	d, ok := r.descriptors[moduleID]
	return ok && d.Edition == EditionEnterprise
}

// CommunityAlternative returns the first listed alternative that exists in
// this registry and is itself a community module.
func (r *Registry) CommunityAlternative(moduleID string) (string, bool) {
	d, ok := r.descriptors[moduleID]
	if !ok {
		return "", false
	}
	for _, alt := range d.CommunityAlternatives {
		altDesc, ok := r.descriptors[alt]
		if ok && altDesc.Edition != EditionEnterprise {
			return alt, true
		}
	}
	return "", false
}

// ModuleIDs returns all module ids in lexical order.
func (r *Registry) ModuleIDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// IsCompatible reports whether a module supports the target platform
// version. A descriptor with no supported_versions supports everything.
func (r *Registry) IsCompatible(moduleID, targetVersion string) bool {
	d, ok := r.descriptors[moduleID]
	if !ok {
		return false
	}
	if len(d.SupportedVersions) == 0 {
		return true
	}
	for _, pattern := range d.SupportedVersions {
		if MatchesVersionPattern(pattern, targetVersion) {
			return true
		}
	}
	return false
}

// Validate checks structural integrity: every descriptor carries an edition
// and display name, and the dependency relation is acyclic. A cycle means
// corrupt catalog data and is fatal.
func (r *Registry) Validate() error {
	for _, id := range r.ids {
		d := r.descriptors[id]
		if d.DisplayName == "" {
			return errors.New(errors.RegistryMalformed, errors.StageRegistry,
				fmt.Sprintf("module %q has no display_name", id), nil)
		}
		if d.Edition != EditionCommunity && d.Edition != EditionEnterprise {
			return errors.New(errors.RegistryMalformed, errors.StageRegistry,
				fmt.Sprintf("module %q has invalid edition %q", id, d.Edition), nil)
		}
	}

	if cycle := r.findCycle(); cycle != nil {
		return errors.New(errors.RegistryIntegrity, errors.StageRegistry,
			fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")), nil)
	}
	return nil
}

// findCycle runs a colored DFS over the dependency graph and returns the
// first cycle found, or nil. Edges to unknown modules are skipped; those are
// a recoverable condition handled by the validator, not an integrity error.
func (r *Registry) findCycle() []string {
	const (
		white = 0 // unvisited
		grey  = 1 // on the current path
		black = 2 // fully explored
	)
	color := make(map[string]int, len(r.ids))
	var path []string

	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = grey
		path = append(path, id)

		for _, dep := range r.descriptors[id].Dependencies {
			if _, known := r.descriptors[dep]; !known {
				continue
			}
			switch color[dep] {
			case grey:
				// Found a back edge; slice the cycle out of the path
				for i, node := range path {
					if node == dep {
						return append(append([]string{}, path[i:]...), dep)
					}
				}
			case white:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	for _, id := range r.ids {
		if color[id] == white {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// MatchesVersionPattern reports whether a version pattern covers a target
// version. Supported pattern forms: exact ("17.0"), minor wildcard ("17.x",
// "17*"), and bare major ("17" matches "17" and "17.*").
func MatchesVersionPattern(pattern, target string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	target = strings.ToLower(strings.TrimSpace(target))
	if pattern == "" || target == "" {
		return false
	}
	if pattern == target {
		return true
	}
	if strings.HasSuffix(pattern, ".x") {
		return strings.HasPrefix(target, pattern[:len(pattern)-1])
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(target, pattern[:len(pattern)-1])
	}
	if !strings.Contains(pattern, ".") && isDigits(pattern) {
		return target == pattern || strings.HasPrefix(target, pattern+".")
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
