// Package validator turns a moderated selection into the final plan:
// edition filtering with community substitution, breadth-first dependency
// closure, mandatory base-module injection, and a deterministic topological
// ordering. It only ever adds plan entries and audit events; moderated
// history is never rewritten.
package validator

import (
	"fmt"
	"sort"

	"modplan/internal/audit"
	"modplan/internal/errors"
	"modplan/internal/moderator"
	"modplan/internal/plan"
	"modplan/internal/registry"
)

// defaultEstimatedMinutes is used when a descriptor does not state an
// installation/configuration estimate.
const defaultEstimatedMinutes = 45

// Validator computes the dependency-complete, edition-compliant plan.
type Validator struct {
	registry *registry.Registry
	edition  registry.Edition
}

// New returns a validator for one run.
func New(reg *registry.Registry, edition registry.Edition) *Validator {
	return &Validator{registry: reg, edition: edition}
}

// pending carries a module through closure with its provenance.
type pending struct {
	moduleID  string
	priority  plan.Priority
	settings  map[string]string
	rationale string
	riskNotes []string
	autoAdded bool
	subFor    string
}

// Finalize validates the moderated selection and materializes the plan.
// Recoverable defects (unknown module references) become warnings; a
// dependency cycle in the registry is fatal because it means corrupt
// catalog data.
func (v *Validator) Finalize(selection moderator.Selection, log *audit.Log) (*plan.Plan, error) {
	result := &plan.Plan{
		Edition:        string(v.edition),
		RegistrySource: v.registry.Source(),
	}

	accepted := make(map[string]pending)

	// 1. Edition filter with community substitution.
	for _, mod := range selection.Modules {
		desc, known := v.registry.Descriptor(mod.ModuleID)
		if !known {
			v.warnUnknown(result, log, mod.ModuleID, "moderated candidate")
			continue
		}

		moduleID := mod.ModuleID
		substitutedFor := ""
		if desc.Edition == registry.EditionEnterprise && v.edition == registry.EditionCommunity {
			alt, ok := v.registry.CommunityAlternative(mod.ModuleID)
			if !ok {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("excluded enterprise module %q: no community alternative", mod.ModuleID))
				log.Append(audit.Event{
					Stage:    audit.StageValidate,
					ModuleID: mod.ModuleID,
					Decision: audit.DecisionRejected,
					Reason:   "enterprise-only under community edition with no alternative",
				})
				continue
			}
			log.Append(audit.Event{
				Stage:    audit.StageValidate,
				ModuleID: alt,
				Decision: audit.DecisionSubstituted,
				Reason:   fmt.Sprintf("community alternative substituted for enterprise module %s", mod.ModuleID),
			})
			substitutedFor = mod.ModuleID
			moduleID = alt
		}

		if existing, dup := accepted[moduleID]; dup {
			// A substitution can collide with a direct selection; keep the
			// stronger priority and merge rationales, settings, and risk
			// notes. On a settings key conflict the earlier selection wins
			// (selection.Modules arrives in sorted module-id order).
			if mod.Priority.Rank() < existing.priority.Rank() {
				existing.priority = mod.Priority
			}
			if mod.Rationale != "" && mod.Rationale != existing.rationale {
				if existing.rationale == "" {
					existing.rationale = mod.Rationale
				} else {
					existing.rationale += " " + mod.Rationale
				}
			}
			if len(mod.Settings) > 0 {
				// Copy before merging; the existing map may still be owned
				// by the moderated selection.
				merged := make(map[string]string, len(existing.settings)+len(mod.Settings))
				for k, val := range mod.Settings {
					merged[k] = val
				}
				for k, val := range existing.settings {
					merged[k] = val
				}
				existing.settings = merged
			}
			existing.riskNotes = append(existing.riskNotes, mod.RiskNotes...)
			accepted[moduleID] = existing
			log.Append(audit.Event{
				Stage:    audit.StageValidate,
				ModuleID: moduleID,
				Decision: audit.DecisionMerged,
				Reason:   fmt.Sprintf("selection %s collided with an existing plan entry and was merged", mod.ModuleID),
			})
			continue
		}

		accepted[moduleID] = pending{
			moduleID:  moduleID,
			priority:  mod.Priority,
			settings:  mod.Settings,
			rationale: mod.Rationale,
			riskNotes: mod.RiskNotes,
			subFor:    substitutedFor,
		}
	}

	// 2. Mandatory base injection.
	if _, ok := accepted[registry.BaseModuleID]; !ok {
		if _, known := v.registry.Descriptor(registry.BaseModuleID); known {
			accepted[registry.BaseModuleID] = pending{
				moduleID:  registry.BaseModuleID,
				priority:  plan.PriorityCritical,
				rationale: "Platform base module required by every installation.",
				autoAdded: true,
			}
			log.Append(audit.Event{
				Stage:    audit.StageValidate,
				ModuleID: registry.BaseModuleID,
				Decision: audit.DecisionInjected,
				Reason:   "mandatory base module",
			})
		}
	}

	// 3. Breadth-first dependency closure. The visited set guarantees
	// termination; a cycle among registry modules was already rejected at
	// load time, but guard again in case the registry was built elsewhere.
	queue := make([]string, 0, len(accepted))
	for id := range accepted {
		queue = append(queue, id)
	}
	sort.Strings(queue)

	visited := make(map[string]bool, len(accepted))
	steps := 0
	limit := v.registry.Len()*2 + len(queue)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		if steps++; steps > limit {
			return nil, errors.New(errors.RegistryIntegrity, errors.StageValidate,
				"dependency closure did not terminate; registry graph is corrupt", nil)
		}

		for _, dep := range v.registry.DependenciesOf(id) {
			if _, present := accepted[dep]; present {
				continue
			}
			if _, known := v.registry.Descriptor(dep); !known {
				v.warnUnknown(result, log, dep, fmt.Sprintf("dependency of %s", id))
				continue
			}
			accepted[dep] = pending{
				moduleID:  dep,
				priority:  plan.PriorityLow,
				rationale: fmt.Sprintf("Dependency required by %s.", id),
				autoAdded: true,
			}
			log.Append(audit.Event{
				Stage:    audit.StageValidate,
				ModuleID: dep,
				Decision: audit.DecisionInjected,
				Reason:   fmt.Sprintf("dependency required by %s", id),
			})
			queue = append(queue, dep)
		}
	}

	// 4. Topological order with deterministic tie-breaks.
	ordered, err := v.topoSort(accepted)
	if err != nil {
		return nil, err
	}

	for _, p := range ordered {
		desc, _ := v.registry.Descriptor(p.moduleID)
		minutes := desc.EstimatedMinutes
		if minutes == 0 {
			minutes = defaultEstimatedMinutes
		}

		rationale := p.rationale
		for _, note := range p.riskNotes {
			rationale += " [risk] " + note
		}

		result.Entries = append(result.Entries, plan.Entry{
			ModuleID:         p.moduleID,
			DisplayName:      desc.DisplayName,
			Domain:           desc.Domain,
			Priority:         p.priority,
			Dependencies:     desc.Dependencies,
			Settings:         mergedSettings(desc.DefaultSettings, p.settings),
			EstimatedMinutes: minutes,
			Rationale:        rationale,
			AutoAdded:        p.autoAdded,
			SubstitutedFor:   p.subFor,
		})
	}

	result.OpenQuestions = selection.OpenQuestions
	result.Risks = selection.Risks
	return result, nil
}

// warnUnknown records a recoverable unknown-module reference.
func (v *Validator) warnUnknown(result *plan.Plan, log *audit.Log, moduleID, context string) {
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("unknown module %q (%s) dropped", moduleID, context))
	log.Append(audit.Event{
		Stage:    audit.StageValidate,
		ModuleID: moduleID,
		Decision: audit.DecisionWarning,
		Reason:   fmt.Sprintf("unknown module reference (%s) dropped", context),
	})
}

// topoSort orders the accepted set so no module precedes a dependency.
// Kahn's algorithm with a deterministically ordered ready set: priority
// rank ascending (critical first), then module id ascending. A residual
// cycle is fatal catalog corruption.
func (v *Validator) topoSort(accepted map[string]pending) ([]pending, error) {
	indegree := make(map[string]int, len(accepted))
	dependents := make(map[string][]string, len(accepted))

	for id := range accepted {
		indegree[id] = 0
	}
	for id := range accepted {
		for _, dep := range v.registry.DependenciesOf(id) {
			if _, present := accepted[dep]; !present {
				continue // unknown deps already warned
			}
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	ready := make([]string, 0, len(accepted))
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	less := func(a, b string) bool {
		ra, rb := accepted[a].priority.Rank(), accepted[b].priority.Rank()
		if ra != rb {
			return ra < rb
		}
		return a < b
	}

	var ordered []pending
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		id := ready[0]
		ready = ready[1:]

		ordered = append(ordered, accepted[id])
		for _, dependent := range dependents[id] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(ordered) != len(accepted) {
		return nil, errors.New(errors.RegistryIntegrity, errors.StageValidate,
			"dependency cycle among selected modules; registry data is corrupt", nil)
	}
	return ordered, nil
}

// mergedSettings overlays agent-proposed settings on registry defaults.
// Agent intent wins over catalog defaults.
func mergedSettings(defaults, proposed map[string]string) map[string]string {
	if len(defaults) == 0 && len(proposed) == 0 {
		return nil
	}
	merged := make(map[string]string, len(defaults)+len(proposed))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range proposed {
		merged[k] = v
	}
	return merged
}
