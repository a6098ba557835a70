// Package moderator merges the independent agents' candidate sets into a
// single moderated selection. All resolution rules are deterministic: ties
// never fall back to arrival order, so the selection is identical whether
// agents ran sequentially or in parallel.
//
// Merge rules, in order of application per module id:
//   - one candidate: accepted as-is
//   - several candidates: settings merged by agent-priority rank (equal
//     ranks broken by agent name ascending), rationales unioned, confidence
//     is the maximum; a Conflict is recorded when settings actually disagree
//   - a risk-agent flag on a proposed module keeps the module but retains
//     the risk rationale (resolution "accepted")
//   - declared module conflicts resolve by confidence, ties by lexically
//     smaller module id
//   - enterprise modules without a community alternative under an
//     unresolved or community edition are annotated
//     "flagged_enterprise_unknown", never silently dropped here
package moderator

import (
	"fmt"
	"sort"
	"strings"

	"modplan/internal/agents"
	"modplan/internal/audit"
	"modplan/internal/plan"
	"modplan/internal/registry"
)

// FlagEnterpriseUnknown marks an enterprise module whose fate depends on an
// edition decision that has not been made (or a community alternative that
// does not exist).
const FlagEnterpriseUnknown = "flagged_enterprise_unknown"

// maxEvidence caps merged evidence excerpts per module.
const maxEvidence = 5

// Resolution states for recorded conflicts.
const (
	ResolutionAccepted = "accepted"
	ResolutionRejected = "rejected"
	ResolutionMerged   = "merged"
)

// Conflict records a moderated disagreement and how it was resolved.
type Conflict struct {
	ModuleID   string             `json:"module_id"`
	Candidates []agents.Candidate `json:"candidates"`
	Resolution string             `json:"resolution"`
	Reason     string             `json:"reason"`
}

// Moderated is one module surviving moderation, with everything the
// validator needs.
type Moderated struct {
	ModuleID   string            `json:"module_id"`
	Confidence float64           `json:"confidence"`
	Priority   plan.Priority     `json:"priority"`
	Settings   map[string]string `json:"settings,omitempty"`
	Rationale  string            `json:"rationale"`
	Evidence   []string          `json:"evidence,omitempty"`
	ProposedBy []string          `json:"proposed_by"`
	Flags      []string          `json:"flags,omitempty"`
	RiskNotes  []string          `json:"risk_notes,omitempty"`
}

// Selection is the moderator's complete output.
type Selection struct {
	Modules       []Moderated        `json:"modules"`
	Rejected      []Moderated        `json:"rejected,omitempty"`
	Conflicts     []Conflict         `json:"conflicts,omitempty"`
	Advisories    []agents.Advisory  `json:"advisories,omitempty"`
	OpenQuestions []string           `json:"open_questions,omitempty"`
	Risks         []string           `json:"risks,omitempty"`
}

// Moderator consolidates agent results against a registry for a requested
// edition and platform version.
type Moderator struct {
	registry *registry.Registry
	edition  registry.Edition
	version  string
}

// New returns a moderator for one run.
func New(reg *registry.Registry, edition registry.Edition, platformVersion string) *Moderator {
	return &Moderator{registry: reg, edition: edition, version: platformVersion}
}

// Consolidate merges all agent results into a Selection, appending every
// grouping decision to the audit log.
func (m *Moderator) Consolidate(results []agents.Result, log *audit.Log) Selection {
	buckets := make(map[string][]agents.Candidate)
	var advisories []agents.Advisory

	for _, result := range results {
		for _, cand := range result.Candidates {
			buckets[cand.ModuleID] = append(buckets[cand.ModuleID], cand)
		}
		advisories = append(advisories, result.Advisories...)
	}

	// Module-id order makes the merge independent of agent execution order.
	moduleIDs := make([]string, 0, len(buckets))
	for id := range buckets {
		moduleIDs = append(moduleIDs, id)
	}
	sort.Strings(moduleIDs)

	sortAdvisories(advisories)

	selection := Selection{Advisories: advisories}
	for _, adv := range advisories {
		selection.Risks = append(selection.Risks, adv.Note)
		log.Append(audit.Event{
			Stage:        audit.StageModerate,
			AgentID:      adv.AgentID,
			InputSignals: []string{adv.Key},
			Decision:     audit.DecisionAdvisory,
			Reason:       adv.Note,
		})
	}

	for _, id := range moduleIDs {
		m.moderateGroup(id, buckets[id], advisories, &selection, log)
	}

	sort.Strings(selection.OpenQuestions)
	selection.resolveDeclaredConflicts(m.registry, log)
	return selection
}

// moderateGroup applies the merge rules to all candidates for one module id.
func (m *Moderator) moderateGroup(moduleID string, candidates []agents.Candidate,
	advisories []agents.Advisory, selection *Selection, log *audit.Log) {

	merged, settingsConflict := mergeCandidates(moduleID, candidates)

	if len(candidates) > 1 {
		resolution := ResolutionMerged
		reason := fmt.Sprintf("%d agents agree on inclusion; settings merged by agent priority", len(candidates))
		if settingsConflict != "" {
			reason = settingsConflict
			selection.Conflicts = append(selection.Conflicts, Conflict{
				ModuleID:   moduleID,
				Candidates: candidates,
				Resolution: resolution,
				Reason:     reason,
			})
		}
		log.Append(audit.Event{
			Stage:        audit.StageModerate,
			ModuleID:     moduleID,
			InputSignals: merged.signalKeys(candidates),
			Decision:     audit.DecisionMerged,
			Reason:       reason,
		})
	}

	// A risk flag on a proposed module is an inclusion dispute; inclusion
	// wins, the risk rationale stays on the module.
	for _, adv := range advisories {
		for _, flagged := range adv.Modules {
			if flagged != moduleID {
				continue
			}
			merged.RiskNotes = append(merged.RiskNotes, adv.Note)
			selection.Conflicts = append(selection.Conflicts, Conflict{
				ModuleID:   moduleID,
				Candidates: candidates,
				Resolution: ResolutionAccepted,
				Reason:     fmt.Sprintf("risk agent %s flagged %s; included with retained risk annotation", adv.AgentID, moduleID),
			})
			log.Append(audit.Event{
				Stage:    audit.StageModerate,
				AgentID:  adv.AgentID,
				ModuleID: moduleID,
				Decision: audit.DecisionAccepted,
				Reason:   "inclusion favored over risk flag: " + adv.Note,
			})
		}
	}

	// Version compatibility is catalog data, not user input: an incompatible
	// module is rejected with an open question, the run continues.
	if _, known := m.registry.Descriptor(moduleID); known && !m.registry.IsCompatible(moduleID, m.version) {
		selection.Rejected = append(selection.Rejected, merged)
		selection.OpenQuestions = append(selection.OpenQuestions,
			fmt.Sprintf("Module %q is not mapped for platform version %s. Confirm an alternate module or custom scope.", moduleID, m.version))
		log.Append(audit.Event{
			Stage:    audit.StageModerate,
			ModuleID: moduleID,
			Decision: audit.DecisionRejected,
			Reason:   fmt.Sprintf("not compatible with platform version %s", m.version),
		})
		return
	}

	// Enterprise handling: under community or unresolved edition, a module
	// with no community alternative is annotated, never dropped here. The
	// validator's edition filter owns the actual drop/substitute decision.
	if m.registry.IsEnterprise(moduleID) && m.edition != registry.EditionEnterprise {
		if _, ok := m.registry.CommunityAlternative(moduleID); !ok {
			merged.Flags = append(merged.Flags, FlagEnterpriseUnknown)
			selection.OpenQuestions = append(selection.OpenQuestions,
				fmt.Sprintf("Module %q requires the enterprise edition and has no community alternative. Confirm edition or custom scope.", moduleID))
			log.Append(audit.Event{
				Stage:    audit.StageModerate,
				ModuleID: moduleID,
				Decision: audit.DecisionFlagged,
				Reason:   FlagEnterpriseUnknown,
			})
		}
	}

	if len(candidates) == 1 {
		log.Append(audit.Event{
			Stage:        audit.StageModerate,
			AgentID:      candidates[0].ProposedBy,
			ModuleID:     moduleID,
			InputSignals: candidates[0].Signals,
			Decision:     audit.DecisionAccepted,
			Reason:       "single candidate accepted",
		})
	}

	selection.Modules = append(selection.Modules, merged)
}

// mergeCandidates folds a candidate group into one Moderated entry.
// Returns a non-empty conflict description when settings actually disagreed.
func mergeCandidates(moduleID string, candidates []agents.Candidate) (Moderated, string) {
	ordered := make([]agents.Candidate, len(candidates))
	copy(ordered, candidates)
	// Agent priority decides settings conflicts; equal priorities fall back
	// to agent name, never to arrival order.
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := agents.Priority(ordered[i].ProposedBy), agents.Priority(ordered[j].ProposedBy)
		if pi != pj {
			return pi < pj
		}
		return ordered[i].ProposedBy < ordered[j].ProposedBy
	})

	merged := Moderated{
		ModuleID: moduleID,
		Priority: plan.PriorityLow,
	}

	settings := make(map[string]string)
	settingsConflict := ""
	rationales := make(map[string]bool)
	seenEvidence := make(map[string]bool)
	seenAgent := make(map[string]bool)

	for _, cand := range ordered {
		if cand.Confidence > merged.Confidence {
			merged.Confidence = cand.Confidence
		}

		priority := plan.Priority(cand.Priority)
		if !priority.Valid() {
			priority = plan.PriorityMedium
		}
		if priority.Rank() < merged.Priority.Rank() {
			merged.Priority = priority
		}

		for _, kv := range sortedSettings(cand.Settings) {
			existing, present := settings[kv.key]
			if !present {
				settings[kv.key] = kv.value
			} else if existing != kv.value {
				settingsConflict = fmt.Sprintf(
					"settings conflict on %q: kept %q from higher-priority agent, discarded %q from %s",
					kv.key, existing, kv.value, cand.ProposedBy)
			}
		}

		rationales[cand.Rationale] = true

		for _, ev := range cand.Evidence {
			if !seenEvidence[ev] && len(merged.Evidence) < maxEvidence {
				seenEvidence[ev] = true
				merged.Evidence = append(merged.Evidence, ev)
			}
		}

		if !seenAgent[cand.ProposedBy] {
			seenAgent[cand.ProposedBy] = true
			merged.ProposedBy = append(merged.ProposedBy, cand.ProposedBy)
		}
	}

	if len(settings) > 0 {
		merged.Settings = settings
	}

	parts := make([]string, 0, len(rationales))
	for r := range rationales {
		parts = append(parts, r)
	}
	sort.Strings(parts)
	merged.Rationale = strings.Join(parts, " / ")

	return merged, settingsConflict
}

// sortAdvisories orders advisories by agent id then key so the risk list
// and audit events do not depend on agent execution order.
func sortAdvisories(advisories []agents.Advisory) {
	sort.SliceStable(advisories, func(i, j int) bool {
		if advisories[i].AgentID != advisories[j].AgentID {
			return advisories[i].AgentID < advisories[j].AgentID
		}
		return advisories[i].Key < advisories[j].Key
	})
}

// kv is a settings pair in deterministic key order.
type kv struct{ key, value string }

func sortedSettings(settings map[string]string) []kv {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]kv, 0, len(keys))
	for _, k := range keys {
		out = append(out, kv{k, settings[k]})
	}
	return out
}

// signalKeys unions the signal references of a candidate group, sorted.
func (m Moderated) signalKeys(candidates []agents.Candidate) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, cand := range candidates {
		for _, sig := range cand.Signals {
			if !seen[sig] {
				seen[sig] = true
				keys = append(keys, sig)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// resolveDeclaredConflicts enforces registry conflicts_with declarations:
// when two selected modules conflict, the higher confidence wins, a tie
// keeps the lexically smaller module id.
func (s *Selection) resolveDeclaredConflicts(reg *registry.Registry, log *audit.Log) {
	byID := make(map[string]int, len(s.Modules))
	for i, mod := range s.Modules {
		byID[mod.ModuleID] = i
	}

	removed := make(map[string]bool)
	for _, mod := range s.Modules {
		desc, ok := reg.Descriptor(mod.ModuleID)
		if !ok {
			continue
		}
		for _, conflictID := range desc.ConflictsWith {
			otherIdx, selected := byID[conflictID]
			if !selected || removed[conflictID] || removed[mod.ModuleID] {
				continue
			}
			other := s.Modules[otherIdx]

			loser := other
			winner := mod
			if other.Confidence > mod.Confidence ||
				(other.Confidence == mod.Confidence && other.ModuleID < mod.ModuleID) {
				loser, winner = mod, other
			}

			removed[loser.ModuleID] = true
			s.Rejected = append(s.Rejected, loser)
			s.OpenQuestions = append(s.OpenQuestions,
				fmt.Sprintf("Modules %q and %q conflict; kept %q. Confirm preferred approach.",
					winner.ModuleID, loser.ModuleID, winner.ModuleID))
			s.Conflicts = append(s.Conflicts, Conflict{
				ModuleID:   loser.ModuleID,
				Resolution: ResolutionRejected,
				Reason:     fmt.Sprintf("declared conflict with %s resolved by confidence", winner.ModuleID),
			})
			log.Append(audit.Event{
				Stage:    audit.StageModerate,
				ModuleID: loser.ModuleID,
				Decision: audit.DecisionRejected,
				Reason:   fmt.Sprintf("declared conflict with %s resolved by confidence", winner.ModuleID),
			})
		}
	}

	if len(removed) == 0 {
		return
	}
	kept := s.Modules[:0]
	for _, mod := range s.Modules {
		if !removed[mod.ModuleID] {
			kept = append(kept, mod)
		}
	}
	s.Modules = kept
	sort.Strings(s.OpenQuestions)
}
