package agents

import (
	"fmt"
	"strings"

	"modplan/internal/signal"
)

// RiskAgent watches cross-cutting concern signals (integration surface,
// data migration volume) and emits advisory flags for the audit trail. It
// never proposes modules, so it cannot influence the plan directly; the
// moderator only retains its annotations.
type RiskAgent struct {
	name    string
	domain  string
	keys    []string
	message string
	modules []string
}

// NewRiskAgent builds a risk agent watching the given signal keys within a
// signal domain.
func NewRiskAgent(name, domain string, keys []string, message string) *RiskAgent {
	return &RiskAgent{name: name, domain: domain, keys: keys, message: message}
}

// FlagsModules marks modules this agent's concern taints when triggered.
// The moderator resolves the dispute in favor of inclusion but keeps the
// risk rationale attached to those modules.
func (a *RiskAgent) FlagsModules(moduleIDs ...string) *RiskAgent {
	a.modules = moduleIDs
	return a
}

// Name implements Agent.
func (a *RiskAgent) Name() string { return a.name }

// Kind implements Agent.
func (a *RiskAgent) Kind() Kind { return KindRisk }

// Propose implements Agent.
func (a *RiskAgent) Propose(signals *signal.Set) Result {
	result := Result{AgentID: a.name}

	for _, key := range a.keys {
		sig, ok := signals.Get(a.domain, key)
		if !ok {
			continue
		}

		note := a.message
		if note == "" {
			note = fmt.Sprintf("Detected %s considerations.", strings.ReplaceAll(key, "_", " "))
		}
		result.Advisories = append(result.Advisories, Advisory{
			AgentID:  a.name,
			Key:      a.domain + "/" + key,
			Note:     note,
			Modules:  a.modules,
			Evidence: sig.Evidence,
		})
	}

	return result
}
