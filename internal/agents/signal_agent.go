package agents

import (
	"fmt"
	"strings"

	"modplan/internal/output"
	"modplan/internal/signal"
)

// ModuleSpec names a module a rule recommends, with the settings the agent
// wants applied when its domain triggered the recommendation.
type ModuleSpec struct {
	ModuleID string
	Settings map[string]string
}

// Rule maps one signal key to module recommendations.
type Rule struct {
	SignalDomain string
	SignalKey    string
	Modules      []ModuleSpec
}

// SignalAgentConfig is the declarative table a SignalAgent runs on.
type SignalAgentConfig struct {
	Name           string
	Domain         string
	Rules          []Rule
	BaseConfidence float64
}

// highPrioritySignals mark recommendations that anchor an implementation.
var highPrioritySignals = map[string]bool{
	"ecommerce":  true,
	"accounting": true,
	"inventory":  true,
}

// SignalAgent is a table-driven domain agent: for every rule whose signal is
// present, it proposes the rule's modules with evidence and a confidence
// scaled by signal strength.
type SignalAgent struct {
	config SignalAgentConfig
}

// NewSignalAgent builds a domain agent from its rule table.
func NewSignalAgent(config SignalAgentConfig) *SignalAgent {
	return &SignalAgent{config: config}
}

// Name implements Agent.
func (a *SignalAgent) Name() string { return a.config.Name }

// Kind implements Agent.
func (a *SignalAgent) Kind() Kind { return KindDomain }

// Propose implements Agent.
func (a *SignalAgent) Propose(signals *signal.Set) Result {
	result := Result{AgentID: a.config.Name}

	for _, rule := range a.config.Rules {
		count := signals.Count(rule.SignalDomain, rule.SignalKey)
		if count <= 0 {
			continue
		}

		sig, _ := signals.Get(rule.SignalDomain, rule.SignalKey)

		confidence := a.config.BaseConfidence + 0.05*float64(count)
		if confidence > 0.95 {
			confidence = 0.95
		}

		priority := "medium"
		if highPrioritySignals[rule.SignalKey] {
			priority = "high"
		}

		for _, spec := range rule.Modules {
			result.Candidates = append(result.Candidates, Candidate{
				ModuleID:   spec.ModuleID,
				ProposedBy: a.config.Name,
				Confidence: output.RoundFloat(confidence),
				Rationale: fmt.Sprintf("Detected %s needs in interview responses.",
					strings.ReplaceAll(rule.SignalKey, "_", " ")),
				Priority: priority,
				Settings: spec.Settings,
				Evidence: sig.Evidence,
				Signals:  []string{rule.SignalDomain + "/" + rule.SignalKey},
			})
		}
	}

	return result
}
