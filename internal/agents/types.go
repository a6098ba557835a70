// Package agents contains the independent domain experts of the selection
// swarm. Every agent is a pure function of the normalized signal set: the
// same signals always yield the same candidates, and no agent ever sees
// another agent's output. That keeps results identical whether agents run
// sequentially or as a parallel batch.
package agents

import (
	"modplan/internal/signal"
)

// Kind tags the agent variant.
type Kind string

const (
	// KindDomain agents propose module candidates for their business domains
	KindDomain Kind = "domain"
	// KindRisk agents emit advisory flags for the audit log, never candidates
	KindRisk Kind = "risk"
)

// Candidate is one module recommendation from one agent. Multiple agents may
// propose the same module id; the moderator merges them.
type Candidate struct {
	ModuleID   string            `json:"module_id"`
	ProposedBy string            `json:"proposed_by"`
	Confidence float64           `json:"confidence"`
	Rationale  string            `json:"rationale"`
	Priority   string            `json:"priority,omitempty"`
	Settings   map[string]string `json:"settings,omitempty"`
	Evidence   []string          `json:"evidence,omitempty"`
	Signals    []string          `json:"signals,omitempty"`
}

// Advisory is a risk flag attached to the audit trail rather than the plan.
// Modules optionally names plan candidates the concern taints; the moderator
// keeps those modules but retains the risk rationale on them.
type Advisory struct {
	AgentID  string   `json:"agent_id"`
	Key      string   `json:"key"`
	Note     string   `json:"note"`
	Modules  []string `json:"modules,omitempty"`
	Evidence []string `json:"evidence,omitempty"`
}

// Result is everything one agent produced for a run.
type Result struct {
	AgentID    string      `json:"agent_id"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Advisories []Advisory  `json:"advisories,omitempty"`
}

// Agent is the capability contract of the swarm. Propose must be stateless
// and side-effect-free.
type Agent interface {
	// Name returns the stable agent id used in audit records
	Name() string
	// Kind returns the agent variant
	Kind() Kind
	// Propose maps signals to candidates (domain agents) or advisories (risk agents)
	Propose(signals *signal.Set) Result
}

// Priority returns the fixed merge-priority rank of an agent; lower ranks
// win settings conflicts in the moderator. The ranking is part of the
// deterministic merge contract and must never depend on execution order.
// Agents missing from the table rank last.
func Priority(agentID string) int {
	if rank, ok := agentPriority[agentID]; ok {
		return rank
	}
	return len(agentPriority)
}

// agentPriority is the documented agent-priority ranking: specialists over
// generalists, revenue-critical domains first.
var agentPriority = map[string]int{
	"accounting_agent":    0,
	"inventory_agent":     1,
	"website_agent":       2,
	"sales_agent":         3,
	"purchase_agent":      4,
	"manufacturing_agent": 5,
	"subscription_agent":  6,
	"pos_agent":           7,
	"support_agent":       8,
	"project_agent":       9,
	"hr_agent":            10,
	"marketing_agent":     11,
}
