// Package audit records every decision the planning pipeline makes as an
// append-only log. The log is sufficient to reconstruct why any module is
// or is not present in the final plan. Entries are never removed, even for
// rejected candidates.
package audit

// Stage names the pipeline stage an event was recorded by.
type Stage string

const (
	StageRegistry  Stage = "registry"
	StageNormalize Stage = "normalize"
	StageAgents    Stage = "agents"
	StageModerate  Stage = "moderate"
	StageValidate  Stage = "validate"
	StageRender    Stage = "render"
)

// Decision classifies what happened in an event.
type Decision string

const (
	// DecisionSelected records the active registry snapshot choice
	DecisionSelected Decision = "selected"
	// DecisionProposed records an agent candidate
	DecisionProposed Decision = "proposed"
	// DecisionAccepted records a moderated candidate entering the plan
	DecisionAccepted Decision = "accepted"
	// DecisionMerged records multiple agreeing candidates merged into one
	DecisionMerged Decision = "merged"
	// DecisionRejected records a candidate excluded from the plan
	DecisionRejected Decision = "rejected"
	// DecisionSubstituted records an enterprise module replaced by its community alternative
	DecisionSubstituted Decision = "substituted"
	// DecisionInjected records a validator-added dependency or base module
	DecisionInjected Decision = "injected"
	// DecisionFlagged records an annotation that keeps the module in the plan
	DecisionFlagged Decision = "flagged"
	// DecisionAdvisory records a risk-agent note not tied to a module
	DecisionAdvisory Decision = "advisory"
	// DecisionWarning records a recoverable defect (e.g. unknown module reference)
	DecisionWarning Decision = "warning"
)

// Event is one append-only audit record.
type Event struct {
	Sequence     int      `json:"sequence"`
	Stage        Stage    `json:"stage"`
	AgentID      string   `json:"agent_id,omitempty"`
	ModuleID     string   `json:"module_id,omitempty"`
	InputSignals []string `json:"input_signals,omitempty"`
	Decision     Decision `json:"decision"`
	Reason       string   `json:"reason"`
}

// Log is the append-only decision log for one run. The orchestrator
// sequences all stages, so there is exactly one writer; no locking needed.
type Log struct {
	events []Event
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds an event, assigning the next sequence number.
func (l *Log) Append(event Event) {
	event.Sequence = len(l.events) + 1
	l.events = append(l.events, event)
}

// Events returns a copy of the recorded events in append order.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	return len(l.events)
}

// CountDecision returns how many events carry the given decision.
func (l *Log) CountDecision(decision Decision) int {
	n := 0
	for _, e := range l.events {
		if e.Decision == decision {
			n++
		}
	}
	return n
}
