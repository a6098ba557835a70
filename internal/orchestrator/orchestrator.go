// Package orchestrator sequences the planning pipeline: normalize → agents
// → moderate → validate → render. It owns no decision logic. A run either
// produces the complete artifact set or fails with a single error naming
// the fatal stage; partial artifact sets are never written.
package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"modplan/internal/agents"
	"modplan/internal/audit"
	"modplan/internal/interview"
	"modplan/internal/logging"
	"modplan/internal/moderator"
	"modplan/internal/plan"
	"modplan/internal/registry"
	"modplan/internal/signal"
	"modplan/internal/validator"
)

// Options configure one planning run.
type Options struct {
	InterviewPath   string
	OutputDir       string
	RegistryDir     string
	RegistryPath    string // explicit snapshot; overrides RegistryDir resolution
	Edition         registry.Edition
	PlatformVersion string
}

// Result is everything a completed run produced.
type Result struct {
	RunID         string            `json:"run_id"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Plan          *plan.Plan        `json:"plan"`
	ConfigTasks   []plan.ConfigTask `json:"config_tasks"`
	AuditEvents   []audit.Event     `json:"audit_events"`
	ArtifactPaths ArtifactPaths     `json:"artifact_paths"`
}

// Orchestrator runs the pipeline with a fixed stage order.
type Orchestrator struct {
	logger *logging.Logger
}

// New returns an orchestrator.
func New(logger *logging.Logger) *Orchestrator {
	return &Orchestrator{logger: logger}
}

// Run executes all stages and writes the four artifacts. Any fatal stage
// error aborts the whole run before anything is written.
func (o *Orchestrator) Run(opts Options) (*Result, error) {
	runID := uuid.New().String()
	log := audit.NewLog()

	// Registry selection is part of the audit record for reproducibility.
	reg, err := o.loadRegistry(opts)
	if err != nil {
		return nil, err
	}
	log.Append(audit.Event{
		Stage:    audit.StageRegistry,
		Decision: audit.DecisionSelected,
		Reason:   "registry snapshot " + reg.Source(),
	})
	o.logger.Info("Registry resolved", map[string]interface{}{
		"source":  reg.Source(),
		"modules": reg.Len(),
		"version": opts.PlatformVersion,
	})

	record, err := interview.Load(opts.InterviewPath)
	if err != nil {
		return nil, err
	}

	signals := signal.Normalize(record)
	for _, sig := range signals.All() {
		log.Append(audit.Event{
			Stage:        audit.StageNormalize,
			InputSignals: []string{sig.Domain + "/" + sig.Key},
			Decision:     audit.DecisionAccepted,
			Reason:       "signal " + sig.Domain + "/" + sig.Key + " = " + sig.Value,
		})
	}
	o.logger.Info("Interview normalized", map[string]interface{}{
		"signals": signals.Len(),
		"project": record.ProjectID,
	})

	// Agents are independent; sequential execution here yields output
	// identical to any parallel schedule because the moderator's merge is
	// the only cross-agent interaction.
	swarm := agents.DefaultAgents(opts.PlatformVersion)
	results := make([]agents.Result, 0, len(swarm))
	for _, agent := range swarm {
		result := agent.Propose(signals)
		for _, cand := range result.Candidates {
			log.Append(audit.Event{
				Stage:        audit.StageAgents,
				AgentID:      cand.ProposedBy,
				ModuleID:     cand.ModuleID,
				InputSignals: cand.Signals,
				Decision:     audit.DecisionProposed,
				Reason:       cand.Rationale,
			})
		}
		results = append(results, result)
	}

	mod := moderator.New(reg, opts.Edition, opts.PlatformVersion)
	selection := mod.Consolidate(results, log)

	val := validator.New(reg, opts.Edition)
	finalPlan, err := val.Finalize(selection, log)
	if err != nil {
		return nil, err
	}
	finalPlan.ProjectID = record.ProjectID
	finalPlan.ClientName = record.ClientName
	finalPlan.PlatformVersion = opts.PlatformVersion

	tasks := finalPlan.ConfigTasks(func(moduleID string) []string {
		desc, ok := reg.Descriptor(moduleID)
		if !ok {
			return nil
		}
		return desc.ConfigurationSteps
	})

	result := &Result{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Plan:        finalPlan,
		ConfigTasks: tasks,
		AuditEvents: log.Events(),
	}

	paths, err := writeArtifacts(opts.OutputDir, runID, record, signals, selection, result)
	if err != nil {
		return nil, err
	}
	result.ArtifactPaths = paths

	o.logger.Info("Run complete", map[string]interface{}{
		"run_id":  runID,
		"modules": len(finalPlan.Entries),
		"tasks":   len(tasks),
		"events":  log.Len(),
	})
	return result, nil
}

// loadRegistry honors an explicit snapshot path, otherwise resolves by
// platform version. There is never a silent fallback.
func (o *Orchestrator) loadRegistry(opts Options) (*registry.Registry, error) {
	if opts.RegistryPath != "" {
		return registry.Load(opts.RegistryPath)
	}
	return registry.Resolve(opts.RegistryDir, opts.PlatformVersion)
}
