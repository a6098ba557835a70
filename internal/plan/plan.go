// Package plan defines the output artifacts of a planning run: the ordered,
// dependency-complete module plan and the configuration tasks derived from
// it. A plan is materialized once per run and never mutated afterwards.
package plan

import "fmt"

// Priority ranks how urgently a module should be configured. Critical is
// reserved for injected platform requirements.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// priorityRank orders priorities for deterministic tie-breaking.
var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// Rank returns the sort rank of a priority (lower sorts first). Unknown
// priorities rank after low.
func (p Priority) Rank() int {
	if rank, ok := priorityRank[p]; ok {
		return rank
	}
	return len(priorityRank)
}

// Valid reports whether the priority is one of the known levels.
func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// Entry is one module in the final plan. Dependencies list the module's
// direct registry dependencies; the closure invariant guarantees every one
// of them is itself a plan entry.
type Entry struct {
	ModuleID         string            `json:"module_id"`
	DisplayName      string            `json:"display_name,omitempty"`
	Domain           string            `json:"domain,omitempty"`
	Priority         Priority          `json:"priority"`
	Dependencies     []string          `json:"dependencies,omitempty"`
	Settings         map[string]string `json:"settings,omitempty"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	Rationale        string            `json:"rationale,omitempty"`
	AutoAdded        bool              `json:"auto_added,omitempty"`
	SubstitutedFor   string            `json:"substituted_for,omitempty"`
}

// Plan is the final, topologically ordered module selection for one run.
type Plan struct {
	ProjectID       string   `json:"project_id,omitempty"`
	ClientName      string   `json:"client_name,omitempty"`
	PlatformVersion string   `json:"platform_version"`
	Edition         string   `json:"edition"`
	RegistrySource  string   `json:"registry_source,omitempty"`
	Entries         []Entry  `json:"entries"`
	Warnings        []string `json:"warnings,omitempty"`
	OpenQuestions   []string `json:"open_questions,omitempty"`
	Risks           []string `json:"risks,omitempty"`
}

// Contains reports whether a module id is part of the plan.
func (p *Plan) Contains(moduleID string) bool {
	for _, entry := range p.Entries {
		if entry.ModuleID == moduleID {
			return true
		}
	}
	return false
}

// ConfigTask is a per-module configuration work item, derived 1:1 from plan
// entries that carry non-default settings or registry configuration steps.
type ConfigTask struct {
	TaskID       string            `json:"task_id"`
	ModuleID     string            `json:"module_id"`
	ModuleName   string            `json:"module_name,omitempty"`
	Description  string            `json:"description"`
	Settings     map[string]string `json:"settings,omitempty"`
	Steps        []string          `json:"steps,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
	OwnerRole    string            `json:"owner_role"`
}

// ConfigTasks derives configuration tasks from the plan. Task ids are
// sequential in plan order (CFG-001, CFG-002, ...), so identical plans yield
// identical task lists.
func (p *Plan) ConfigTasks(steps func(moduleID string) []string) []ConfigTask {
	var tasks []ConfigTask
	for _, entry := range p.Entries {
		var moduleSteps []string
		if steps != nil {
			moduleSteps = steps(entry.ModuleID)
		}
		if len(entry.Settings) == 0 && len(moduleSteps) == 0 {
			continue
		}

		name := entry.DisplayName
		if name == "" {
			name = entry.ModuleID
		}
		tasks = append(tasks, ConfigTask{
			TaskID:       fmt.Sprintf("CFG-%03d", len(tasks)+1),
			ModuleID:     entry.ModuleID,
			ModuleName:   name,
			Description:  fmt.Sprintf("Configure %s (%s).", name, entry.ModuleID),
			Settings:     entry.Settings,
			Steps:        moduleSteps,
			Dependencies: entry.Dependencies,
			OwnerRole:    "functional_consultant",
		})
	}
	return tasks
}

// InstallStatus is the per-module status vocabulary reported by the remote
// installer that consumes a plan. The plan's topological order guarantees
// the installer never needs to re-validate dependencies.
type InstallStatus string

const (
	InstallStatusInstalled         InstallStatus = "installed"
	InstallStatusAlreadyPresent    InstallStatus = "already_present"
	InstallStatusMissingDependency InstallStatus = "missing_dependency"
	InstallStatusFailed            InstallStatus = "failed"
)
