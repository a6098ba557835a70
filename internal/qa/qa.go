// Package qa checks structural invariants of a finished module plan. It is
// a consumer of the pipeline's output, not part of it: it reads only the
// written plan artifact and the registry, never intermediate state.
package qa

import (
	"encoding/json"
	"fmt"
	"os"

	"modplan/internal/errors"
	"modplan/internal/plan"
	"modplan/internal/registry"
)

// Report statuses.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// Severity levels for findings. Any critical or high finding fails the report.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Finding is one QA observation.
type Finding struct {
	Area           string `json:"area"`
	Severity       string `json:"severity"`
	Message        string `json:"message"`
	Evidence       string `json:"evidence,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Report aggregates findings over one plan.
type Report struct {
	Status         string         `json:"status"` // "pass" | "fail"
	PlanPath       string         `json:"plan_path"`
	SeverityCounts map[string]int `json:"severity_counts"`
	Findings       []Finding      `json:"findings,omitempty"`
}

// CheckFile loads a plan artifact and checks it against the registry.
func CheckFile(planPath string, reg *registry.Registry) (*Report, error) {
	data, err := os.ReadFile(planPath)
	if err != nil {
		return nil, errors.New(errors.InternalError, "", fmt.Sprintf("cannot read plan %s", planPath), err)
	}
	var p plan.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.New(errors.InternalError, "", fmt.Sprintf("cannot decode plan %s", planPath), err)
	}

	report := Check(&p, reg)
	report.PlanPath = planPath
	return report, nil
}

// Check runs every invariant check over an in-memory plan.
func Check(p *plan.Plan, reg *registry.Registry) *Report {
	var findings []Finding

	findings = append(findings, checkUniqueness(p)...)
	findings = append(findings, checkRegistryMembership(p, reg)...)
	findings = append(findings, checkEdition(p, reg)...)
	findings = append(findings, checkVersionCompatibility(p, reg)...)
	findings = append(findings, checkClosureAndOrder(p)...)
	findings = append(findings, checkBasePresence(p)...)

	counts := map[string]int{
		SeverityCritical: 0,
		SeverityHigh:     0,
		SeverityMedium:   0,
		SeverityLow:      0,
	}
	for _, f := range findings {
		counts[f.Severity]++
	}

	status := StatusPass
	if counts[SeverityCritical] > 0 || counts[SeverityHigh] > 0 {
		status = StatusFail
	}

	return &Report{
		Status:         status,
		SeverityCounts: counts,
		Findings:       findings,
	}
}

// checkUniqueness: no module id appears twice.
func checkUniqueness(p *plan.Plan) []Finding {
	var findings []Finding
	seen := make(map[string]bool)
	for _, entry := range p.Entries {
		if seen[entry.ModuleID] {
			findings = append(findings, Finding{
				Area:     "plan",
				Severity: SeverityCritical,
				Message:  "Module appears more than once in the plan.",
				Evidence: entry.ModuleID,
			})
		}
		seen[entry.ModuleID] = true
	}
	return findings
}

// checkRegistryMembership: every entry must exist in the registry.
func checkRegistryMembership(p *plan.Plan, reg *registry.Registry) []Finding {
	var findings []Finding
	for _, entry := range p.Entries {
		if _, ok := reg.Descriptor(entry.ModuleID); !ok {
			findings = append(findings, Finding{
				Area:           "registry",
				Severity:       SeverityHigh,
				Message:        "Planned module is missing from the registry.",
				Evidence:       entry.ModuleID,
				Recommendation: "Regenerate the plan against the registry snapshot it names.",
			})
		}
	}
	return findings
}

// checkEdition: no enterprise module survives in a community plan.
func checkEdition(p *plan.Plan, reg *registry.Registry) []Finding {
	if p.Edition != string(registry.EditionCommunity) {
		return nil
	}
	var findings []Finding
	for _, entry := range p.Entries {
		if reg.IsEnterprise(entry.ModuleID) {
			findings = append(findings, Finding{
				Area:           "edition",
				Severity:       SeverityCritical,
				Message:        "Enterprise-only module selected in a community plan.",
				Evidence:       entry.ModuleID,
				Recommendation: "Replace with a community alternative.",
			})
		}
	}
	return findings
}

// checkVersionCompatibility: every entry supports the target version.
func checkVersionCompatibility(p *plan.Plan, reg *registry.Registry) []Finding {
	var findings []Finding
	for _, entry := range p.Entries {
		if _, ok := reg.Descriptor(entry.ModuleID); !ok {
			continue // already reported by membership check
		}
		if !reg.IsCompatible(entry.ModuleID, p.PlatformVersion) {
			findings = append(findings, Finding{
				Area:     "version",
				Severity: SeverityHigh,
				Message:  "Planned module does not support the target platform version.",
				Evidence: fmt.Sprintf("%s vs %s", entry.ModuleID, p.PlatformVersion),
			})
		}
	}
	return findings
}

// checkClosureAndOrder: dependencies are present and ordered before their
// dependents (topological validity).
func checkClosureAndOrder(p *plan.Plan) []Finding {
	var findings []Finding
	position := make(map[string]int, len(p.Entries))
	for i, entry := range p.Entries {
		position[entry.ModuleID] = i
	}

	for i, entry := range p.Entries {
		for _, dep := range entry.Dependencies {
			depPos, present := position[dep]
			if !present {
				findings = append(findings, Finding{
					Area:     "dependencies",
					Severity: SeverityHigh,
					Message:  "Planned module has an unresolved dependency.",
					Evidence: fmt.Sprintf("%s -> %s", entry.ModuleID, dep),
				})
				continue
			}
			if depPos > i {
				findings = append(findings, Finding{
					Area:     "ordering",
					Severity: SeverityHigh,
					Message:  "Dependency ordered after its dependent.",
					Evidence: fmt.Sprintf("%s before %s", entry.ModuleID, dep),
				})
			}
		}
	}
	return findings
}

// checkBasePresence: any non-empty plan carries the base module.
func checkBasePresence(p *plan.Plan) []Finding {
	if len(p.Entries) == 0 || p.Contains(registry.BaseModuleID) {
		return nil
	}
	return []Finding{{
		Area:           "plan",
		Severity:       SeverityHigh,
		Message:        "Non-empty plan is missing the mandatory base module.",
		Evidence:       registry.BaseModuleID,
		Recommendation: "Regenerate the plan; the validator injects base automatically.",
	}}
}
