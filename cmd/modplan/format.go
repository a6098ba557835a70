package main

import (
	"fmt"
	"sort"
	"strings"

	"modplan/internal/history"
	"modplan/internal/orchestrator"
	"modplan/internal/output"
	"modplan/internal/qa"
	"modplan/internal/registry"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as deterministic JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := output.DeterministicEncodeIndented(resp, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *orchestrator.Result:
		return formatRunHuman(v), nil
	case *qa.Report:
		return formatQAHuman(v), nil
	case []history.Run:
		return formatHistoryHuman(v), nil
	case *registry.Registry:
		return formatRegistryHuman(v), nil
	case registry.Descriptor:
		return formatDescriptorHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatRunHuman(result *orchestrator.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s\n", result.RunID)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	p := result.Plan
	fmt.Fprintf(&b, "Project:  %s (%s)\n", p.ProjectID, p.ClientName)
	fmt.Fprintf(&b, "Edition:  %s, platform %s\n", p.Edition, p.PlatformVersion)
	fmt.Fprintf(&b, "Registry: %s\n\n", p.RegistrySource)

	fmt.Fprintf(&b, "Modules (%d):\n", len(p.Entries))
	for _, entry := range p.Entries {
		marker := " "
		if entry.AutoAdded {
			marker = "+"
		}
		fmt.Fprintf(&b, "  %s %-24s %-8s %s\n", marker, entry.ModuleID, entry.Priority, entry.Rationale)
	}

	if len(p.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range p.Warnings {
			fmt.Fprintf(&b, "  ! %s\n", w)
		}
	}

	if len(p.OpenQuestions) > 0 {
		b.WriteString("\nOpen Questions:\n")
		for _, q := range p.OpenQuestions {
			fmt.Fprintf(&b, "  ? %s\n", q)
		}
	}

	if len(p.Risks) > 0 {
		b.WriteString("\nRisks:\n")
		for _, r := range p.Risks {
			fmt.Fprintf(&b, "  * %s\n", r)
		}
	}

	fmt.Fprintf(&b, "\nConfiguration tasks: %d\n", len(result.ConfigTasks))
	fmt.Fprintf(&b, "Artifacts: %s\n", result.ArtifactPaths.Dir)

	return b.String()
}

func formatQAHuman(report *qa.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "QA %s: %s\n", report.Status, report.PlanPath)

	if len(report.SeverityCounts) > 0 {
		severities := make([]string, 0, len(report.SeverityCounts))
		for sev := range report.SeverityCounts {
			severities = append(severities, sev)
		}
		sort.Strings(severities)
		parts := make([]string, 0, len(severities))
		for _, sev := range severities {
			parts = append(parts, fmt.Sprintf("%s=%d", sev, report.SeverityCounts[sev]))
		}
		fmt.Fprintf(&b, "Findings: %s\n", strings.Join(parts, ", "))
	}

	for _, f := range report.Findings {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", f.Severity, f.Area, f.Message)
		if f.Recommendation != "" {
			fmt.Fprintf(&b, "      -> %s\n", f.Recommendation)
		}
	}

	return b.String()
}

func formatHistoryHuman(runs []history.Run) string {
	if len(runs) == 0 {
		return "No recorded runs.\n"
	}

	var b strings.Builder
	for _, run := range runs {
		fmt.Fprintf(&b, "%s  %s  %-16s %2d modules  %s/%s\n",
			run.CreatedAt.Format("2006-01-02 15:04"),
			shortRunID(run.RunID),
			run.ProjectID,
			run.ModuleCount,
			run.Edition,
			run.PlatformVersion)
	}
	return b.String()
}

// shortRunID abbreviates a run id for list output. Ids come from uuid, but a
// hand-edited history database can hold anything.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRegistryHuman(reg *registry.Registry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Registry %s (%d modules)\n", reg.Source(), reg.Len())
	if patterns := reg.VersionPatterns(); len(patterns) > 0 {
		fmt.Fprintf(&b, "Version patterns: %s\n", strings.Join(patterns, ", "))
	}
	b.WriteString("\n")

	for _, id := range reg.ModuleIDs() {
		desc, _ := reg.Descriptor(id)
		fmt.Fprintf(&b, "  %-24s %-10s %s\n", desc.ModuleID, desc.Edition, desc.DisplayName)
	}

	return b.String()
}

func formatDescriptorHuman(desc registry.Descriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)\n", desc.ModuleID, desc.DisplayName)
	if desc.Description != "" {
		fmt.Fprintf(&b, "  %s\n", desc.Description)
	}
	fmt.Fprintf(&b, "  Edition:      %s\n", desc.Edition)
	if desc.Domain != "" {
		fmt.Fprintf(&b, "  Domain:       %s\n", desc.Domain)
	}
	if len(desc.Dependencies) > 0 {
		fmt.Fprintf(&b, "  Dependencies: %s\n", strings.Join(desc.Dependencies, ", "))
	}
	if len(desc.ConflictsWith) > 0 {
		fmt.Fprintf(&b, "  Conflicts:    %s\n", strings.Join(desc.ConflictsWith, ", "))
	}
	if len(desc.CommunityAlternatives) > 0 {
		fmt.Fprintf(&b, "  Alternatives: %s\n", strings.Join(desc.CommunityAlternatives, ", "))
	}
	if len(desc.SupportedVersions) > 0 {
		fmt.Fprintf(&b, "  Versions:     %s\n", strings.Join(desc.SupportedVersions, ", "))
	}
	if desc.EstimatedMinutes > 0 {
		fmt.Fprintf(&b, "  Est. setup:   %d min\n", desc.EstimatedMinutes)
	}

	return b.String()
}
