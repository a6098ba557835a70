package orchestrator

import (
	"fmt"
	"strings"

	"modplan/internal/interview"
	"modplan/internal/moderator"
	"modplan/internal/signal"
)

// renderImplementationSpec renders the human-readable spec artifact. It is
// review material only; nothing downstream parses it.
func renderImplementationSpec(record *interview.Record, signals *signal.Set,
	selection moderator.Selection, result *Result) string {

	var b strings.Builder

	client := record.ClientName
	if client == "" {
		client = record.ProjectID
	}
	fmt.Fprintf(&b, "# Implementation Specification - %s\n\n", client)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Project ID: %s\n", record.ProjectID)
	fmt.Fprintf(&b, "- Industry: %s\n", record.Industry)
	fmt.Fprintf(&b, "- Platform Version Target: %s\n", result.Plan.PlatformVersion)
	fmt.Fprintf(&b, "- Edition Target: %s\n", result.Plan.Edition)
	fmt.Fprintf(&b, "- Module Registry: %s\n", result.Plan.RegistrySource)
	fmt.Fprintf(&b, "- Run ID: %s\n\n", result.RunID)

	if record.CompanyProfile.EmployeeCount > 0 || len(record.CompanyProfile.Locations) > 0 {
		b.WriteString("## Company Profile\n")
		if record.CompanyProfile.EmployeeCount > 0 {
			fmt.Fprintf(&b, "- Employee Count: %d\n", record.CompanyProfile.EmployeeCount)
		}
		if len(record.CompanyProfile.Locations) > 0 {
			fmt.Fprintf(&b, "- Locations: %s\n", strings.Join(record.CompanyProfile.Locations, ", "))
		}
		if record.CompanyProfile.Currency != "" {
			fmt.Fprintf(&b, "- Currency: %s\n", record.CompanyProfile.Currency)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Detected Signals\n")
	for _, sig := range signals.All() {
		fmt.Fprintf(&b, "- %s/%s: %s\n", sig.Domain, sig.Key, sig.Value)
	}
	b.WriteString("\n")

	b.WriteString("## Module Plan\n")
	for _, entry := range result.Plan.Entries {
		name := entry.DisplayName
		if name == "" {
			name = entry.ModuleID
		}
		suffix := ""
		if entry.AutoAdded {
			suffix = " (auto-added)"
		}
		if entry.SubstitutedFor != "" {
			suffix = fmt.Sprintf(" (community alternative for %s)", entry.SubstitutedFor)
		}
		fmt.Fprintf(&b, "- %s (%s) [%s] - %s%s\n", name, entry.ModuleID, entry.Priority, entry.Rationale, suffix)
	}
	b.WriteString("\n")

	if len(selection.Rejected) > 0 {
		b.WriteString("## Excluded Modules\n")
		for _, rejected := range selection.Rejected {
			fmt.Fprintf(&b, "- %s - %s\n", rejected.ModuleID, rejected.Rationale)
		}
		b.WriteString("\n")
	}

	if len(result.Plan.OpenQuestions) > 0 {
		b.WriteString("## Open Questions\n")
		for _, q := range result.Plan.OpenQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		b.WriteString("\n")
	}

	if len(result.Plan.Risks) > 0 {
		b.WriteString("## Risks / Flags\n")
		for _, risk := range result.Plan.Risks {
			fmt.Fprintf(&b, "- %s\n", risk)
		}
		b.WriteString("\n")
	}

	if len(result.Plan.Warnings) > 0 {
		b.WriteString("## Warnings\n")
		for _, w := range result.Plan.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Configuration Tasks\n")
	for _, task := range result.ConfigTasks {
		fmt.Fprintf(&b, "- %s: %s\n", task.TaskID, task.Description)
	}
	b.WriteString("\n")

	b.WriteString("## Next Steps\n")
	b.WriteString("- Confirm edition and hosting approach.\n")
	b.WriteString("- Validate the module plan with stakeholders.\n")
	b.WriteString("- Prepare the configuration workshop agenda.\n")

	return b.String()
}
