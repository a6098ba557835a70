package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modplan/internal/audit"
	"modplan/internal/moderator"
	"modplan/internal/plan"
	"modplan/internal/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modules.json")
	snapshot := `{
		"modules": {
			"base": {"display_name": "Base", "edition": "community"},
			"sale_management": {
				"display_name": "Sales",
				"domain": "sales",
				"dependencies": ["base"],
				"edition": "community",
				"default_settings": {"portal": "enabled"},
				"estimated_minutes": 90
			},
			"website_sale": {"display_name": "Online Shop", "dependencies": ["website", "sale_management"], "edition": "community"},
			"website": {"display_name": "Website", "dependencies": ["base"], "edition": "community"},
			"helpdesk": {"display_name": "Helpdesk", "dependencies": ["base"], "edition": "enterprise"},
			"quality": {"display_name": "Quality", "dependencies": ["mrp"], "edition": "enterprise", "community_alternatives": ["quality_basic"]},
			"quality_basic": {"display_name": "Quality Checks", "dependencies": ["mrp"], "edition": "community"},
			"mrp": {"display_name": "Manufacturing", "dependencies": ["base"], "edition": "community"},
			"broken": {"display_name": "Broken", "dependencies": ["ghost_dep"], "edition": "community"}
		}
	}`
	if err := os.WriteFile(path, []byte(snapshot), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	reg, err := registry.Load(path)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func moderated(moduleID string, priority plan.Priority) moderator.Moderated {
	return moderator.Moderated{
		ModuleID:   moduleID,
		Confidence: 0.8,
		Priority:   priority,
		Rationale:  "Detected " + moduleID + " needs.",
	}
}

func finalize(t *testing.T, reg *registry.Registry, edition registry.Edition, sel moderator.Selection) (*plan.Plan, *audit.Log) {
	t.Helper()
	log := audit.NewLog()
	p, err := New(reg, edition).Finalize(sel, log)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return p, log
}

func position(p *plan.Plan, moduleID string) int {
	for i, entry := range p.Entries {
		if entry.ModuleID == moduleID {
			return i
		}
	}
	return -1
}

func TestFinalizeClosure(t *testing.T) {
	reg := testRegistry(t)

	p, log := finalize(t, reg, registry.EditionCommunity, moderator.Selection{
		Modules: []moderator.Moderated{moderated("website_sale", plan.PriorityHigh)},
	})

	// website_sale pulls website, sale_management, and transitively base.
	for _, want := range []string{"base", "website", "sale_management", "website_sale"} {
		if !p.Contains(want) {
			t.Errorf("plan missing %s; entries: %v", want, moduleNames(p))
		}
	}

	t.Run("dependencies ordered before dependents", func(t *testing.T) {
		if position(p, "base") > position(p, "website_sale") {
			t.Error("base must precede website_sale")
		}
		if position(p, "website") > position(p, "website_sale") {
			t.Error("website must precede website_sale")
		}
		if position(p, "sale_management") > position(p, "website_sale") {
			t.Error("sale_management must precede website_sale")
		}
	})

	t.Run("injected dependencies are marked auto-added", func(t *testing.T) {
		entry := p.Entries[position(p, "website")]
		if !entry.AutoAdded {
			t.Error("website was injected, must be auto_added")
		}
		if !strings.Contains(entry.Rationale, "Dependency required by") {
			t.Errorf("rationale = %q", entry.Rationale)
		}
		if entry.Priority != plan.PriorityLow {
			t.Errorf("injected priority = %v, want low", entry.Priority)
		}
	})

	t.Run("injection events are audited", func(t *testing.T) {
		if log.CountDecision(audit.DecisionInjected) == 0 {
			t.Error("expected injected audit events")
		}
	})
}

func TestFinalizeBaseInjection(t *testing.T) {
	reg := testRegistry(t)

	t.Run("base injected when absent", func(t *testing.T) {
		p, _ := finalize(t, reg, registry.EditionCommunity, moderator.Selection{})
		if !p.Contains("base") {
			t.Fatal("base must be injected into an empty selection")
		}
		entry := p.Entries[position(p, "base")]
		if entry.Priority != plan.PriorityCritical || !entry.AutoAdded {
			t.Errorf("base entry = %+v", entry)
		}
	})

	t.Run("base kept when already selected", func(t *testing.T) {
		p, _ := finalize(t, reg, registry.EditionCommunity, moderator.Selection{
			Modules: []moderator.Moderated{moderated("base", plan.PriorityHigh)},
		})
		count := 0
		for _, entry := range p.Entries {
			if entry.ModuleID == "base" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("base appears %d times", count)
		}
	})
}

func TestFinalizeEditionFilter(t *testing.T) {
	reg := testRegistry(t)

	t.Run("substitution under community edition", func(t *testing.T) {
		p, log := finalize(t, reg, registry.EditionCommunity, moderator.Selection{
			Modules: []moderator.Moderated{moderated("quality", plan.PriorityMedium)},
		})

		if p.Contains("quality") {
			t.Error("enterprise module must not survive community edition")
		}
		if !p.Contains("quality_basic") {
			t.Fatal("community alternative must be substituted")
		}
		entry := p.Entries[position(p, "quality_basic")]
		if entry.SubstitutedFor != "quality" {
			t.Errorf("substituted_for = %q", entry.SubstitutedFor)
		}
		if log.CountDecision(audit.DecisionSubstituted) != 1 {
			t.Error("substitution must be audited")
		}
	})

	t.Run("drop with warning when no alternative", func(t *testing.T) {
		p, _ := finalize(t, reg, registry.EditionCommunity, moderator.Selection{
			Modules: []moderator.Moderated{moderated("helpdesk", plan.PriorityMedium)},
		})

		if p.Contains("helpdesk") {
			t.Error("helpdesk must be dropped")
		}
		found := false
		for _, w := range p.Warnings {
			if strings.Contains(w, "helpdesk") {
				found = true
			}
		}
		if !found {
			t.Errorf("warnings = %v, want helpdesk exclusion", p.Warnings)
		}
	})

	t.Run("enterprise edition keeps enterprise modules", func(t *testing.T) {
		p, _ := finalize(t, reg, registry.EditionEnterprise, moderator.Selection{
			Modules: []moderator.Moderated{moderated("helpdesk", plan.PriorityMedium)},
		})
		if !p.Contains("helpdesk") {
			t.Error("enterprise edition must keep helpdesk")
		}
	})
}

func TestFinalizeSubstitutionCollision(t *testing.T) {
	reg := testRegistry(t)

	// "quality" substitutes to "quality_basic" under community edition and
	// collides with the direct quality_basic selection.
	sel := moderator.Selection{
		Modules: []moderator.Moderated{
			{
				ModuleID:   "quality",
				Confidence: 0.7,
				Priority:   plan.PriorityMedium,
				Rationale:  "Quality control mentioned.",
			},
			{
				ModuleID:   "quality_basic",
				Confidence: 0.8,
				Priority:   plan.PriorityHigh,
				Rationale:  "Inspection checklists requested.",
				Settings:   map[string]string{"checks": "enabled"},
				RiskNotes:  []string{"Checklist migration from spreadsheets."},
			},
		},
	}

	p, log := finalize(t, reg, registry.EditionCommunity, sel)

	count := 0
	for _, entry := range p.Entries {
		if entry.ModuleID == "quality_basic" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("quality_basic appears %d times, want 1", count)
	}
	entry := p.Entries[position(p, "quality_basic")]

	t.Run("stronger priority kept", func(t *testing.T) {
		if entry.Priority != plan.PriorityHigh {
			t.Errorf("priority = %v, want high", entry.Priority)
		}
	})

	t.Run("rationales merged", func(t *testing.T) {
		if !strings.Contains(entry.Rationale, "Quality control mentioned.") ||
			!strings.Contains(entry.Rationale, "Inspection checklists requested.") {
			t.Errorf("rationale = %q", entry.Rationale)
		}
	})

	t.Run("settings and risk notes merged", func(t *testing.T) {
		if entry.Settings["checks"] != "enabled" {
			t.Errorf("settings = %v", entry.Settings)
		}
		if !strings.Contains(entry.Rationale, "[risk] Checklist migration") {
			t.Errorf("rationale = %q", entry.Rationale)
		}
	})

	t.Run("collision merge is audited", func(t *testing.T) {
		if log.CountDecision(audit.DecisionMerged) != 1 {
			t.Errorf("merged events = %d, want 1", log.CountDecision(audit.DecisionMerged))
		}
	})

	t.Run("colliding selection maps untouched", func(t *testing.T) {
		if len(sel.Modules[1].Settings) != 1 {
			t.Errorf("selection settings mutated: %v", sel.Modules[1].Settings)
		}
	})
}

func TestFinalizeUnknownModules(t *testing.T) {
	reg := testRegistry(t)

	t.Run("unknown candidate becomes warning", func(t *testing.T) {
		p, log := finalize(t, reg, registry.EditionCommunity, moderator.Selection{
			Modules: []moderator.Moderated{
				moderated("made_up_module", plan.PriorityHigh),
				moderated("sale_management", plan.PriorityHigh),
			},
		})

		if p.Contains("made_up_module") {
			t.Error("unknown module must not enter the plan")
		}
		if !p.Contains("sale_management") {
			t.Error("run must continue past an unknown module")
		}
		if len(p.Warnings) == 0 {
			t.Error("expected a warning")
		}
		if log.CountDecision(audit.DecisionWarning) == 0 {
			t.Error("expected a warning audit event")
		}
	})

	t.Run("unknown dependency is skipped with warning", func(t *testing.T) {
		p, _ := finalize(t, reg, registry.EditionCommunity, moderator.Selection{
			Modules: []moderator.Moderated{moderated("broken", plan.PriorityMedium)},
		})

		if !p.Contains("broken") {
			t.Error("module with an unknown dependency still installs")
		}
		found := false
		for _, w := range p.Warnings {
			if strings.Contains(w, "ghost_dep") {
				found = true
			}
		}
		if !found {
			t.Errorf("warnings = %v", p.Warnings)
		}
	})
}

func TestFinalizeEntries(t *testing.T) {
	reg := testRegistry(t)

	sel := moderator.Selection{
		Modules: []moderator.Moderated{{
			ModuleID:   "sale_management",
			Confidence: 0.9,
			Priority:   plan.PriorityHigh,
			Rationale:  "Detected sales needs.",
			Settings:   map[string]string{"portal": "disabled", "quotes": "enabled"},
			RiskNotes:  []string{"Integration complexity with legacy CRM."},
		}},
		OpenQuestions: []string{"Confirm fiscal localization."},
		Risks:         []string{"Data migration effort unknown."},
	}

	p, _ := finalize(t, reg, registry.EditionCommunity, sel)
	entry := p.Entries[position(p, "sale_management")]

	t.Run("proposed settings override registry defaults", func(t *testing.T) {
		if entry.Settings["portal"] != "disabled" {
			t.Errorf("portal = %q, agent intent must win", entry.Settings["portal"])
		}
		if entry.Settings["quotes"] != "enabled" {
			t.Errorf("settings = %v", entry.Settings)
		}
	})

	t.Run("descriptor metadata copied", func(t *testing.T) {
		if entry.DisplayName != "Sales" || entry.Domain != "sales" {
			t.Errorf("entry = %+v", entry)
		}
		if entry.EstimatedMinutes != 90 {
			t.Errorf("estimated minutes = %d, want descriptor value", entry.EstimatedMinutes)
		}
	})

	t.Run("default estimate applies when descriptor has none", func(t *testing.T) {
		base := p.Entries[position(p, "base")]
		if base.EstimatedMinutes != defaultEstimatedMinutes {
			t.Errorf("estimate = %d, want default", base.EstimatedMinutes)
		}
	})

	t.Run("risk notes attached to rationale", func(t *testing.T) {
		if !strings.Contains(entry.Rationale, "[risk]") {
			t.Errorf("rationale = %q", entry.Rationale)
		}
	})

	t.Run("selection questions and risks carried over", func(t *testing.T) {
		if len(p.OpenQuestions) != 1 || len(p.Risks) != 1 {
			t.Errorf("questions = %v, risks = %v", p.OpenQuestions, p.Risks)
		}
	})
}

func TestFinalizeDeterministicOrder(t *testing.T) {
	reg := testRegistry(t)

	sel := moderator.Selection{
		Modules: []moderator.Moderated{
			moderated("website_sale", plan.PriorityHigh),
			moderated("mrp", plan.PriorityMedium),
			moderated("sale_management", plan.PriorityHigh),
		},
	}

	first, _ := finalize(t, reg, registry.EditionCommunity, sel)
	for i := 0; i < 10; i++ {
		again, _ := finalize(t, reg, registry.EditionCommunity, sel)
		if len(again.Entries) != len(first.Entries) {
			t.Fatalf("entry counts differ")
		}
		for j := range first.Entries {
			if first.Entries[j].ModuleID != again.Entries[j].ModuleID {
				t.Fatalf("order differs at %d: %s vs %s", j,
					first.Entries[j].ModuleID, again.Entries[j].ModuleID)
			}
		}
	}
}

func moduleNames(p *plan.Plan) []string {
	var names []string
	for _, entry := range p.Entries {
		names = append(names, entry.ModuleID)
	}
	return names
}
