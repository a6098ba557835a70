package plan

import (
	"testing"

	"modplan/internal/testutil"
)

func TestPriority(t *testing.T) {
	t.Run("rank order", func(t *testing.T) {
		if !(PriorityCritical.Rank() < PriorityHigh.Rank() &&
			PriorityHigh.Rank() < PriorityMedium.Rank() &&
			PriorityMedium.Rank() < PriorityLow.Rank()) {
			t.Error("priority ranks out of order")
		}
	})

	t.Run("unknown ranks after low", func(t *testing.T) {
		if Priority("bogus").Rank() <= PriorityLow.Rank() {
			t.Error("unknown priority must rank last")
		}
		if Priority("bogus").Valid() {
			t.Error("bogus is not valid")
		}
	})
}

func TestContains(t *testing.T) {
	p := &Plan{Entries: []Entry{{ModuleID: "base"}, {ModuleID: "crm"}}}
	if !p.Contains("crm") || p.Contains("stock") {
		t.Error("Contains lookup wrong")
	}
}

func TestConfigTasks(t *testing.T) {
	p := &Plan{Entries: []Entry{
		{ModuleID: "base"},
		{ModuleID: "crm", DisplayName: "CRM", Settings: map[string]string{"lead_mining": "enabled"}, Dependencies: []string{"base"}},
		{ModuleID: "stock", DisplayName: "Inventory"},
		{ModuleID: "account", DisplayName: "Accounting"},
	}}

	steps := func(moduleID string) []string {
		if moduleID == "account" {
			return []string{"Pick fiscal localization", "Import chart of accounts"}
		}
		return nil
	}

	tasks := p.ConfigTasks(steps)

	t.Run("only entries with settings or steps yield tasks", func(t *testing.T) {
		if len(tasks) != 2 {
			t.Fatalf("tasks = %d, want 2", len(tasks))
		}
	})

	t.Run("task ids are sequential in plan order", func(t *testing.T) {
		if tasks[0].TaskID != "CFG-001" || tasks[1].TaskID != "CFG-002" {
			t.Errorf("task ids = %s, %s", tasks[0].TaskID, tasks[1].TaskID)
		}
		if tasks[0].ModuleID != "crm" || tasks[1].ModuleID != "account" {
			t.Errorf("task order = %s, %s", tasks[0].ModuleID, tasks[1].ModuleID)
		}
	})

	t.Run("task carries settings, steps, and owner", func(t *testing.T) {
		if tasks[0].Settings["lead_mining"] != "enabled" {
			t.Errorf("settings = %v", tasks[0].Settings)
		}
		if len(tasks[1].Steps) != 2 {
			t.Errorf("steps = %v", tasks[1].Steps)
		}
		if tasks[0].OwnerRole != "functional_consultant" {
			t.Errorf("owner = %q", tasks[0].OwnerRole)
		}
	})

	t.Run("nil steps func is allowed", func(t *testing.T) {
		tasks := p.ConfigTasks(nil)
		if len(tasks) != 1 || tasks[0].ModuleID != "crm" {
			t.Errorf("tasks = %+v", tasks)
		}
	})
}

// TestArtifactGolden pins the byte shape of the two plan artifacts. Any
// field rename or encoding change shows up as a golden diff here before it
// breaks downstream consumers.
func TestArtifactGolden(t *testing.T) {
	p := &Plan{
		ProjectID:       "acme-erp",
		ClientName:      "Acme GmbH",
		PlatformVersion: "17.0",
		Edition:         "community",
		RegistrySource:  "registry/modules.json",
		Entries: []Entry{
			{
				ModuleID:         "base",
				DisplayName:      "Base",
				Priority:         PriorityCritical,
				EstimatedMinutes: 30,
				Rationale:        "Platform requirement.",
				AutoAdded:        true,
			},
			{
				ModuleID:         "sale_management",
				DisplayName:      "Sales",
				Domain:           "sales",
				Priority:         PriorityHigh,
				Dependencies:     []string{"base"},
				Settings:         map[string]string{"portal_access": "enabled"},
				EstimatedMinutes: 90,
				Rationale:        "Quotation workflow detected.",
			},
		},
		Warnings: []string{"helpdesk dropped: enterprise-only under community edition"},
	}

	t.Run("module plan", func(t *testing.T) {
		testutil.CompareGolden(t, "module-plan.json", p)
	})

	t.Run("config tasks", func(t *testing.T) {
		tasks := p.ConfigTasks(func(moduleID string) []string {
			if moduleID == "sale_management" {
				return []string{"Enable portal access", "Configure quotation templates"}
			}
			return nil
		})
		testutil.CompareGolden(t, "config-tasks.json", tasks)
	})
}
