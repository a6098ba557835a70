package orchestrator

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	planerrors "modplan/internal/errors"
	"modplan/internal/logging"
	"modplan/internal/registry"
)

const testSnapshot = `{
	"version_patterns": ["17.0", "17.x"],
	"modules": {
		"base": {"display_name": "Base", "edition": "community"},
		"crm": {"display_name": "CRM", "domain": "sales", "dependencies": ["base"], "edition": "community"},
		"sale_management": {
			"display_name": "Sales",
			"domain": "sales",
			"dependencies": ["base"],
			"edition": "community",
			"configuration_steps": ["Configure quotation templates"]
		},
		"stock": {"display_name": "Inventory", "domain": "inventory", "dependencies": ["base"], "edition": "community"},
		"account": {"display_name": "Accounting", "domain": "finance", "dependencies": ["base"], "edition": "community"},
		"purchase": {"display_name": "Purchase", "dependencies": ["account", "stock"], "edition": "community"},
		"mrp": {"display_name": "Manufacturing", "dependencies": ["stock"], "edition": "community"},
		"website": {"display_name": "Website", "dependencies": ["base"], "edition": "community"},
		"website_sale": {"display_name": "Online Shop", "dependencies": ["website", "sale_management"], "edition": "community"},
		"payment": {"display_name": "Payment Providers", "dependencies": ["base"], "edition": "community"},
		"delivery": {"display_name": "Shipping", "dependencies": ["stock"], "edition": "community"},
		"helpdesk": {"display_name": "Helpdesk", "dependencies": ["base"], "edition": "enterprise"},
		"sale_subscription": {
			"display_name": "Subscriptions",
			"dependencies": ["sale_management"],
			"edition": "enterprise",
			"community_alternatives": ["sale_management"]
		},
		"hr": {"display_name": "Employees", "dependencies": ["base"], "edition": "community"},
		"project": {"display_name": "Project", "dependencies": ["base"], "edition": "community"},
		"hr_timesheet": {"display_name": "Timesheets", "dependencies": ["hr", "project"], "edition": "community"}
	}
}`

const tradingInterview = `{
	"project_id": "acme-erp",
	"client_name": "Acme Trading GmbH",
	"industry": "wholesale",
	"company_profile": {"employee_count": 40, "locations": ["Berlin"], "currency": "EUR"},
	"raw_responses": {
		"sales": [{"question": "How do you sell?", "response": "Our sales team tracks every deal and quotation in Salesforce."}],
		"operations": [{"question": "How do you handle stock?", "response": "We run a small warehouse with FIFO valuation. We don't manufacture anything ourselves."}],
		"finance": [{"question": "Who keeps the books?", "response": "Bookkeeping happens in QuickBooks; reconciliation is painful."}]
	},
	"systems_mentioned": ["Salesforce", "QuickBooks"]
}`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

func setup(t *testing.T, interviewJSON string) Options {
	t.Helper()
	dir := t.TempDir()
	registryDir := filepath.Join(dir, "registry")
	if err := os.Mkdir(registryDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFixture(t, registryDir, "modules-17.json", testSnapshot)

	return Options{
		InterviewPath:   writeFixture(t, dir, "interview.json", interviewJSON),
		OutputDir:       filepath.Join(dir, "outputs"),
		RegistryDir:     registryDir,
		Edition:         registry.EditionCommunity,
		PlatformVersion: "17.0",
	}
}

func TestRunTradingScenario(t *testing.T) {
	opts := setup(t, tradingInterview)

	result, err := New(testLogger()).Run(opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	t.Run("expected modules selected", func(t *testing.T) {
		for _, want := range []string{"base", "crm", "sale_management", "stock", "account"} {
			if !result.Plan.Contains(want) {
				t.Errorf("plan missing %s", want)
			}
		}
	})

	t.Run("negated manufacturing excluded", func(t *testing.T) {
		if result.Plan.Contains("mrp") {
			t.Error("mrp must not be selected for 'we don't manufacture'")
		}
	})

	t.Run("base first and dependencies ordered", func(t *testing.T) {
		if result.Plan.Entries[0].ModuleID != "base" {
			t.Errorf("first entry = %s, want base", result.Plan.Entries[0].ModuleID)
		}
		pos := make(map[string]int)
		for i, entry := range result.Plan.Entries {
			pos[entry.ModuleID] = i
		}
		for _, entry := range result.Plan.Entries {
			for _, dep := range entry.Dependencies {
				if pos[dep] > pos[entry.ModuleID] {
					t.Errorf("%s ordered before its dependency %s", entry.ModuleID, dep)
				}
			}
		}
	})

	t.Run("external systems surface as risk", func(t *testing.T) {
		found := false
		for _, risk := range result.Plan.Risks {
			if strings.Contains(risk, "External systems") {
				found = true
			}
		}
		if !found {
			t.Errorf("risks = %v, want external-systems note", result.Plan.Risks)
		}
	})

	t.Run("all artifacts written", func(t *testing.T) {
		for _, path := range []string{
			result.ArtifactPaths.ModulePlan,
			result.ArtifactPaths.ConfigTasks,
			result.ArtifactPaths.ImplementationSpec,
			result.ArtifactPaths.AuditTrail,
			result.ArtifactPaths.Manifest,
		} {
			if _, err := os.Stat(path); err != nil {
				t.Errorf("artifact missing: %v", err)
			}
		}
	})

	t.Run("audit trail covers every stage", func(t *testing.T) {
		stages := make(map[string]bool)
		for _, event := range result.AuditEvents {
			stages[string(event.Stage)] = true
		}
		for _, want := range []string{"registry", "normalize", "agents", "moderate", "validate"} {
			if !stages[want] {
				t.Errorf("no audit events for stage %s", want)
			}
		}
	})

	t.Run("config task for configured module", func(t *testing.T) {
		found := false
		for _, task := range result.ConfigTasks {
			if task.ModuleID == "sale_management" && len(task.Steps) == 1 {
				found = true
			}
		}
		if !found {
			t.Errorf("config tasks = %+v", result.ConfigTasks)
		}
	})
}

func TestRunDeterministicArtifacts(t *testing.T) {
	opts := setup(t, tradingInterview)

	first, err := New(testLogger()).Run(opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := New(testLogger()).Run(opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	// The plan and task artifacts contain no run-scoped identifiers, so a
	// rerun over identical inputs must reproduce them byte for byte.
	compare := func(name, a, b string) {
		dataA, err := os.ReadFile(a)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		dataB, err := os.ReadFile(b)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !bytes.Equal(dataA, dataB) {
			t.Errorf("%s differs across identical runs:\n%s\n---\n%s", name, dataA, dataB)
		}
	}
	compare("module-plan.json", first.ArtifactPaths.ModulePlan, second.ArtifactPaths.ModulePlan)
	compare("config-tasks.json", first.ArtifactPaths.ConfigTasks, second.ArtifactPaths.ConfigTasks)
}

func TestRunEditionHandling(t *testing.T) {
	const supportInterview = `{
		"project_id": "support-co",
		"client_name": "Support Co",
		"raw_responses": {
			"service": [{"question": "Support?", "response": "Customers email us and we lose track of every support ticket."}]
		}
	}`

	t.Run("community edition drops enterprise-only module", func(t *testing.T) {
		opts := setup(t, supportInterview)
		result, err := New(testLogger()).Run(opts)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.Plan.Contains("helpdesk") {
			t.Error("helpdesk must be excluded under community edition")
		}
		found := false
		for _, w := range result.Plan.Warnings {
			if strings.Contains(w, "helpdesk") {
				found = true
			}
		}
		if !found {
			t.Errorf("warnings = %v", result.Plan.Warnings)
		}
	})

	t.Run("enterprise edition keeps it", func(t *testing.T) {
		opts := setup(t, supportInterview)
		opts.Edition = registry.EditionEnterprise
		result, err := New(testLogger()).Run(opts)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if !result.Plan.Contains("helpdesk") {
			t.Error("helpdesk must be kept under enterprise edition")
		}
	})
}

func TestRunFailures(t *testing.T) {
	t.Run("no matching registry aborts before artifacts", func(t *testing.T) {
		opts := setup(t, tradingInterview)
		opts.PlatformVersion = "99.0"

		_, err := New(testLogger()).Run(opts)
		if err == nil {
			t.Fatal("expected error")
		}
		perr, ok := err.(*planerrors.PlanError)
		if !ok || perr.Code != planerrors.RegistryNotFound {
			t.Errorf("error = %v, want REGISTRY_NOT_FOUND", err)
		}
		if _, statErr := os.Stat(opts.OutputDir); !os.IsNotExist(statErr) {
			t.Error("failed run must not create the output directory")
		}
	})

	t.Run("unreadable interview aborts", func(t *testing.T) {
		opts := setup(t, tradingInterview)
		opts.InterviewPath = filepath.Join(t.TempDir(), "absent.json")

		_, err := New(testLogger()).Run(opts)
		perr, ok := err.(*planerrors.PlanError)
		if !ok || perr.Code != planerrors.InterviewInvalid {
			t.Errorf("error = %v, want INTERVIEW_INVALID", err)
		}
	})

	t.Run("explicit snapshot path overrides directory", func(t *testing.T) {
		opts := setup(t, tradingInterview)
		opts.RegistryDir = ""
		opts.RegistryPath = writeFixture(t, t.TempDir(), "explicit.json", testSnapshot)

		result, err := New(testLogger()).Run(opts)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if !strings.HasSuffix(result.Plan.RegistrySource, "explicit.json") {
			t.Errorf("registry source = %s", result.Plan.RegistrySource)
		}
	})
}
