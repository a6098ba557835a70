package interview

import (
	"os"
	"path/filepath"
	"testing"

	planerrors "modplan/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("json record", func(t *testing.T) {
		path := writeFile(t, "interview.json", `{
			"project_id": "acme-erp",
			"client_name": "Acme GmbH",
			"industry": "retail",
			"company_profile": {"employee_count": 40, "currency": "EUR"},
			"raw_responses": {
				"sales": [{"question": "How do you sell?", "response": "Mostly B2B quotations."}]
			},
			"systems_mentioned": ["Salesforce"]
		}`)

		record, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if record.ProjectID != "acme-erp" {
			t.Errorf("ProjectID = %q", record.ProjectID)
		}
		if record.CompanyProfile.EmployeeCount != 40 {
			t.Errorf("EmployeeCount = %d", record.CompanyProfile.EmployeeCount)
		}
		if len(record.RawResponses["sales"]) != 1 {
			t.Errorf("sales responses = %d, want 1", len(record.RawResponses["sales"]))
		}
	})

	t.Run("yaml record", func(t *testing.T) {
		path := writeFile(t, "interview.yaml", `
project_id: acme-erp
client_name: Acme GmbH
raw_responses:
  finance:
    - question: Who does the books?
      response: An external accountant using QuickBooks.
pain_points:
  - Manual invoicing
`)

		record, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if record.RawResponses["finance"][0].Response != "An external accountant using QuickBooks." {
			t.Errorf("unexpected response: %q", record.RawResponses["finance"][0].Response)
		}
		if len(record.PainPoints) != 1 {
			t.Errorf("pain points = %d, want 1", len(record.PainPoints))
		}
	})

	t.Run("missing fields tolerated", func(t *testing.T) {
		path := writeFile(t, "sparse.json", `{"project_id": "p1"}`)

		record, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(record.ResponseTexts()) != 0 {
			t.Error("sparse record should yield no response texts")
		}
	})

	t.Run("unreadable file fails with stable code", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		if err == nil {
			t.Fatal("expected error")
		}
		perr, ok := err.(*planerrors.PlanError)
		if !ok {
			t.Fatalf("error type = %T, want *PlanError", err)
		}
		if perr.Code != planerrors.InterviewInvalid {
			t.Errorf("code = %s, want %s", perr.Code, planerrors.InterviewInvalid)
		}
	})

	t.Run("malformed json fails", func(t *testing.T) {
		path := writeFile(t, "broken.json", `{not json`)
		if _, err := Load(path); err == nil {
			t.Fatal("expected decode error")
		}
	})
}

func TestResponseTexts(t *testing.T) {
	record := &Record{
		RawResponses: map[string][]Response{
			"zeta":  {{Response: "third"}, {Response: "  "}},
			"alpha": {{Response: "first"}, {Response: "second"}},
		},
	}

	got := record.ResponseTexts()
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("texts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("texts[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
