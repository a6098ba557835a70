package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestError(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := stderrors.New("open registry/17.0.json: no such file")
		err := New(RegistryNotFound, StageRegistry, "no snapshot for platform version 17.0", cause)

		msg := err.Error()
		for _, want := range []string{"[REGISTRY_NOT_FOUND]", "registry:", "no snapshot", "no such file"} {
			if !strings.Contains(msg, want) {
				t.Errorf("Error() = %q, missing %q", msg, want)
			}
		}
	})

	t.Run("stage without cause", func(t *testing.T) {
		err := New(InterviewInvalid, StageNormalize, "empty interview record", nil)
		if got, want := err.Error(), "[INTERVIEW_INVALID] normalize: empty interview record"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("code and message only", func(t *testing.T) {
		err := &PlanError{Code: InternalError, Message: "boom"}
		if got, want := err.Error(), "[INTERNAL_ERROR] boom"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New(ArtifactWrite, StageRender, "staging artifacts", cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}

	var planErr *PlanError
	if !stderrors.As(error(err), &planErr) {
		t.Fatal("errors.As should match *PlanError")
	}
	if planErr.Code != ArtifactWrite {
		t.Errorf("code = %s, want %s", planErr.Code, ArtifactWrite)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(UnknownModule, StageValidate, "candidate not in registry", nil).
		WithDetails(map[string]string{"module": "ghost_dep"})

	details, ok := err.Details.(map[string]string)
	if !ok || details["module"] != "ghost_dep" {
		t.Errorf("details = %v", err.Details)
	}
}

func TestIsFatal(t *testing.T) {
	fatal := []ErrorCode{RegistryNotFound, RegistryIntegrity, RegistryMalformed, InterviewInvalid, ArtifactWrite, InternalError}
	for _, code := range fatal {
		if !IsFatal(code) {
			t.Errorf("IsFatal(%s) = false, want true", code)
		}
	}

	recoverable := []ErrorCode{UnknownModule, HistoryUnavailable}
	for _, code := range recoverable {
		if IsFatal(code) {
			t.Errorf("IsFatal(%s) = true, want false", code)
		}
	}
}

func TestSuggestedFixes(t *testing.T) {
	t.Run("attached by constructor", func(t *testing.T) {
		err := New(RegistryNotFound, StageRegistry, "no match", nil)
		if len(err.SuggestedFixes) == 0 {
			t.Fatal("expected suggested fixes")
		}
		if err.SuggestedFixes[0].Command != "modplan registry list" {
			t.Errorf("command = %q", err.SuggestedFixes[0].Command)
		}
	})

	t.Run("no fixes for unmapped code", func(t *testing.T) {
		if fixes := GetSuggestedFixes(InternalError); fixes != nil {
			t.Errorf("fixes = %v, want nil", fixes)
		}
	})
}
