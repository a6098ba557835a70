// Package errors defines stable error codes for every failure mode of the
// planning pipeline, so callers and downstream tooling can branch on the
// code rather than on message text.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// RegistryNotFound indicates no registry snapshot matches the requested platform version
	RegistryNotFound ErrorCode = "REGISTRY_NOT_FOUND"
	// RegistryIntegrity indicates the registry dependency graph is corrupt (a cycle)
	RegistryIntegrity ErrorCode = "REGISTRY_INTEGRITY"
	// RegistryMalformed indicates a registry snapshot could not be decoded
	RegistryMalformed ErrorCode = "REGISTRY_MALFORMED"
	// InterviewInvalid indicates the interview record could not be read at all
	InterviewInvalid ErrorCode = "INTERVIEW_INVALID"
	// UnknownModule indicates a candidate referenced a module absent from the registry
	UnknownModule ErrorCode = "UNKNOWN_MODULE"
	// ArtifactWrite indicates the final artifact set could not be written
	ArtifactWrite ErrorCode = "ARTIFACT_WRITE"
	// HistoryUnavailable indicates the run-history database could not be opened
	HistoryUnavailable ErrorCode = "HISTORY_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Stage names the pipeline stage an error originated from.
type Stage string

const (
	StageRegistry  Stage = "registry"
	StageNormalize Stage = "normalize"
	StageAgents    Stage = "agents"
	StageModerate  Stage = "moderate"
	StageValidate  Stage = "validate"
	StageRender    Stage = "render"
	StageHistory   Stage = "history"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description,omitempty"`
}

// PlanError represents a pipeline error with a stable code, the stage it
// occurred in, and suggestions.
type PlanError struct {
	Code           ErrorCode   `json:"code"`
	Stage          Stage       `json:"stage,omitempty"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new PlanError
func New(code ErrorCode, stage Stage, message string, cause error) *PlanError {
	return &PlanError{
		Code:           code,
		Stage:          stage,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *PlanError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Stage, e.Message, e.cause)
	}
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Stage, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PlanError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *PlanError) WithDetails(details interface{}) *PlanError {
	e.Details = details
	return e
}

// IsFatal reports whether the code aborts a whole run. Recoverable conditions
// (unknown module references) are surfaced as audit warnings instead.
func IsFatal(code ErrorCode) bool {
	switch code {
	case RegistryNotFound, RegistryIntegrity, RegistryMalformed, InterviewInvalid, ArtifactWrite:
		return true
	default:
		return code == InternalError
	}
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	RegistryNotFound: {
		{
			Command:     "modplan registry list",
			Description: "List available registry snapshots and their version patterns",
		},
	},
	RegistryMalformed: {
		{
			Command:     "modplan registry validate",
			Description: "Validate registry snapshot structure and dependency graph",
		},
	},
	RegistryIntegrity: {
		{
			Command:     "modplan registry validate",
			Description: "Locate the dependency cycle in the registry data",
		},
	},
	InterviewInvalid: {
		{
			Description: "Check that the interview file is valid JSON or YAML",
		},
	},
	HistoryUnavailable: {
		{
			Command:     "modplan plan --no-history",
			Description: "Run without recording to the history database",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
