package orchestrator

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"modplan/internal/audit"
	"modplan/internal/errors"
	"modplan/internal/interview"
	"modplan/internal/moderator"
	"modplan/internal/output"
	"modplan/internal/signal"
)

// ArtifactPaths locates the written artifact set of one run.
type ArtifactPaths struct {
	Dir                string `json:"dir"`
	ModulePlan         string `json:"module_plan"`
	ConfigTasks        string `json:"config_tasks"`
	ImplementationSpec string `json:"implementation_spec"`
	AuditTrail         string `json:"audit_trail"`
	Manifest           string `json:"manifest"`
}

// auditArtifact is the on-disk shape of the audit trail.
type auditArtifact struct {
	RunID           string               `json:"run_id"`
	PlatformVersion string               `json:"platform_version"`
	Edition         string               `json:"edition"`
	RegistrySource  string               `json:"registry_source"`
	Signals         []signal.Signal      `json:"signals,omitempty"`
	Conflicts       []moderator.Conflict `json:"conflicts,omitempty"`
	Events          []audit.Event        `json:"events"`
}

// manifest ties the artifact set together with content checksums so a
// consumer can verify it got a complete, untampered run.
type manifest struct {
	RunID       string            `json:"run_id"`
	GeneratedAt string            `json:"generated_at"`
	Checksums   map[string]string `json:"checksums"`
}

// writeArtifacts renders all artifacts into a staging directory and renames
// it into place only when every file succeeded. A failed stage leaves no
// partial output behind.
func writeArtifacts(outputDir, runID string, record *interview.Record,
	signals *signal.Set, selection moderator.Selection, result *Result) (ArtifactPaths, error) {

	var paths ArtifactPaths

	finalDir := filepath.Join(outputDir, "run-"+runID)
	stagingDir := finalDir + ".staging"

	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return paths, errors.New(errors.ArtifactWrite, errors.StageRender,
			"cannot create staging directory", err)
	}
	defer os.RemoveAll(stagingDir) // no-op after a successful rename

	planBytes, err := output.DeterministicEncodeIndented(result.Plan, "  ")
	if err != nil {
		return paths, errors.New(errors.ArtifactWrite, errors.StageRender, "cannot encode module plan", err)
	}

	tasksBytes, err := output.DeterministicEncodeIndented(result.ConfigTasks, "  ")
	if err != nil {
		return paths, errors.New(errors.ArtifactWrite, errors.StageRender, "cannot encode config tasks", err)
	}

	auditBytes, err := output.DeterministicEncodeIndented(auditArtifact{
		RunID:           result.RunID,
		PlatformVersion: result.Plan.PlatformVersion,
		Edition:         result.Plan.Edition,
		RegistrySource:  result.Plan.RegistrySource,
		Signals:         signals.All(),
		Conflicts:       selection.Conflicts,
		Events:          result.AuditEvents,
	}, "  ")
	if err != nil {
		return paths, errors.New(errors.ArtifactWrite, errors.StageRender, "cannot encode audit trail", err)
	}

	specText := renderImplementationSpec(record, signals, selection, result)

	files := map[string][]byte{
		"module-plan.json":       planBytes,
		"config-tasks.json":      tasksBytes,
		"implementation-spec.md": []byte(specText),
		"audit.json":             auditBytes,
	}

	checksums := make(map[string]string, len(files))
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(stagingDir, name), data, 0644); err != nil {
			return paths, errors.New(errors.ArtifactWrite, errors.StageRender,
				fmt.Sprintf("cannot write %s", name), err)
		}
		sum := blake2b.Sum256(data)
		checksums[name] = hex.EncodeToString(sum[:])
	}

	manifestBytes, err := output.DeterministicEncodeIndented(manifest{
		RunID:       result.RunID,
		GeneratedAt: result.GeneratedAt.Format("2006-01-02T15:04:05Z"),
		Checksums:   checksums,
	}, "  ")
	if err != nil {
		return paths, errors.New(errors.ArtifactWrite, errors.StageRender, "cannot encode manifest", err)
	}
	if err := os.WriteFile(filepath.Join(stagingDir, "manifest.json"), manifestBytes, 0644); err != nil {
		return paths, errors.New(errors.ArtifactWrite, errors.StageRender, "cannot write manifest", err)
	}

	if err := os.RemoveAll(finalDir); err != nil {
		return paths, errors.New(errors.ArtifactWrite, errors.StageRender, "cannot clear output directory", err)
	}
	if err := os.Rename(stagingDir, finalDir); err != nil {
		return paths, errors.New(errors.ArtifactWrite, errors.StageRender, "cannot publish artifacts", err)
	}

	return ArtifactPaths{
		Dir:                finalDir,
		ModulePlan:         filepath.Join(finalDir, "module-plan.json"),
		ConfigTasks:        filepath.Join(finalDir, "config-tasks.json"),
		ImplementationSpec: filepath.Join(finalDir, "implementation-spec.md"),
		AuditTrail:         filepath.Join(finalDir, "audit.json"),
		Manifest:           filepath.Join(finalDir, "manifest.json"),
	}, nil
}
