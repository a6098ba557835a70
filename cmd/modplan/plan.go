package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"modplan/internal/history"
	"modplan/internal/logging"
	"modplan/internal/orchestrator"
	"modplan/internal/project"
	"modplan/internal/registry"
)

var (
	planInput           string
	planOutputDir       string
	planRegistryPath    string
	planRegistryDir     string
	planEdition         string
	planPlatformVersion string
	planNoHistory       bool
	planFormat          string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a module plan from an interview record",
	Long: `Generate a validated module plan from a discovery interview record.

Reads the interview (JSON or YAML), runs the full planning pipeline, and
writes four artifacts into a fresh run directory: module-plan.json,
config-tasks.json, implementation-spec.md, and audit.json. Either all
four are written or none are.

Defaults for edition, platform version, registry and output directories
come from modplan.toml in the working directory when present; flags
override the declaration.

Examples:
  modplan plan --input interview.json
  modplan plan --input interview.yaml --edition enterprise --platform-version 17.0
  modplan plan --input interview.json --registry registry/modules-17.json`,
	Run: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planInput, "input", "", "Interview record file (JSON or YAML)")
	planCmd.Flags().StringVar(&planOutputDir, "output-dir", "", "Directory for run artifacts")
	planCmd.Flags().StringVar(&planRegistryPath, "registry", "", "Explicit registry snapshot file (overrides --registry-dir)")
	planCmd.Flags().StringVar(&planRegistryDir, "registry-dir", "", "Directory of registry snapshots")
	planCmd.Flags().StringVar(&planEdition, "edition", "", "Target edition: community, enterprise, or unknown")
	planCmd.Flags().StringVar(&planPlatformVersion, "platform-version", "", "Target platform version (e.g. 17.0)")
	planCmd.Flags().BoolVar(&planNoHistory, "no-history", false, "Skip recording the run in history")
	planCmd.Flags().StringVar(&planFormat, "format", "human", "Output format (json, human)")
	planCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(planFormat)

	cfg, decl, err := loadWorkspace()
	if err != nil {
		fail("loading workspace", err)
	}

	editionStr := project.Merge(planEdition, project.Merge(decl.Edition, cfg.Planning.Edition))
	edition, err := registry.ParseEdition(editionStr)
	if err != nil {
		fail("parsing edition", err)
	}

	opts := orchestrator.Options{
		InterviewPath:   planInput,
		OutputDir:       project.Merge(planOutputDir, project.Merge(decl.OutputDir, cfg.Planning.OutputDir)),
		RegistryDir:     project.Merge(planRegistryDir, project.Merge(decl.RegistryDir, cfg.Planning.RegistryDir)),
		RegistryPath:    planRegistryPath,
		Edition:         edition,
		PlatformVersion: project.Merge(planPlatformVersion, project.Merge(decl.PlatformVersion, cfg.Planning.PlatformVersion)),
	}

	result, err := orchestrator.New(logger).Run(opts)
	if err != nil {
		fail("generating plan", err)
	}

	if cfg.History.Enabled && !planNoHistory {
		recordRun(logger, cfg.History.Dir, result)
	}

	out, err := FormatResponse(result, OutputFormat(planFormat))
	if err != nil {
		fail("formatting output", err)
	}
	fmt.Println(out)

	logger.Debug("Plan completed", map[string]interface{}{
		"run_id":   result.RunID,
		"duration": time.Since(start).Milliseconds(),
	})
}

// recordRun stores the run summary. History failures never invalidate a
// completed run; they are reported as warnings.
func recordRun(logger *logging.Logger, dir string, result *orchestrator.Result) {
	store, err := history.Open(dir, logger)
	if err != nil {
		logger.Warn("History unavailable", map[string]interface{}{"error": err.Error()})
		return
	}
	defer store.Close()

	run := history.Run{
		RunID:           result.RunID,
		CreatedAt:       result.GeneratedAt,
		ProjectID:       result.Plan.ProjectID,
		ClientName:      result.Plan.ClientName,
		Edition:         result.Plan.Edition,
		PlatformVersion: result.Plan.PlatformVersion,
		RegistrySource:  result.Plan.RegistrySource,
		ModuleCount:     len(result.Plan.Entries),
		ArtifactDir:     result.ArtifactPaths.Dir,
	}
	if err := store.Record(run, result.Plan); err != nil {
		logger.Warn("Failed to record run history", map[string]interface{}{"error": err.Error()})
	}
}
