package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modplan/internal/qa"
)

var qaFormat string

var qaCmd = &cobra.Command{
	Use:   "qa <module-plan.json>",
	Short: "Check a plan artifact against the registry",
	Long: `Run quality checks over a previously generated module plan.

Checks uniqueness, registry membership, edition compliance, version
compatibility, dependency closure and ordering, and base module presence.
Exits non-zero when any critical or high finding is present.

Examples:
  modplan qa outputs/run-<id>/module-plan.json
  modplan qa --format json outputs/run-<id>/module-plan.json`,
	Args: cobra.ExactArgs(1),
	Run:  runQA,
}

func init() {
	qaCmd.Flags().StringVar(&registryDirFlag, "registry-dir", "", "Directory of registry snapshots")
	qaCmd.Flags().StringVar(&registryPathFlag, "snapshot", "", "Explicit snapshot file (overrides --registry-dir)")
	qaCmd.Flags().StringVar(&registryVersionFlag, "platform-version", "", "Target platform version")
	qaCmd.Flags().StringVar(&qaFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(qaCmd)
}

func runQA(cmd *cobra.Command, args []string) {
	reg, err := resolveRegistry()
	if err != nil {
		fail("resolving registry", err)
	}

	report, err := qa.CheckFile(args[0], reg)
	if err != nil {
		fail("checking plan", err)
	}

	out, err := FormatResponse(report, OutputFormat(qaFormat))
	if err != nil {
		fail("formatting output", err)
	}
	fmt.Println(out)

	if report.Status != qa.StatusPass {
		os.Exit(1)
	}
}
