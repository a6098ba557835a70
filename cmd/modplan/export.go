package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modplan/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <run-dir>",
	Short: "Bundle a run's artifacts into a compressed archive",
	Long: `Bundle the artifacts of one run directory into a zstd-compressed tar
archive for handoff. The archive contents are deterministic: running the
export twice over the same run directory yields identical bytes.

Examples:
  modplan export outputs/run-<id>
  modplan export outputs/run-<id> -o handoff.tar.zst`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Archive path (default <run-dir>.tar.zst)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	artifactDir := args[0]

	outPath := exportOutput
	if outPath == "" {
		outPath = export.DefaultBundleName(artifactDir)
	}

	if err := export.Bundle(artifactDir, outPath); err != nil {
		fail("exporting artifacts", err)
	}
	fmt.Printf("Exported %s -> %s\n", artifactDir, outPath)
}
