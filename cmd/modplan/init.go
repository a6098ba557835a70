package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modplan/internal/config"
	"modplan/internal/project"
)

var (
	initProjectID       string
	initClientName      string
	initEdition         string
	initPlatformVersion string
	initForce           bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a planning workspace",
	Long: `Initialize the current directory as a planning workspace: writes
.modplan/config.json with tool defaults and a modplan.toml project
declaration for the engagement.

Examples:
  modplan init --project-id acme-erp --client-name "Acme GmbH"
  modplan init --project-id acme-erp --edition enterprise --platform-version 17.0`,
	Run: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initProjectID, "project-id", "", "Project identifier")
	initCmd.Flags().StringVar(&initClientName, "client-name", "", "Client display name")
	initCmd.Flags().StringVar(&initEdition, "edition", "community", "Target edition: community, enterprise, or unknown")
	initCmd.Flags().StringVar(&initPlatformVersion, "platform-version", "17.0", "Target platform version")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing declaration")
	initCmd.MarkFlagRequired("project-id")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	cwd, err := os.Getwd()
	if err != nil {
		fail("determining working directory", err)
	}

	if _, err := os.Stat(project.DeclarationFile); err == nil && !initForce {
		fail("initializing workspace", fmt.Errorf("%s already exists (use --force to overwrite)", project.DeclarationFile))
	}

	cfg := config.DefaultConfig()
	cfg.Planning.Edition = initEdition
	cfg.Planning.PlatformVersion = initPlatformVersion
	if err := cfg.Validate(); err != nil {
		fail("validating config", err)
	}
	if err := cfg.Save(cwd); err != nil {
		fail("writing config", err)
	}

	decl := &project.Declaration{
		ProjectID:       initProjectID,
		ClientName:      initClientName,
		Edition:         initEdition,
		PlatformVersion: initPlatformVersion,
		RegistryDir:     cfg.Planning.RegistryDir,
		OutputDir:       cfg.Planning.OutputDir,
	}
	if err := decl.Save(cwd); err != nil {
		fail("writing declaration", err)
	}

	fmt.Printf("Initialized workspace for %s\n", initProjectID)
	fmt.Printf("  .modplan/config.json\n")
	fmt.Printf("  %s\n", project.DeclarationFile)
}
