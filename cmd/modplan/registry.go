package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modplan/internal/project"
	"modplan/internal/registry"
)

var (
	registryDirFlag     string
	registryPathFlag    string
	registryVersionFlag string
	registryFormatFlag  string
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect module registry snapshots",
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List modules in the resolved registry snapshot",
	Long: `List all modules in the registry snapshot that matches the target
platform version.

Examples:
  modplan registry list
  modplan registry list --platform-version 16.0
  modplan registry list --snapshot registry/modules-17.json`,
	Run: runRegistryList,
}

var registryShowCmd = &cobra.Command{
	Use:   "show <module-id>",
	Short: "Show one module descriptor",
	Args:  cobra.ExactArgs(1),
	Run:   runRegistryShow,
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate <snapshot>",
	Short: "Validate a registry snapshot file",
	Long: `Validate a registry snapshot: every descriptor must carry a display
name and a known edition, and the dependency graph must be acyclic.

Exits non-zero when the snapshot is malformed or contains a cycle.`,
	Args: cobra.ExactArgs(1),
	Run:  runRegistryValidate,
}

func init() {
	registryCmd.PersistentFlags().StringVar(&registryDirFlag, "registry-dir", "", "Directory of registry snapshots")
	registryCmd.PersistentFlags().StringVar(&registryPathFlag, "snapshot", "", "Explicit snapshot file (overrides --registry-dir)")
	registryCmd.PersistentFlags().StringVar(&registryVersionFlag, "platform-version", "", "Target platform version")
	registryCmd.PersistentFlags().StringVar(&registryFormatFlag, "format", "human", "Output format (json, human)")
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registryShowCmd)
	registryCmd.AddCommand(registryValidateCmd)
	rootCmd.AddCommand(registryCmd)
}

// resolveRegistry loads the snapshot the current flags and workspace
// declaration point at.
func resolveRegistry() (*registry.Registry, error) {
	if registryPathFlag != "" {
		return registry.Load(registryPathFlag)
	}

	cfg, decl, err := loadWorkspace()
	if err != nil {
		return nil, err
	}

	dir := project.Merge(registryDirFlag, project.Merge(decl.RegistryDir, cfg.Planning.RegistryDir))
	version := project.Merge(registryVersionFlag, project.Merge(decl.PlatformVersion, cfg.Planning.PlatformVersion))
	return registry.Resolve(dir, version)
}

// registryListing is the JSON shape of `registry list`.
type registryListing struct {
	Source          string                `json:"source"`
	VersionPatterns []string              `json:"version_patterns,omitempty"`
	Modules         []registry.Descriptor `json:"modules"`
}

func runRegistryList(cmd *cobra.Command, args []string) {
	reg, err := resolveRegistry()
	if err != nil {
		fail("resolving registry", err)
	}

	var resp interface{} = reg
	if OutputFormat(registryFormatFlag) == FormatJSON {
		listing := registryListing{
			Source:          reg.Source(),
			VersionPatterns: reg.VersionPatterns(),
		}
		for _, id := range reg.ModuleIDs() {
			desc, _ := reg.Descriptor(id)
			listing.Modules = append(listing.Modules, desc)
		}
		resp = listing
	}

	out, err := FormatResponse(resp, OutputFormat(registryFormatFlag))
	if err != nil {
		fail("formatting output", err)
	}
	fmt.Println(out)
}

func runRegistryShow(cmd *cobra.Command, args []string) {
	reg, err := resolveRegistry()
	if err != nil {
		fail("resolving registry", err)
	}

	desc, ok := reg.Descriptor(args[0])
	if !ok {
		fail("looking up module", fmt.Errorf("module %q not found in %s", args[0], reg.Source()))
	}

	out, err := FormatResponse(desc, OutputFormat(registryFormatFlag))
	if err != nil {
		fail("formatting output", err)
	}
	fmt.Println(out)
}

func runRegistryValidate(cmd *cobra.Command, args []string) {
	reg, err := registry.Load(args[0])
	if err != nil {
		fail("validating snapshot", err)
	}
	fmt.Printf("OK: %s (%d modules)\n", args[0], reg.Len())
}
