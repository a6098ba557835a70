// Package version provides centralized version information for modplan.
// This allows all packages to reference a single source of truth for version info.
package version

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X modplan/internal/version.Version=1.0.0 -X modplan/internal/version.Commit=abc123"
var (
	// Version is the semantic version of modplan
	Version = "1.2.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns the version string shown by --version, with commit and build
// date appended when the build stamped them.
func Info() string {
	info := Version
	if Commit != "unknown" && len(Commit) >= 7 {
		info += " (" + Commit[:7]
		if BuildDate != "unknown" {
			info += ", built " + BuildDate
		}
		info += ")"
	}
	return info
}
