package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"modplan/internal/errors"
)

// matchRank orders how specifically a snapshot pattern covers a version.
type matchRank int

const (
	rankNone    matchRank = 0
	rankDefault matchRank = 1 // pattern "default" (or no patterns declared)
	rankPrefix  matchRank = 2 // "17.x", "17*", bare major
	rankExact   matchRank = 3
)

// Resolve selects the registry snapshot covering the requested platform
// version from a directory of snapshot files (*.json, *.toml). The most
// specific match wins: exact version over wildcard over a declared default.
// No match is fatal; there is never a silent fallback to an incompatible
// catalog.
func Resolve(dir, platformVersion string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New(errors.RegistryNotFound, errors.StageRegistry,
			fmt.Sprintf("cannot read registry directory %s", dir), err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".toml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	// Directory order is platform-dependent; sort so tie-breaks are stable.
	sort.Strings(paths)

	var (
		best     *Registry
		bestRank = rankNone
	)
	for _, path := range paths {
		reg, err := Load(path)
		if err != nil {
			return nil, err
		}
		rank := coverage(reg.VersionPatterns(), platformVersion)
		if rank > bestRank {
			best = reg
			bestRank = rank
		}
	}

	if best == nil {
		return nil, errors.New(errors.RegistryNotFound, errors.StageRegistry,
			fmt.Sprintf("no registry snapshot in %s covers platform version %q", dir, platformVersion), nil)
	}
	return best, nil
}

// coverage returns the best rank among a snapshot's declared patterns for
// the requested version. A snapshot with no declared patterns acts as the
// default catalog.
func coverage(patterns []string, version string) matchRank {
	version = strings.ToLower(strings.TrimSpace(version))
	if len(patterns) == 0 {
		return rankDefault
	}

	best := rankNone
	for _, pattern := range patterns {
		normalized := strings.ToLower(strings.TrimSpace(pattern))
		var rank matchRank
		switch {
		case normalized == "default":
			rank = rankDefault
		case normalized == version:
			rank = rankExact
		case MatchesVersionPattern(normalized, version):
			rank = rankPrefix
		}
		if rank > best {
			best = rank
		}
	}
	return best
}
