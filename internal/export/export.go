// Package export packs a run's artifact directory into a single
// zstd-compressed tarball for hand-off to the installation team.
package export

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"modplan/internal/errors"
)

// Bundle writes every regular file of artifactDir into a .tar.zst archive
// at outPath. Files are archived in lexical order so identical artifact
// sets produce identical bundles.
func Bundle(artifactDir, outPath string) error {
	entries, err := os.ReadDir(artifactDir)
	if err != nil {
		return errors.New(errors.ArtifactWrite, errors.StageRender,
			fmt.Sprintf("cannot read artifact directory %s", artifactDir), err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return errors.New(errors.ArtifactWrite, errors.StageRender,
			fmt.Sprintf("no artifacts found in %s", artifactDir), nil)
	}
	sort.Strings(names)

	out, err := os.Create(outPath)
	if err != nil {
		return errors.New(errors.ArtifactWrite, errors.StageRender,
			fmt.Sprintf("cannot create bundle %s", outPath), err)
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return errors.New(errors.ArtifactWrite, errors.StageRender, "cannot start compressor", err)
	}
	tw := tar.NewWriter(zw)

	for _, name := range names {
		if err := addFile(tw, artifactDir, name); err != nil {
			tw.Close()
			zw.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return errors.New(errors.ArtifactWrite, errors.StageRender, "cannot finalize archive", err)
	}
	if err := zw.Close(); err != nil {
		return errors.New(errors.ArtifactWrite, errors.StageRender, "cannot finalize compression", err)
	}
	return nil
}

func addFile(tw *tar.Writer, dir, name string) error {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return errors.New(errors.ArtifactWrite, errors.StageRender,
			fmt.Sprintf("cannot stat %s", path), err)
	}

	// Fixed metadata keeps bundles byte-stable across hosts.
	header := &tar.Header{
		Name: name,
		Mode: 0644,
		Size: info.Size(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return errors.New(errors.ArtifactWrite, errors.StageRender,
			fmt.Sprintf("cannot write header for %s", name), err)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.New(errors.ArtifactWrite, errors.StageRender,
			fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return errors.New(errors.ArtifactWrite, errors.StageRender,
			fmt.Sprintf("cannot archive %s", name), err)
	}
	return nil
}

// DefaultBundleName derives the bundle filename from the artifact
// directory name (run-<id> -> run-<id>.tar.zst).
func DefaultBundleName(artifactDir string) string {
	base := filepath.Base(strings.TrimRight(artifactDir, string(filepath.Separator)))
	return base + ".tar.zst"
}
