// Package extract pulls the finding/disease subset out of a SNOMED CT
// release archive. Full releases ship dozens of reference sets; only the
// Snapshot Concept, Description and Relationship tables matter for ontology
// queries, so everything else is left behind.
package extract

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-getter"

	"github.com/alexanderbrown/snomed-squasher/errors"
	"github.com/alexanderbrown/snomed-squasher/logger"
)

// relevantTables are the filename markers of the three snapshot tables the
// loader reads.
var relevantTables = []string{"_Concept_", "_Description_", "_Relationship_"}

const snapshotMarker = "Snapshot"

var (
	releaseDatePattern = regexp.MustCompile(`20[0-9]{2}[0-9]*`)
	releaseSuffix      = regexp.MustCompile(`_20[0-9]+[A-Za-z]*$`)
)

// StripReleaseDate removes the release-date digits from a snapshot table
// filename, so that files from different releases of the same edition can be
// compared by name.
func StripReleaseDate(filename string) string {
	return releaseDatePattern.ReplaceAllString(filename, "")
}

// Relevant reports whether a filename names a snapshot table the ontology
// loader needs.
func Relevant(filename string) bool {
	if !strings.Contains(filename, snapshotMarker) {
		return false
	}
	for _, table := range relevantTables {
		if strings.Contains(filename, table) {
			return true
		}
	}
	return false
}

// ReleaseName derives a release directory name from an archive source:
// the base name with the extension and any trailing release-date stamp
// removed ("uk_sct2cl_39.2.0_20241120000001Z.zip" becomes
// "uk_sct2cl_39.2.0").
func ReleaseName(source string) string {
	name := filepath.Base(source)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = releaseSuffix.ReplaceAllString(name, "")
	return name
}

// Result describes one completed extraction.
type Result struct {
	// Release is the derived release directory name.
	Release string
	// Files holds the base names of the snapshot tables found in the
	// archive, sorted.
	Files []string
	// Destination is the directory the tables were copied into; empty when
	// the extraction was a listing-only run.
	Destination string
}

// Run fetches a release archive, unpacks it, and copies the relevant
// snapshot tables into <destination>/<release>/Snapshot/Terminology/. The
// source may be a local archive path or a URL; go-getter handles fetching
// and decompression. An empty destination lists the relevant files without
// copying anything. A non-empty destination release directory is refused
// rather than overwritten.
func Run(ctx context.Context, source, destination string) (*Result, error) {
	log := logger.Named("extract")

	tempDir, err := os.MkdirTemp("", "snomed-extract-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create staging directory")
	}
	defer os.RemoveAll(tempDir)

	log.Infow("Fetching release archive", "file", source)

	client := &getter.Client{
		Ctx:     ctx,
		Src:     source,
		Dst:     tempDir,
		Mode:    getter.ClientModeDir,
		Getters: getter.Getters,
	}
	if err := client.Get(); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", source)
	}

	relevant, err := relevantFiles(tempDir)
	if err != nil {
		return nil, err
	}
	if len(relevant) == 0 {
		return nil, errors.Newf("archive %s contains no snapshot tables", source)
	}

	result := &Result{
		Release: ReleaseName(source),
		Files:   baseNames(relevant),
	}

	if destination == "" {
		return result, nil
	}

	target := filepath.Join(destination, result.Release, "Snapshot", "Terminology")
	if err := prepareDestination(target); err != nil {
		return nil, err
	}
	for _, path := range relevant {
		if err := copyFile(path, filepath.Join(target, filepath.Base(path))); err != nil {
			return nil, err
		}
	}
	result.Destination = target

	log.Infow("Release extracted",
		"release", result.Release,
		"file", target,
		"rows", len(result.Files),
	)
	return result, nil
}

// relevantFiles walks an unpacked archive collecting snapshot table paths.
func relevantFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && Relevant(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan unpacked archive")
	}
	sort.Strings(paths)
	return paths, nil
}

// prepareDestination creates the target directory, refusing one that
// already holds files.
func prepareDestination(target string) error {
	entries, err := os.ReadDir(target)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(os.MkdirAll(target, 0o755), "failed to create destination")
		}
		return errors.Wrapf(err, "cannot read destination %s", target)
	}
	if len(entries) > 0 {
		return errors.Newf("destination %s is not empty", target)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "failed to copy %s", filepath.Base(src))
	}
	return out.Close()
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
