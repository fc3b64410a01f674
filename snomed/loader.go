package snomed

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/alexanderbrown/snomed-squasher/errors"
	"github.com/alexanderbrown/snomed-squasher/logger"
)

// Option configures snapshot loading.
type Option func(*loadOptions)

type loadOptions struct {
	includeInactive   bool
	corruptThreshold  float64
	release           string
	ancestorCacheSize int
	log               *zap.SugaredLogger
}

func defaultOptions() loadOptions {
	return loadOptions{
		corruptThreshold:  0.01,
		ancestorCacheSize: 4096,
		log:               logger.Named("snomed.loader"),
	}
}

// WithInactive retains inactive description rows for historical lookups.
// Hierarchy edges and the text index are always built from active rows only.
func WithInactive() Option {
	return func(o *loadOptions) { o.includeInactive = true }
}

// WithCorruptThreshold sets the maximum tolerated ratio of malformed rows
// per file before loading fails with ErrCorruptSnapshot.
func WithCorruptThreshold(ratio float64) Option {
	return func(o *loadOptions) { o.corruptThreshold = ratio }
}

// WithRelease pins loading to a single release directory instead of every
// release found under the definitions path.
func WithRelease(release string) Option {
	return func(o *loadOptions) { o.release = release }
}

// WithAncestorCacheSize bounds the snapshot's ancestor memoization.
func WithAncestorCacheSize(n int) Option {
	return func(o *loadOptions) { o.ancestorCacheSize = n }
}

// WithLogger overrides the loader's logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *loadOptions) { o.log = log }
}

// DiscoverReleases lists the release directories under a definitions path.
func DiscoverReleases(definitionsPath string) ([]string, error) {
	entries, err := os.ReadDir(definitionsPath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read definitions path %s", definitionsPath)
	}

	var releases []string
	for _, entry := range entries {
		if entry.IsDir() {
			releases = append(releases, entry.Name())
		}
	}
	sort.Strings(releases)
	return releases, nil
}

// releaseTables holds the parsed rows of one release.
type releaseTables struct {
	concepts      []ConceptRow
	descriptions  []DescriptionRow
	relationships []RelationshipRow
}

// Snapshot table names, matched against the release file names
const (
	tableConcept      = "Concept"
	tableDescription  = "Description"
	tableRelationship = "Relationship"
)

// findTableFile locates a snapshot table file within a release directory.
// The standard layout nests files under Snapshot/Terminology; a pre-flattened
// distributable subset keeps them at the release root.
func findTableFile(releaseDir, table string) (string, error) {
	patterns := []string{
		filepath.Join(releaseDir, "Snapshot", "Terminology", "*_"+table+"_*.txt"),
		filepath.Join(releaseDir, "*_"+table+"_*.txt"),
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return "", errors.Wrapf(err, "bad glob for %s table", table)
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[0], nil
		}
	}

	return "", errors.Wrapf(errors.ErrMissingDefinitionFile,
		"no %s snapshot file in %s", table, releaseDir)
}

// loadRelease parses the three snapshot tables of one release.
func loadRelease(definitionsPath, release string, o loadOptions) (*releaseTables, error) {
	releaseDir := filepath.Join(definitionsPath, release)

	conceptFile, err := findTableFile(releaseDir, tableConcept)
	if err != nil {
		return nil, err
	}
	descriptionFile, err := findTableFile(releaseDir, tableDescription)
	if err != nil {
		return nil, err
	}
	relationshipFile, err := findTableFile(releaseDir, tableRelationship)
	if err != nil {
		return nil, err
	}

	tables := &releaseTables{}

	err = parseTable(conceptFile, o, func(row tableRow) error {
		id, err := ParseCUI(row.get("id"))
		if err != nil {
			return err
		}
		active, err := parseActive(row.get("active"))
		if err != nil {
			return err
		}
		if !active {
			return nil
		}
		tables.concepts = append(tables.concepts, ConceptRow{ID: id, Active: active})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = parseTable(descriptionFile, o, func(row tableRow) error {
		conceptID, err := ParseCUI(row.get("conceptId"))
		if err != nil {
			return err
		}
		active, err := parseActive(row.get("active"))
		if err != nil {
			return err
		}
		if !active && !o.includeInactive {
			return nil
		}
		status, err := parseNameStatus(row.get("typeId"))
		if err != nil {
			return err
		}
		term := row.get("term")
		if term == "" {
			return errors.New("empty term")
		}
		tables.descriptions = append(tables.descriptions, DescriptionRow{
			ConceptID: conceptID,
			Term:      term,
			Status:    status,
			Release:   release,
			Active:    active,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = parseTable(relationshipFile, o, func(row tableRow) error {
		active, err := parseActive(row.get("active"))
		if err != nil {
			return err
		}
		typeID, err := strconv.ParseInt(row.get("typeId"), 10, 64)
		if err != nil {
			return errors.Wrap(err, "bad relationship typeId")
		}
		// Only active is-a edges define the hierarchy
		if !active || typeID != isARelationship {
			return nil
		}
		sourceID, err := ParseCUI(row.get("sourceId"))
		if err != nil {
			return err
		}
		destinationID, err := ParseCUI(row.get("destinationId"))
		if err != nil {
			return err
		}
		tables.relationships = append(tables.relationships, RelationshipRow{
			SourceID:      sourceID,
			DestinationID: destinationID,
			Release:       release,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.log.Infow("Loaded release",
		"release", release,
		"rows", len(tables.concepts)+len(tables.descriptions)+len(tables.relationships),
	)

	return tables, nil
}

// tableRow is one parsed line keyed by header column name.
type tableRow struct {
	columns map[string]int
	fields  []string
}

func (r tableRow) get(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

// parseTable reads a tab-delimited snapshot file in a single pass, invoking
// accept per data row. A row accept rejects is skipped with a warning; when
// the proportion of skipped rows exceeds the corrupt threshold the whole
// load fails rather than producing a degraded graph.
func parseTable(path string, o loadOptions, accept func(tableRow) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return errors.Wrapf(err, "cannot read header of %s", path)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var total, skipped int
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Unreadable line, count and continue
			total++
			skipped++
			o.log.Warnw("Skipping unreadable row", "file", filepath.Base(path), "error", err)
			continue
		}

		total++
		if err := accept(tableRow{columns: columns, fields: fields}); err != nil {
			skipped++
			o.log.Warnw("Skipping malformed row",
				"file", filepath.Base(path),
				"line", total+1,
				"error", err,
			)
		}
	}

	if total == 0 {
		return errors.Wrapf(errors.ErrCorruptSnapshot, "%s contains no data rows", path)
	}
	if ratio := float64(skipped) / float64(total); ratio > o.corruptThreshold {
		return errors.Wrapf(errors.ErrCorruptSnapshot,
			"%s: %d of %d rows malformed (threshold %.2f)",
			path, skipped, total, o.corruptThreshold)
	}
	if skipped > 0 {
		o.log.Warnw("File loaded with skipped rows",
			"file", filepath.Base(path), "rows", total, "skipped", skipped)
	}

	return nil
}

func parseActive(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, errors.Newf("bad active flag %q", s)
	}
}

func parseNameStatus(typeID string) (NameStatus, error) {
	id, err := strconv.ParseInt(typeID, 10, 64)
	if err != nil {
		return "", errors.Wrap(err, "bad description typeId")
	}
	switch id {
	case descriptionTypePreferred:
		return StatusPrimary, nil
	case descriptionTypeSynonym:
		return StatusAcceptable, nil
	default:
		return "", errors.Newf("unrecognized description typeId %d", id)
	}
}
