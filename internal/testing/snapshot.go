// Package testing provides fixture helpers for snomed-squasher tests.
package testing

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Description typeIds used by fixtures
const (
	TypePreferred = "900000000000003001"
	TypeSynonym   = "900000000000013009"
	TypeIsA       = "116680003"
)

// ConceptFixture is one Concept table row.
type ConceptFixture struct {
	ID     int64
	Active bool
}

// DescriptionFixture is one Description table row.
type DescriptionFixture struct {
	ID        int64
	ConceptID int64
	Term      string
	TypeID    string
	Active    bool
}

// RelationshipFixture is one Relationship table row.
type RelationshipFixture struct {
	ID            int64
	SourceID      int64
	DestinationID int64
	TypeID        string
	Active        bool
}

// ReleaseFixture describes one release directory worth of snapshot tables.
type ReleaseFixture struct {
	Name          string
	Concepts      []ConceptFixture
	Descriptions  []DescriptionFixture
	Relationships []RelationshipFixture

	// ExtraConceptLines etc. are appended verbatim after the well-formed
	// rows, for malformed-input tests.
	ExtraConceptLines      []string
	ExtraDescriptionLines  []string
	ExtraRelationshipLines []string

	// OmitTables suppresses writing the named tables entirely, for
	// missing-file tests. Values: "Concept", "Description", "Relationship".
	OmitTables []string
}

// WriteSnapshot materializes the fixture releases as a definitions
// directory under t.TempDir() and returns its path.
func WriteSnapshot(t *testing.T, releases ...ReleaseFixture) string {
	t.Helper()

	root := t.TempDir()
	for _, release := range releases {
		dir := filepath.Join(root, release.Name, "Snapshot", "Terminology")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create release dir: %v", err)
		}

		if !omitted(release.OmitTables, "Concept") {
			writeTable(t, filepath.Join(dir, "sct2_Concept_Snapshot_GB_20240101.txt"),
				"id\teffectiveTime\tactive\tmoduleId\tdefinitionStatusId",
				conceptLines(release), release.ExtraConceptLines)
		}
		if !omitted(release.OmitTables, "Description") {
			writeTable(t, filepath.Join(dir, "sct2_Description_Snapshot-en_GB_20240101.txt"),
				"id\teffectiveTime\tactive\tmoduleId\tconceptId\tlanguageCode\ttypeId\tterm\tcaseSignificanceId",
				descriptionLines(release), release.ExtraDescriptionLines)
		}
		if !omitted(release.OmitTables, "Relationship") {
			writeTable(t, filepath.Join(dir, "sct2_Relationship_Snapshot_GB_20240101.txt"),
				"id\teffectiveTime\tactive\tmoduleId\tsourceId\tdestinationId\trelationshipGroup\ttypeId\tcharacteristicTypeId\tmodifierId",
				relationshipLines(release), release.ExtraRelationshipLines)
		}
	}

	return root
}

func omitted(omit []string, table string) bool {
	for _, name := range omit {
		if name == table {
			return true
		}
	}
	return false
}

func writeTable(t *testing.T, path, header string, lines, extra []string) {
	t.Helper()

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	for _, line := range append(lines, extra...) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func conceptLines(r ReleaseFixture) []string {
	lines := make([]string, 0, len(r.Concepts))
	for _, c := range r.Concepts {
		lines = append(lines, strings.Join([]string{
			strconv.FormatInt(c.ID, 10),
			"20240101",
			activeFlag(c.Active),
			"900000000000207008",
			"900000000000074008",
		}, "\t"))
	}
	return lines
}

func descriptionLines(r ReleaseFixture) []string {
	lines := make([]string, 0, len(r.Descriptions))
	for _, d := range r.Descriptions {
		lines = append(lines, strings.Join([]string{
			strconv.FormatInt(d.ID, 10),
			"20240101",
			activeFlag(d.Active),
			"900000000000207008",
			strconv.FormatInt(d.ConceptID, 10),
			"en",
			d.TypeID,
			d.Term,
			"900000000000448009",
		}, "\t"))
	}
	return lines
}

func relationshipLines(r ReleaseFixture) []string {
	lines := make([]string, 0, len(r.Relationships))
	for _, rel := range r.Relationships {
		lines = append(lines, strings.Join([]string{
			strconv.FormatInt(rel.ID, 10),
			"20240101",
			activeFlag(rel.Active),
			"900000000000207008",
			strconv.FormatInt(rel.SourceID, 10),
			strconv.FormatInt(rel.DestinationID, 10),
			"0",
			rel.TypeID,
			"900000000000011006",
			"900000000000451002",
		}, "\t"))
	}
	return lines
}

func activeFlag(active bool) string {
	if active {
		return "1"
	}
	return "0"
}

// RespiratoryFixture is the shared miniature ontology used across the query
// tests: asthma under disorder of respiratory system under disease, with a
// diamond above bronchiolitis and a deliberately synonym-ambiguous pair.
//
//	138875005 SNOMED CT Concept (root)
//	└── 64572001 Disease (disorder)
//	    ├── 50043002 Disorder of respiratory system (disorder)
//	    │   ├── 195967001 Asthma (disorder) ["Asthma", "Bronchial asthma"]
//	    │   ├── 195742007 Chest infection (disorder)
//	    │   └── 275498002 Respiratory tract infection (disorder)
//	    │       ├── 4120002 Bronchiolitis (disorder)
//	    │       └── 233604007 Pneumonia (disorder)
//	    └── 40733004 Infectious disease (disorder)
//	        ├── 275498002 (second parent)
//	        └── 4120002 (second parent: Disease sits 2 hops via this side, 3 via the other)
func RespiratoryFixture() ReleaseFixture {
	return ReleaseFixture{
		Name: "uk_sct2cl_39.2.0",
		Concepts: []ConceptFixture{
			{ID: 138875005, Active: true},
			{ID: 64572001, Active: true},
			{ID: 50043002, Active: true},
			{ID: 195967001, Active: true},
			{ID: 275498002, Active: true},
			{ID: 4120002, Active: true},
			{ID: 40733004, Active: true},
			{ID: 195742007, Active: true},
			{ID: 233604007, Active: true},
		},
		Descriptions: []DescriptionFixture{
			{ID: 1, ConceptID: 138875005, Term: "SNOMED CT Concept (SNOMED RT+CTV3)", TypeID: TypePreferred, Active: true},
			{ID: 2, ConceptID: 64572001, Term: "Disease (disorder)", TypeID: TypePreferred, Active: true},
			{ID: 3, ConceptID: 50043002, Term: "Disorder of respiratory system (disorder)", TypeID: TypePreferred, Active: true},
			{ID: 4, ConceptID: 195967001, Term: "Asthma (disorder)", TypeID: TypePreferred, Active: true},
			{ID: 5, ConceptID: 195967001, Term: "Asthma", TypeID: TypeSynonym, Active: true},
			{ID: 6, ConceptID: 195967001, Term: "Bronchial asthma", TypeID: TypeSynonym, Active: true},
			{ID: 7, ConceptID: 275498002, Term: "Respiratory tract infection (disorder)", TypeID: TypePreferred, Active: true},
			{ID: 8, ConceptID: 4120002, Term: "Bronchiolitis (disorder)", TypeID: TypePreferred, Active: true},
			{ID: 9, ConceptID: 40733004, Term: "Infectious disease (disorder)", TypeID: TypePreferred, Active: true},
			// Two concepts sharing the folded synonym "chest infection"
			{ID: 10, ConceptID: 195742007, Term: "Chest infection (disorder)", TypeID: TypePreferred, Active: true},
			{ID: 11, ConceptID: 195742007, Term: "Chest infection", TypeID: TypeSynonym, Active: true},
			{ID: 12, ConceptID: 233604007, Term: "Pneumonia (disorder)", TypeID: TypePreferred, Active: true},
			{ID: 13, ConceptID: 233604007, Term: "Chest infection", TypeID: TypeSynonym, Active: true},
			// Inactive description, excluded by default loads
			{ID: 14, ConceptID: 195967001, Term: "Asthma NOS", TypeID: TypeSynonym, Active: false},
		},
		Relationships: []RelationshipFixture{
			{ID: 100, SourceID: 64572001, DestinationID: 138875005, TypeID: TypeIsA, Active: true},
			{ID: 101, SourceID: 50043002, DestinationID: 64572001, TypeID: TypeIsA, Active: true},
			{ID: 102, SourceID: 195967001, DestinationID: 50043002, TypeID: TypeIsA, Active: true},
			{ID: 103, SourceID: 275498002, DestinationID: 50043002, TypeID: TypeIsA, Active: true},
			{ID: 104, SourceID: 275498002, DestinationID: 40733004, TypeID: TypeIsA, Active: true},
			{ID: 105, SourceID: 40733004, DestinationID: 64572001, TypeID: TypeIsA, Active: true},
			{ID: 106, SourceID: 4120002, DestinationID: 275498002, TypeID: TypeIsA, Active: true},
			{ID: 111, SourceID: 4120002, DestinationID: 40733004, TypeID: TypeIsA, Active: true},
			{ID: 107, SourceID: 195742007, DestinationID: 50043002, TypeID: TypeIsA, Active: true},
			{ID: 108, SourceID: 233604007, DestinationID: 275498002, TypeID: TypeIsA, Active: true},
			// Inactive edge, must be discarded at load
			{ID: 109, SourceID: 195967001, DestinationID: 40733004, TypeID: TypeIsA, Active: false},
			// Non-is-a relationship type, must be discarded at load
			{ID: 110, SourceID: 195967001, DestinationID: 64572001, TypeID: "363698007", Active: true},
		},
	}
}
