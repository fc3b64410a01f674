// Package snomed reconstructs a SNOMED CT concept hierarchy from snapshot
// files and answers structural queries over it: resolve freetext to a
// canonical concept, and traverse parent/child/ancestor relationships.
//
// The engine is built once from the three snapshot tables (Concept,
// Description, Relationship) into an immutable Snapshot. All query
// operations are pure reads of that snapshot and safe for concurrent use.
package snomed

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alexanderbrown/snomed-squasher/errors"
)

// CUI is a numeric SNOMED concept identifier (commonly 6-18 digits).
type CUI int64

// ParseCUI parses a decimal concept identifier.
func ParseCUI(s string) (CUI, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Newf("invalid concept identifier %q", s)
	}
	return CUI(id), nil
}

func (c CUI) String() string {
	return strconv.FormatInt(int64(c), 10)
}

// NameStatus tags a description as the preferred term or an acceptable synonym.
type NameStatus string

const (
	// StatusPrimary marks a Preferred description (the canonical name)
	StatusPrimary NameStatus = "P"
	// StatusAcceptable marks an Acceptable synonym
	StatusAcceptable NameStatus = "A"
)

// Description typeIds carried by snapshot files
const (
	descriptionTypePreferred = 900000000000003001 // fully specified name
	descriptionTypeSynonym   = 900000000000013009

	// isARelationship is the reserved typeId for "is a kind of" edges,
	// child -> parent. All other relationship types are discarded at load.
	isARelationship = 116680003
)

// ConceptRow is one row of the Concept snapshot table.
type ConceptRow struct {
	ID     CUI
	Active bool
}

// DescriptionRow is one row of the Description snapshot table, joined with
// its release of origin.
type DescriptionRow struct {
	ConceptID CUI
	Term      string
	Status    NameStatus
	Release   string
	Active    bool
}

// RelationshipRow is a retained is-a edge: SourceID is the child concept,
// DestinationID its parent.
type RelationshipRow struct {
	SourceID      CUI
	DestinationID CUI
	Release       string
}

// Concept is the tabular query row every read operation returns: the concept
// identifier, one of its terms, the term's status, the release it came from,
// and the semantic tag extracted from primary names.
type Concept struct {
	CUI                CUI        `json:"cui"`
	Name               string     `json:"name"`
	NameStatus         NameStatus `json:"name_status"`
	Release            string     `json:"release"`
	DescriptionTypeIDs string     `json:"description_type_ids"`
}

// RankedConcept is a Concept with its minimum is-a distance from a query
// concept. Direct parents and children sit at level 1.
type RankedConcept struct {
	Concept
	Level int `json:"level"`
}

// Semantic tags appear in parentheses at the end of primary names, such as
// "(finding)" or "(disorder of respiratory system)".
var semanticTagPattern = regexp.MustCompile(`\(([^()]+)\)$`)

// semanticTag extracts the trailing parenthesised tag from a primary term.
// Synonyms carry no tag and yield an empty string.
func semanticTag(term string, status NameStatus) string {
	if status != StatusPrimary {
		return ""
	}
	m := semanticTagPattern.FindStringSubmatch(strings.TrimSpace(term))
	if m == nil {
		return ""
	}
	return m[1]
}

// foldTerm normalizes a term for text lookup. Case folding only: the known
// limitation is that concepts whose identity depends on letter case conflate.
func foldTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// concept builds the tabular row for a description.
func (d DescriptionRow) concept() Concept {
	return Concept{
		CUI:                d.ConceptID,
		Name:               d.Term,
		NameStatus:         d.Status,
		Release:            d.Release,
		DescriptionTypeIDs: semanticTag(d.Term, d.Status),
	}
}
