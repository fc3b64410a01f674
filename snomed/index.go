package snomed

import (
	"sort"

	"github.com/alexanderbrown/snomed-squasher/errors"
)

// descriptionIndex stores all retained descriptions grouped by owning
// concept, plus a case-folded inverted index from exact term text to the
// set of concepts carrying it.
type descriptionIndex struct {
	known     map[CUI]struct{}
	byConcept map[CUI][]DescriptionRow
	terms     map[string][]CUI
}

// buildDescriptionIndex groups descriptions by concept and builds the
// inverted text index. Only descriptions of loaded concepts are retained
// (the tables are denormalized; a description of a dropped concept is
// orphaned data). The inverted index covers active rows only.
func buildDescriptionIndex(concepts []ConceptRow, descriptions []DescriptionRow) *descriptionIndex {
	idx := &descriptionIndex{
		known:     make(map[CUI]struct{}, len(concepts)),
		byConcept: make(map[CUI][]DescriptionRow),
		terms:     make(map[string][]CUI),
	}
	for _, c := range concepts {
		idx.known[c.ID] = struct{}{}
	}

	termSets := make(map[string]map[CUI]struct{})
	for _, d := range descriptions {
		if _, ok := idx.known[d.ConceptID]; !ok {
			continue
		}
		idx.byConcept[d.ConceptID] = append(idx.byConcept[d.ConceptID], d)

		if !d.Active {
			continue
		}
		folded := foldTerm(d.Term)
		if termSets[folded] == nil {
			termSets[folded] = make(map[CUI]struct{})
		}
		termSets[folded][d.ConceptID] = struct{}{}
	}

	for term, set := range termSets {
		idx.terms[term] = sortedCUIs(set)
	}

	for cui := range idx.byConcept {
		rows := idx.byConcept[cui]
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].Status != rows[j].Status {
				return rows[i].Status == StatusPrimary
			}
			if rows[i].Term != rows[j].Term {
				return rows[i].Term < rows[j].Term
			}
			return rows[i].Release < rows[j].Release
		})
	}

	return idx
}

// concepts returns every retained description row for a concept, including
// non-preferred synonyms and, when loaded, inactive rows.
func (idx *descriptionIndex) concepts(cui CUI) ([]Concept, error) {
	if _, ok := idx.known[cui]; !ok {
		return nil, errors.NewUnknownConcept(int64(cui))
	}

	rows := idx.byConcept[cui]
	out := make([]Concept, 0, len(rows))
	for _, d := range rows {
		out = append(out, d.concept())
	}
	return out, nil
}

// primary returns the single description satisfying the primary invariant:
// active, Preferred status, ideally carrying a semantic tag. Zero qualifying
// rows and several conflicting ones are both data inconsistencies.
func (idx *descriptionIndex) primary(cui CUI) (Concept, error) {
	if _, ok := idx.known[cui]; !ok {
		return Concept{}, errors.NewUnknownConcept(int64(cui))
	}

	var candidates []DescriptionRow
	for _, d := range idx.byConcept[cui] {
		if d.Active && d.Status == StatusPrimary {
			candidates = append(candidates, d)
		}
	}

	// The same preferred term restated by a newer release is not a conflict
	candidates = dedupeByTerm(candidates)

	switch len(candidates) {
	case 0:
		return Concept{}, errors.Wrapf(errors.ErrNoPrimaryDescription,
			"concept %d", cui)
	case 1:
		return candidates[0].concept(), nil
	default:
		// Prefer the tagged rows; an untagged Preferred term is usually a
		// residue of partial inactivation
		tagged := candidates[:0:0]
		for _, d := range candidates {
			if semanticTag(d.Term, d.Status) != "" {
				tagged = append(tagged, d)
			}
		}
		if len(tagged) == 1 {
			return tagged[0].concept(), nil
		}
		return Concept{}, errors.Wrapf(errors.ErrNoPrimaryDescription,
			"concept %d has %d conflicting primary descriptions", cui, len(candidates))
	}
}

// dedupeByTerm collapses rows with identical folded term text, keeping the
// most recent release.
func dedupeByTerm(rows []DescriptionRow) []DescriptionRow {
	latest := make(map[string]DescriptionRow)
	var order []string
	for _, d := range rows {
		key := foldTerm(d.Term)
		prev, seen := latest[key]
		if !seen {
			order = append(order, key)
			latest[key] = d
			continue
		}
		if d.Release > prev.Release {
			latest[key] = d
		}
	}

	out := make([]DescriptionRow, 0, len(order))
	for _, key := range order {
		out = append(out, latest[key])
	}
	return out
}

// conceptIDs returns the concepts whose description text equals the folded
// term exactly.
func (idx *descriptionIndex) conceptIDs(foldedTerm string) []CUI {
	return idx.terms[foldedTerm]
}

// has reports whether the concept id was loaded.
func (idx *descriptionIndex) has(cui CUI) bool {
	_, ok := idx.known[cui]
	return ok
}
