package snomed

import (
	"sort"
	"strings"

	"github.com/alexanderbrown/snomed-squasher/errors"
)

// Semantic-tag suffixes retried when an exact name lookup misses. Clinical
// names are usually recorded with their tag ("Asthma (disorder)") while
// queries usually arrive without it.
var resolveSuffixes = []string{" (disorder)", " (finding)"}

// FindCUI maps freetext to a concept identifier. The text is case-folded
// and looked up exactly, retrying with the clinical-tag suffixes; the id is
// returned only when the text maps to descriptions of exactly one concept.
// Ambiguity and absence both yield ok == false, never a best-guess match.
// Disambiguation belongs to the caller.
func (s *Snapshot) FindCUI(text string) (CUI, bool) {
	folded := foldTerm(text)
	if folded == "" {
		return 0, false
	}

	matches := s.index.conceptIDs(folded)
	if len(matches) == 0 {
		for _, suffix := range resolveSuffixes {
			matches = append(matches, s.index.conceptIDs(folded+suffix)...)
		}
		matches = uniqueCUIs(matches)
	}

	if len(matches) == 1 {
		return matches[0], true
	}
	return 0, false
}

// FindConcepts returns every description whose folded text matches the
// query: exact matches first, then exact with a clinical-tag suffix, then
// substring containment as the final fallback. Each row keeps its own
// status and release; deduplication to one row per concept is left to the
// caller. An empty result is not an error.
func (s *Snapshot) FindConcepts(text string) []Concept {
	folded := foldTerm(text)
	if folded == "" {
		return nil
	}

	if rows := s.exactMatches(folded); len(rows) > 0 {
		return rows
	}

	var suffixed []Concept
	for _, suffix := range resolveSuffixes {
		suffixed = append(suffixed, s.exactMatches(folded+suffix)...)
	}
	if len(suffixed) > 0 {
		sortConcepts(suffixed)
		return suffixed
	}

	return s.substringMatches(folded)
}

// exactMatches collects every active description row whose folded text
// equals the query.
func (s *Snapshot) exactMatches(folded string) []Concept {
	var rows []Concept
	for _, cui := range s.index.conceptIDs(folded) {
		for _, d := range s.index.byConcept[cui] {
			if d.Active && foldTerm(d.Term) == folded {
				rows = append(rows, d.concept())
			}
		}
	}
	sortConcepts(rows)
	return rows
}

// substringMatches scans all active descriptions for folded containment.
// Linear in the description count; acceptable as the miss fallback.
func (s *Snapshot) substringMatches(folded string) []Concept {
	var rows []Concept
	for _, descriptions := range s.index.byConcept {
		for _, d := range descriptions {
			if d.Active && strings.Contains(foldTerm(d.Term), folded) {
				rows = append(rows, d.concept())
			}
		}
	}
	sortConcepts(rows)
	return rows
}

// ParentsByName resolves a name with FindCUI and returns the parents of the
// resolved concept. Fails with ErrUnresolvedName when the name does not map
// to exactly one concept.
func (s *Snapshot) ParentsByName(name string) ([]RankedConcept, error) {
	cui, ok := s.FindCUI(name)
	if !ok {
		return nil, errors.NewUnresolvedName(name)
	}
	return s.Parents(cui)
}

// ChildrenByName resolves a name with FindCUI and returns the children of
// the resolved concept.
func (s *Snapshot) ChildrenByName(name string) ([]RankedConcept, error) {
	cui, ok := s.FindCUI(name)
	if !ok {
		return nil, errors.NewUnresolvedName(name)
	}
	return s.Children(cui)
}

// AncestorsByName resolves a name with FindCUI and returns the full
// ancestor expansion of the resolved concept.
func (s *Snapshot) AncestorsByName(name string) ([]RankedConcept, error) {
	cui, ok := s.FindCUI(name)
	if !ok {
		return nil, errors.NewUnresolvedName(name)
	}
	return s.Ancestors(cui)
}

func sortConcepts(rows []Concept) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CUI != rows[j].CUI {
			return rows[i].CUI < rows[j].CUI
		}
		return rows[i].Name < rows[j].Name
	})
}

func uniqueCUIs(ids []CUI) []CUI {
	seen := make(map[CUI]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
