package snomed

import (
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alexanderbrown/snomed-squasher/errors"
)

// Snapshot is an immutable view of one loaded terminology state: the concept
// hierarchy, the description index, and the inverted text index, built once
// by Load. All methods are pure reads and safe for unsynchronized concurrent
// use. A newer terminology version is served by building a fresh Snapshot
// and publishing it through a Store, never by mutating one in place.
type Snapshot struct {
	releases []string

	hierarchy *hierarchy
	index     *descriptionIndex

	// Ancestor expansion is the one query expensive enough to memoize;
	// results are stable for the snapshot's lifetime.
	ancestorCache *lru.Cache[CUI, []levelled]
}

// Load builds a Snapshot from a definitions directory holding one
// subdirectory per release, each containing the Concept, Description, and
// Relationship snapshot tables.
func Load(definitionsPath string, opts ...Option) (*Snapshot, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	started := time.Now()

	releases, err := DiscoverReleases(definitionsPath)
	if err != nil {
		return nil, err
	}
	if o.release != "" {
		if !containsString(releases, o.release) {
			return nil, errors.Newf("release %s not found in %s", o.release, definitionsPath)
		}
		releases = []string{o.release}
	}
	if len(releases) == 0 {
		return nil, errors.Wrapf(errors.ErrMissingDefinitionFile,
			"no releases found in %s", definitionsPath)
	}

	var concepts []ConceptRow
	var descriptions []DescriptionRow
	var relationships []RelationshipRow
	for _, release := range releases {
		tables, err := loadRelease(definitionsPath, release, o)
		if err != nil {
			return nil, errors.Wrapf(err, "release %s", release)
		}
		concepts = append(concepts, tables.concepts...)
		descriptions = append(descriptions, tables.descriptions...)
		relationships = append(relationships, tables.relationships...)
	}

	index := buildDescriptionIndex(concepts, descriptions)

	// Drop edges pointing at concepts absent from the Concept table; a
	// dangling edge would manufacture a parent nothing can describe
	retained := relationships[:0:0]
	var dangling int
	for _, e := range relationships {
		if index.has(e.SourceID) && index.has(e.DestinationID) {
			retained = append(retained, e)
		} else {
			dangling++
		}
	}
	if dangling > 0 {
		o.log.Warnw("Dropped dangling is-a edges", "skipped", dangling)
	}

	cache, err := lru.New[CUI, []levelled](o.ancestorCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "bad ancestor cache size")
	}

	snapshot := &Snapshot{
		releases:      releases,
		hierarchy:     buildHierarchy(retained),
		index:         index,
		ancestorCache: cache,
	}

	o.log.Infow("Snapshot built",
		"rows", len(descriptions),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return snapshot, nil
}

// Releases lists the releases bundled into this snapshot.
func (s *Snapshot) Releases() []string {
	out := make([]string, len(s.releases))
	copy(out, s.releases)
	return out
}

// Concepts returns every description row for a concept, unfiltered:
// preferred term, synonyms, and (when loaded with WithInactive) inactive
// rows.
func (s *Snapshot) Concepts(cui CUI) ([]Concept, error) {
	return s.index.concepts(cui)
}

// PrimaryConcept returns the concept's canonical name: the single active
// Preferred description.
func (s *Snapshot) PrimaryConcept(cui CUI) (Concept, error) {
	return s.index.primary(cui)
}

// ParentIDs returns the direct parents of a concept as identifiers.
// A root concept yields an empty set, which is not an error.
func (s *Snapshot) ParentIDs(cui CUI) ([]CUI, error) {
	if !s.index.has(cui) {
		return nil, errors.NewUnknownConcept(int64(cui))
	}
	return append([]CUI(nil), s.hierarchy.parentsOf(cui)...), nil
}

// ChildIDs returns the direct children of a concept as identifiers.
// A leaf concept yields an empty set, which is not an error.
func (s *Snapshot) ChildIDs(cui CUI) ([]CUI, error) {
	if !s.index.has(cui) {
		return nil, errors.NewUnknownConcept(int64(cui))
	}
	return append([]CUI(nil), s.hierarchy.childrenOf(cui)...), nil
}

// Parents returns the primary rows of a concept's direct parents, each at
// level 1.
func (s *Snapshot) Parents(cui CUI) ([]RankedConcept, error) {
	ids, err := s.ParentIDs(cui)
	if err != nil {
		return nil, err
	}
	return s.rankedRows(ids, 1), nil
}

// Children returns the primary rows of a concept's direct children, each at
// level 1.
func (s *Snapshot) Children(cui CUI) ([]RankedConcept, error) {
	ids, err := s.ChildIDs(cui)
	if err != nil {
		return nil, err
	}
	return s.rankedRows(ids, 1), nil
}

// AncestorLevels returns every ancestor of a concept mapped to its minimum
// is-a distance. The concept itself appears at level 0, direct parents at
// level 1.
func (s *Snapshot) AncestorLevels(cui CUI) (map[CUI]int, error) {
	expansion, err := s.ancestorExpansion(cui)
	if err != nil {
		return nil, err
	}
	levels := make(map[CUI]int, len(expansion))
	for _, entry := range expansion {
		levels[entry.cui] = entry.level
	}
	return levels, nil
}

// Ancestors returns the primary rows of every ancestor, ordered by level
// then identifier. Ancestors lacking a primary description are omitted from
// the tabular result; AncestorLevels exposes the full identifier set.
func (s *Snapshot) Ancestors(cui CUI) ([]RankedConcept, error) {
	expansion, err := s.ancestorExpansion(cui)
	if err != nil {
		return nil, err
	}

	out := make([]RankedConcept, 0, len(expansion))
	for _, entry := range expansion {
		primary, err := s.index.primary(entry.cui)
		if err != nil {
			if errors.IsNoPrimaryDescription(err) {
				continue
			}
			return nil, err
		}
		out = append(out, RankedConcept{Concept: primary, Level: entry.level})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].CUI < out[j].CUI
	})
	return out, nil
}

func (s *Snapshot) ancestorExpansion(cui CUI) ([]levelled, error) {
	if !s.index.has(cui) {
		return nil, errors.NewUnknownConcept(int64(cui))
	}

	if cached, ok := s.ancestorCache.Get(cui); ok {
		return cached, nil
	}

	expansion, err := s.hierarchy.ancestors(cui)
	if err != nil {
		return nil, err
	}
	s.ancestorCache.Add(cui, expansion)
	return expansion, nil
}

// rankedRows maps concept ids to their primary rows at a fixed level,
// skipping concepts without a primary description (matching the tabular
// contract, which lists primary names only).
func (s *Snapshot) rankedRows(ids []CUI, level int) []RankedConcept {
	out := make([]RankedConcept, 0, len(ids))
	for _, id := range ids {
		primary, err := s.index.primary(id)
		if err != nil {
			continue
		}
		out = append(out, RankedConcept{Concept: primary, Level: level})
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
