package snomed

import (
	"sort"

	"github.com/alexanderbrown/snomed-squasher/errors"
)

// hierarchy is the retained set of is-a edges as identifier-to-identifier
// adjacency, both directions. A concept may have multiple parents; the
// well-formed structure is a DAG, not a tree.
type hierarchy struct {
	parents  map[CUI][]CUI // child -> parents (edge direction in source data)
	children map[CUI][]CUI // parent -> children (reverse index)
}

// buildHierarchy constructs the adjacency maps from retained edges.
// Duplicate edges (the same relationship restated across releases) collapse,
// and adjacency lists are sorted so traversal order is deterministic.
func buildHierarchy(edges []RelationshipRow) *hierarchy {
	parentSets := make(map[CUI]map[CUI]struct{})
	childSets := make(map[CUI]map[CUI]struct{})

	for _, e := range edges {
		if parentSets[e.SourceID] == nil {
			parentSets[e.SourceID] = make(map[CUI]struct{})
		}
		parentSets[e.SourceID][e.DestinationID] = struct{}{}

		if childSets[e.DestinationID] == nil {
			childSets[e.DestinationID] = make(map[CUI]struct{})
		}
		childSets[e.DestinationID][e.SourceID] = struct{}{}
	}

	h := &hierarchy{
		parents:  make(map[CUI][]CUI, len(parentSets)),
		children: make(map[CUI][]CUI, len(childSets)),
	}
	for cui, set := range parentSets {
		h.parents[cui] = sortedCUIs(set)
	}
	for cui, set := range childSets {
		h.children[cui] = sortedCUIs(set)
	}
	return h
}

func sortedCUIs(set map[CUI]struct{}) []CUI {
	out := make([]CUI, 0, len(set))
	for cui := range set {
		out = append(out, cui)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// parentsOf returns the direct parents of a concept. Empty for a root.
func (h *hierarchy) parentsOf(cui CUI) []CUI {
	return h.parents[cui]
}

// childrenOf returns the direct children of a concept. Empty for a leaf.
func (h *hierarchy) childrenOf(cui CUI) []CUI {
	return h.children[cui]
}

// levelled pairs a concept id with its minimum distance from a query concept.
type levelled struct {
	cui   CUI
	level int
}

// ancestors walks the hierarchy upward from cui by breadth-first expansion,
// recording each reachable concept at its minimum distance. Level 0 is the
// concept itself, level 1 its direct parents. A concept rediscovered via a
// longer path keeps its smaller level (diamonds from multiple inheritance
// resolve to the shorter side).
//
// The visited set guarantees termination even over malformed data; if the
// walk arrives back at the origin the hierarchy contains a cycle, which is
// reported rather than looped over.
//
// This is the engine's most expensive query: cost is proportional to the
// number of distinct ancestors and edges touched, tens to hundreds of
// milliseconds for deep concepts. Snapshots memoize the result.
func (h *hierarchy) ancestors(cui CUI) ([]levelled, error) {
	visited := map[CUI]struct{}{cui: {}}
	result := []levelled{{cui: cui, level: 0}}

	queue := []levelled{{cui: cui, level: 0}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, parent := range h.parentsOf(current.cui) {
			if parent == cui {
				return nil, errors.Wrapf(errors.ErrCycleDetected,
					"concept %d is its own ancestor", cui)
			}
			if _, seen := visited[parent]; seen {
				// Reached again via a longer or equal path; first
				// discovery already recorded the minimum level
				continue
			}
			visited[parent] = struct{}{}
			entry := levelled{cui: parent, level: current.level + 1}
			result = append(result, entry)
			queue = append(queue, entry)
		}
	}

	return result, nil
}
