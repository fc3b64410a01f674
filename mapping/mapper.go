// Package mapping manages the assignment of freetext condition names to
// SNOMED CT concepts, and of those concepts to coarser grouping concepts.
// The mapper holds the working state; anything needing human judgement is
// delegated through the Resolver callback so the engine never blocks on
// input.
package mapping

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/alexanderbrown/snomed-squasher/errors"
	"github.com/alexanderbrown/snomed-squasher/logger"
	"github.com/alexanderbrown/snomed-squasher/snomed"
)

// Resolution is a caller's verdict on one unresolved name: either a chosen
// concept identifier or an explicit skip. A zero Resolution (no CUI, no
// skip) means the caller had nothing to say and the name stays unresolved.
type Resolution struct {
	CUI  snomed.CUI
	Skip bool
}

// Resolver supplies concept identifiers for names automatic mapping could
// not settle. Implementations may prompt a human, call an external service,
// or apply a site-specific dictionary; the mapper only sees the verdicts.
type Resolver interface {
	ResolveNames(ctx context.Context, names []string) (map[string]Resolution, error)
}

// Row is one line of the full mapping table.
type Row struct {
	Name          string     `json:"name"`
	ConditionCUI  snomed.CUI `json:"condition_cui"`
	ConditionName string     `json:"condition_name"`
	GroupingCUI   snomed.CUI `json:"grouping_cui"`
	GroupingName  string     `json:"grouping_name"`
}

// Mapper tracks the mapping of freetext names to condition concepts and of
// condition concepts to grouping concepts. Not safe for concurrent use.
type Mapper struct {
	snapshot *snomed.Snapshot
	unknown  []string
	// conditions maps a freetext name to its condition concept.
	conditions map[string]snomed.CUI
	// groupings maps a condition concept to its grouping concept.
	groupings map[snomed.CUI]snomed.CUI
	logger    *zap.SugaredLogger
}

// NewMapper creates a mapper over a snapshot, seeded with the names still
// to be mapped. Blank names are dropped; duplicates are collapsed, first
// occurrence wins the ordering.
func NewMapper(snapshot *snomed.Snapshot, names []string) *Mapper {
	seen := make(map[string]struct{}, len(names))
	unknown := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		unknown = append(unknown, name)
	}

	return &Mapper{
		snapshot:   snapshot,
		unknown:    unknown,
		conditions: make(map[string]snomed.CUI),
		groupings:  make(map[snomed.CUI]snomed.CUI),
		logger:     logger.Named("mapping"),
	}
}

// Unknown returns the names not yet mapped to a concept, in seed order.
func (m *Mapper) Unknown() []string {
	return append([]string(nil), m.unknown...)
}

// Conditions returns a copy of the name-to-concept mapping.
func (m *Mapper) Conditions() map[string]snomed.CUI {
	out := make(map[string]snomed.CUI, len(m.conditions))
	for name, cui := range m.conditions {
		out[name] = cui
	}
	return out
}

// ConditionCUIs returns the distinct mapped condition concepts, sorted.
func (m *Mapper) ConditionCUIs() []snomed.CUI {
	return sortedValues(m.conditions)
}

// GroupingCUIs returns the distinct grouping concepts in use, sorted.
func (m *Mapper) GroupingCUIs() []snomed.CUI {
	return sortedValues(m.groupings)
}

// GroupingFor returns the grouping assigned to a condition concept.
func (m *Mapper) GroupingFor(condition snomed.CUI) (snomed.CUI, bool) {
	grouping, ok := m.groupings[condition]
	return grouping, ok
}

// AutoMap runs a resolution pass over the unknown names: any name that maps
// to exactly one concept moves to the condition mapping. Ambiguous and
// unmatched names stay unknown. Returns the number of names mapped.
func (m *Mapper) AutoMap(ctx context.Context) (int, error) {
	mapped := 0
	var remaining []string

	for _, name := range m.unknown {
		if err := ctx.Err(); err != nil {
			return mapped, errors.Wrap(err, "automatic mapping interrupted")
		}

		cui, ok := m.snapshot.FindCUI(name)
		if !ok {
			remaining = append(remaining, name)
			continue
		}
		m.conditions[name] = cui
		mapped++

		if concept, err := m.snapshot.PrimaryConcept(cui); err == nil {
			m.logger.Infow("Condition mapped", "name", name, "cui", int64(cui), "concept", concept.Name)
		}
	}

	m.unknown = remaining
	m.logger.Infow("Automatic mapping finished",
		"rows", mapped, "skipped", len(m.unknown))
	return mapped, nil
}

// Resolve hands the remaining unknown names to a Resolver and applies its
// verdicts. A verdict naming a concept not present in the snapshot is
// rejected and the name stays unknown; an explicit skip or a missing
// verdict also leaves the name unknown.
func (m *Mapper) Resolve(ctx context.Context, r Resolver) error {
	if len(m.unknown) == 0 {
		return nil
	}

	verdicts, err := r.ResolveNames(ctx, m.Unknown())
	if err != nil {
		return errors.Wrap(err, "name resolution failed")
	}

	var remaining []string
	for _, name := range m.unknown {
		verdict, ok := verdicts[name]
		if !ok || verdict.Skip || verdict.CUI == 0 {
			remaining = append(remaining, name)
			continue
		}
		if _, err := m.snapshot.Concepts(verdict.CUI); err != nil {
			m.logger.Warnw("Rejected resolution for unknown concept",
				"name", name, "cui", int64(verdict.CUI))
			remaining = append(remaining, name)
			continue
		}
		m.conditions[name] = verdict.CUI
	}
	m.unknown = remaining
	return nil
}

// AssignGrouping records that a mapped condition concept belongs to a
// grouping concept. Both concepts must exist in the snapshot, and the
// condition must already be mapped from at least one name.
func (m *Mapper) AssignGrouping(condition, grouping snomed.CUI) error {
	if !m.isKnownCondition(condition) {
		return errors.Newf("concept %d is not a mapped condition", condition)
	}
	if _, err := m.snapshot.Concepts(grouping); err != nil {
		return errors.Wrap(err, "grouping concept not in snapshot")
	}
	m.groupings[condition] = grouping
	return nil
}

// SuggestGroupings returns the ancestors of a condition that are already in
// use as groupings, closest first. The condition itself qualifies when it is
// already a grouping. An existing grouping elsewhere in the ontology is
// deliberately not suggested: an ancestor being a known grouping does not
// mean the caller wants to fold this condition into it, so the list is
// suggestions only.
func (m *Mapper) SuggestGroupings(condition snomed.CUI) ([]snomed.RankedConcept, error) {
	ancestors, err := m.snapshot.Ancestors(condition)
	if err != nil {
		return nil, err
	}

	inUse := make(map[snomed.CUI]struct{}, len(m.groupings))
	for _, grouping := range m.groupings {
		inUse[grouping] = struct{}{}
	}

	var suggestions []snomed.RankedConcept
	for _, ancestor := range ancestors {
		if _, ok := inUse[ancestor.CUI]; ok {
			suggestions = append(suggestions, ancestor)
		}
	}
	return suggestions, nil
}

// Table flattens the full mapping state into rows: every mapped name with
// its condition and grouping, then the still-unknown names. Missing pieces
// render as zero CUIs with empty names.
func (m *Mapper) Table() []Row {
	names := make([]string, 0, len(m.conditions))
	for name := range m.conditions {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]Row, 0, len(names)+len(m.unknown))
	for _, name := range names {
		cui := m.conditions[name]
		row := Row{Name: name, ConditionCUI: cui}
		if concept, err := m.snapshot.PrimaryConcept(cui); err == nil {
			row.ConditionName = concept.Name
		}
		if grouping, ok := m.groupings[cui]; ok {
			row.GroupingCUI = grouping
			if concept, err := m.snapshot.PrimaryConcept(grouping); err == nil {
				row.GroupingName = concept.Name
			}
		}
		rows = append(rows, row)
	}
	for _, name := range m.unknown {
		rows = append(rows, Row{Name: name})
	}
	return rows
}

func (m *Mapper) isKnownCondition(cui snomed.CUI) bool {
	for _, mapped := range m.conditions {
		if mapped == cui {
			return true
		}
	}
	return false
}

func sortedValues[K comparable](mapping map[K]snomed.CUI) []snomed.CUI {
	seen := make(map[snomed.CUI]struct{}, len(mapping))
	out := make([]snomed.CUI, 0, len(mapping))
	for _, cui := range mapping {
		if _, dup := seen[cui]; dup {
			continue
		}
		seen[cui] = struct{}{}
		out = append(out, cui)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
