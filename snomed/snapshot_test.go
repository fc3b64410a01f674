package snomed_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderbrown/snomed-squasher/errors"
	snomedtest "github.com/alexanderbrown/snomed-squasher/internal/testing"
	"github.com/alexanderbrown/snomed-squasher/snomed"
)

func loadFixture(t *testing.T) *snomed.Snapshot {
	t.Helper()
	dir := snomedtest.WriteSnapshot(t, snomedtest.RespiratoryFixture())
	snapshot, err := snomed.Load(dir)
	require.NoError(t, err)
	return snapshot
}

// The concrete scenario: asthma under disorder of respiratory system.
func TestAsthmaScenario(t *testing.T) {
	snapshot := loadFixture(t)

	cui, ok := snapshot.FindCUI("Asthma")
	require.True(t, ok)
	assert.Equal(t, snomed.CUI(195967001), cui)

	primary, err := snapshot.PrimaryConcept(195967001)
	require.NoError(t, err)
	assert.Equal(t, "Asthma (disorder)", primary.Name)
	assert.Equal(t, snomed.StatusPrimary, primary.NameStatus)
	assert.Equal(t, "disorder", primary.DescriptionTypeIDs)
	assert.Equal(t, "uk_sct2cl_39.2.0", primary.Release)

	parents, err := snapshot.ParentIDs(195967001)
	require.NoError(t, err)
	assert.Equal(t, []snomed.CUI{50043002}, parents)

	levels, err := snapshot.AncestorLevels(195967001)
	require.NoError(t, err)
	assert.Equal(t, 1, levels[50043002])
}

func TestInverseRelationProperty(t *testing.T) {
	snapshot := loadFixture(t)

	all := []snomed.CUI{138875005, 64572001, 50043002, 195967001, 275498002, 4120002, 40733004, 195742007, 233604007}
	for _, p := range all {
		children, err := snapshot.ChildIDs(p)
		require.NoError(t, err)
		for _, c := range children {
			parents, err := snapshot.ParentIDs(c)
			require.NoError(t, err)
			assert.Contains(t, parents, p, "concept %d not listed as parent of its child %d", p, c)
		}
	}

	for _, c := range all {
		parents, err := snapshot.ParentIDs(c)
		require.NoError(t, err)
		for _, p := range parents {
			children, err := snapshot.ChildIDs(p)
			require.NoError(t, err)
			assert.Contains(t, children, c, "concept %d not listed as child of its parent %d", c, p)
		}
	}
}

func TestDiamondAncestorKeepsMinimumLevel(t *testing.T) {
	snapshot := loadFixture(t)

	// Disease (64572001) is reachable from Bronchiolitis (4120002) in two
	// hops via Infectious disease and in three via Respiratory tract
	// infection; the shorter path wins.
	levels, err := snapshot.AncestorLevels(4120002)
	require.NoError(t, err)
	assert.Equal(t, 2, levels[64572001])

	rows, err := snapshot.Ancestors(4120002)
	require.NoError(t, err)
	seen := 0
	for _, row := range rows {
		if row.CUI == 64572001 {
			seen++
			assert.Equal(t, 2, row.Level)
		}
	}
	assert.Equal(t, 1, seen, "diamond ancestor must appear exactly once")
}

func TestAncestorsLevelOneEqualsParents(t *testing.T) {
	snapshot := loadFixture(t)

	for _, cui := range []snomed.CUI{195967001, 4120002, 275498002} {
		parents, err := snapshot.ParentIDs(cui)
		require.NoError(t, err)

		levels, err := snapshot.AncestorLevels(cui)
		require.NoError(t, err)

		var levelOne []snomed.CUI
		for ancestor, level := range levels {
			if level == 1 {
				levelOne = append(levelOne, ancestor)
			}
		}
		assert.ElementsMatch(t, parents, levelOne)
	}
}

func TestAncestorsOrderedByLevel(t *testing.T) {
	snapshot := loadFixture(t)

	rows, err := snapshot.Ancestors(195967001)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	assert.Equal(t, snomed.CUI(195967001), rows[0].CUI)
	assert.Equal(t, 0, rows[0].Level)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i].Level, rows[i-1].Level)
	}
}

func TestAncestorMemoizationIsStable(t *testing.T) {
	snapshot := loadFixture(t)

	first, err := snapshot.Ancestors(4120002)
	require.NoError(t, err)
	second, err := snapshot.Ancestors(4120002)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUnknownConcept(t *testing.T) {
	snapshot := loadFixture(t)

	_, err := snapshot.ParentIDs(999999999)
	assert.True(t, errors.IsUnknownConcept(err))

	_, err = snapshot.ChildIDs(999999999)
	assert.True(t, errors.IsUnknownConcept(err))

	_, err = snapshot.AncestorLevels(999999999)
	assert.True(t, errors.IsUnknownConcept(err))

	_, err = snapshot.Concepts(999999999)
	assert.True(t, errors.IsUnknownConcept(err))

	_, err = snapshot.PrimaryConcept(999999999)
	assert.True(t, errors.IsUnknownConcept(err))
}

func TestLeafAndRootAreNotErrors(t *testing.T) {
	snapshot := loadFixture(t)

	children, err := snapshot.ChildIDs(195967001)
	require.NoError(t, err)
	assert.Empty(t, children)

	parents, err := snapshot.ParentIDs(138875005)
	require.NoError(t, err)
	assert.Empty(t, parents)
}

func TestNoPrimaryDescription(t *testing.T) {
	fixture := snomedtest.ReleaseFixture{
		Name: "test_release",
		Concepts: []snomedtest.ConceptFixture{
			{ID: 111111001, Active: true},
		},
		Descriptions: []snomedtest.DescriptionFixture{
			// Synonym only: no description qualifies as primary
			{ID: 1, ConceptID: 111111001, Term: "Orphaned synonym", TypeID: snomedtest.TypeSynonym, Active: true},
		},
		Relationships: []snomedtest.RelationshipFixture{
			{ID: 2, SourceID: 111111001, DestinationID: 111111001, TypeID: snomedtest.TypeIsA, Active: false},
		},
	}
	dir := snomedtest.WriteSnapshot(t, fixture)

	snapshot, err := snomed.Load(dir)
	require.NoError(t, err)

	_, err = snapshot.PrimaryConcept(111111001)
	assert.True(t, errors.IsNoPrimaryDescription(err), "expected NoPrimaryDescription, got %v", err)

	// The concept itself is known: its rows are still readable
	rows, err := snapshot.Concepts(111111001)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCycleDetectedThroughSnapshot(t *testing.T) {
	fixture := snomedtest.ReleaseFixture{
		Name: "cyclic_release",
		Concepts: []snomedtest.ConceptFixture{
			{ID: 100001, Active: true},
			{ID: 100002, Active: true},
		},
		Descriptions: []snomedtest.DescriptionFixture{
			{ID: 1, ConceptID: 100001, Term: "Alpha (disorder)", TypeID: snomedtest.TypePreferred, Active: true},
			{ID: 2, ConceptID: 100002, Term: "Beta (disorder)", TypeID: snomedtest.TypePreferred, Active: true},
		},
		Relationships: []snomedtest.RelationshipFixture{
			{ID: 10, SourceID: 100001, DestinationID: 100002, TypeID: snomedtest.TypeIsA, Active: true},
			{ID: 11, SourceID: 100002, DestinationID: 100001, TypeID: snomedtest.TypeIsA, Active: true},
		},
	}
	dir := snomedtest.WriteSnapshot(t, fixture)

	snapshot, err := snomed.Load(dir)
	require.NoError(t, err)

	_, err = snapshot.AncestorLevels(100001)
	assert.True(t, errors.IsCycleDetected(err), "expected CycleDetected, got %v", err)
}

func TestStorePublishAndSwap(t *testing.T) {
	store := snomed.NewStore()
	_, err := store.Current()
	assert.Error(t, err, "empty store must not serve queries")

	first := loadFixture(t)
	store.Publish(first)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)

	// Concurrent readers during a swap always see a complete snapshot
	second := loadFixture(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s, err := store.Current()
				if err != nil {
					t.Error("reader observed missing snapshot")
					return
				}
				if _, ok := s.FindCUI("Asthma"); !ok {
					t.Error("reader observed incomplete snapshot")
					return
				}
			}
		}()
	}
	store.Publish(second)
	wg.Wait()

	current, err = store.Current()
	require.NoError(t, err)
	assert.Same(t, second, current)
}

func TestStoreReloadFailureKeepsPrevious(t *testing.T) {
	first := loadFixture(t)
	store := snomed.NewStoreWith(first)

	_, err := store.Reload(t.TempDir())
	require.Error(t, err)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, first, current, "failed reload must not disturb the active snapshot")
}
