package snomed_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderbrown/snomed-squasher/errors"
	"github.com/alexanderbrown/snomed-squasher/snomed"
)

func TestFindCUICaseInsensitive(t *testing.T) {
	snapshot := loadFixture(t)

	lower, okLower := snapshot.FindCUI("asthma")
	upper, okUpper := snapshot.FindCUI("ASTHMA")
	mixed, okMixed := snapshot.FindCUI("Asthma")

	require.True(t, okLower)
	require.True(t, okUpper)
	require.True(t, okMixed)
	assert.Equal(t, lower, upper)
	assert.Equal(t, upper, mixed)
	assert.Equal(t, snomed.CUI(195967001), mixed)
}

func TestFindCUISemanticTagSuffixRetry(t *testing.T) {
	snapshot := loadFixture(t)

	// Pneumonia has no plain synonym; only "Pneumonia (disorder)" exists.
	// The bare name still resolves through the clinical-tag retry.
	cui, ok := snapshot.FindCUI("Pneumonia")
	require.True(t, ok)
	assert.Equal(t, snomed.CUI(233604007), cui)
}

func TestFindCUIAmbiguousSynonymIsNoMatch(t *testing.T) {
	snapshot := loadFixture(t)

	// "Chest infection" is a synonym of two concepts: ambiguity is
	// surfaced as no-match, never resolved to the closest candidate
	_, ok := snapshot.FindCUI("Chest infection")
	assert.False(t, ok)

	// Both candidates are still discoverable through FindConcepts
	rows := snapshot.FindConcepts("Chest infection")
	cuis := map[snomed.CUI]bool{}
	for _, row := range rows {
		cuis[row.CUI] = true
	}
	assert.True(t, cuis[195742007])
	assert.True(t, cuis[233604007])
}

func TestFindCUISubstringNeverResolves(t *testing.T) {
	snapshot := loadFixture(t)

	// Partial text resolves to nothing even though partial matches exist
	_, ok := snapshot.FindCUI("Asth")
	assert.False(t, ok)

	rows := snapshot.FindConcepts("Asth")
	assert.NotEmpty(t, rows, "substring fallback should find partial matches")
	for _, row := range rows {
		assert.Equal(t, snomed.CUI(195967001), row.CUI)
	}
}

func TestFindCUIEmptyAndUnknownText(t *testing.T) {
	snapshot := loadFixture(t)

	_, ok := snapshot.FindCUI("")
	assert.False(t, ok)

	_, ok = snapshot.FindCUI("   ")
	assert.False(t, ok)

	_, ok = snapshot.FindCUI("No such clinical entity")
	assert.False(t, ok)
}

func TestFindConceptsExactBeatsSubstring(t *testing.T) {
	snapshot := loadFixture(t)

	// Exact matches for "Asthma": the synonym row and, via no suffix
	// needed, nothing else; "Bronchial asthma" only matches as substring
	// and must not appear once an exact match exists
	rows := snapshot.FindConcepts("Asthma")
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.Equal(t, "asthma", strings.ToLower(row.Name))
	}
}

func TestFindConceptsRowContract(t *testing.T) {
	snapshot := loadFixture(t)

	rows := snapshot.FindConcepts("Chest infection")
	require.NotEmpty(t, rows)

	for _, row := range rows {
		assert.NotZero(t, row.CUI)
		assert.NotEmpty(t, row.Name)
		assert.Contains(t, []snomed.NameStatus{snomed.StatusPrimary, snomed.StatusAcceptable}, row.NameStatus)
		assert.Equal(t, "uk_sct2cl_39.2.0", row.Release)
		if row.NameStatus == snomed.StatusPrimary {
			assert.Equal(t, "disorder", row.DescriptionTypeIDs)
		} else {
			assert.Empty(t, row.DescriptionTypeIDs)
		}
	}
}

func TestFindConceptsNoMatchIsEmptyNotError(t *testing.T) {
	snapshot := loadFixture(t)
	assert.Empty(t, snapshot.FindConcepts("Quasar"))
}

func TestParentsByName(t *testing.T) {
	snapshot := loadFixture(t)

	parents, err := snapshot.ParentsByName("Asthma")
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, snomed.CUI(50043002), parents[0].CUI)
	assert.Equal(t, "Disorder of respiratory system (disorder)", parents[0].Name)
	assert.Equal(t, 1, parents[0].Level)
}

func TestChildrenByName(t *testing.T) {
	snapshot := loadFixture(t)

	children, err := snapshot.ChildrenByName("Respiratory tract infection")
	require.NoError(t, err)

	cuis := map[snomed.CUI]bool{}
	for _, child := range children {
		cuis[child.CUI] = true
		assert.Equal(t, 1, child.Level)
	}
	assert.True(t, cuis[4120002])
	assert.True(t, cuis[233604007])
}

func TestAncestorsByName(t *testing.T) {
	snapshot := loadFixture(t)

	ancestors, err := snapshot.AncestorsByName("Asthma")
	require.NoError(t, err)

	byCUI := map[snomed.CUI]int{}
	for _, a := range ancestors {
		byCUI[a.CUI] = a.Level
	}
	assert.Equal(t, 0, byCUI[195967001])
	assert.Equal(t, 1, byCUI[50043002])
	assert.Equal(t, 2, byCUI[64572001])
	assert.Equal(t, 3, byCUI[138875005])
}

func TestByNameUnresolved(t *testing.T) {
	snapshot := loadFixture(t)

	_, err := snapshot.ParentsByName("No such clinical entity")
	assert.True(t, errors.IsUnresolvedName(err), "expected UnresolvedName, got %v", err)

	// Ambiguity resolves identically to absence
	_, err = snapshot.ChildrenByName("Chest infection")
	assert.True(t, errors.IsUnresolvedName(err))

	_, err = snapshot.AncestorsByName("Asth")
	assert.True(t, errors.IsUnresolvedName(err))
}
