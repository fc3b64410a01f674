package snomed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderbrown/snomed-squasher/errors"
	snomedtest "github.com/alexanderbrown/snomed-squasher/internal/testing"
	"github.com/alexanderbrown/snomed-squasher/snomed"
)

func TestDiscoverReleases(t *testing.T) {
	fixture := snomedtest.RespiratoryFixture()
	second := snomedtest.RespiratoryFixture()
	second.Name = "uk_sct2cl_40.0.0"

	dir := snomedtest.WriteSnapshot(t, fixture, second)

	releases, err := snomed.DiscoverReleases(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"uk_sct2cl_39.2.0", "uk_sct2cl_40.0.0"}, releases)
}

func TestLoadMissingRelationshipTableIsFatal(t *testing.T) {
	fixture := snomedtest.RespiratoryFixture()
	fixture.OmitTables = []string{"Relationship"}
	dir := snomedtest.WriteSnapshot(t, fixture)

	snapshot, err := snomed.Load(dir)
	require.Error(t, err)
	assert.True(t, errors.IsMissingDefinitionFile(err), "expected MissingDefinitionFile, got %v", err)
	assert.Contains(t, err.Error(), "Relationship")
	// Never an empty-but-usable graph
	assert.Nil(t, snapshot)
}

func TestLoadMissingConceptTableIsFatal(t *testing.T) {
	fixture := snomedtest.RespiratoryFixture()
	fixture.OmitTables = []string{"Concept"}
	dir := snomedtest.WriteSnapshot(t, fixture)

	_, err := snomed.Load(dir)
	require.Error(t, err)
	assert.True(t, errors.IsMissingDefinitionFile(err))
}

func TestLoadEmptyDefinitionsDir(t *testing.T) {
	_, err := snomed.Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsMissingDefinitionFile(err))
}

func TestLoadMalformedRowsAboveThreshold(t *testing.T) {
	fixture := snomedtest.RespiratoryFixture()
	fixture.ExtraDescriptionLines = []string{
		"15\t20240101\tnot-a-flag\tm\t195967001\ten\t" + snomedtest.TypeSynonym + "\tWheeze\tc",
		"16\t20240101\t1\tm\tnot-a-cui\ten\t" + snomedtest.TypeSynonym + "\tWheeze\tc",
	}
	dir := snomedtest.WriteSnapshot(t, fixture)

	_, err := snomed.Load(dir)
	require.Error(t, err)
	assert.True(t, errors.IsCorruptSnapshot(err), "expected CorruptSnapshot, got %v", err)
}

func TestLoadMalformedRowsWithinThreshold(t *testing.T) {
	fixture := snomedtest.RespiratoryFixture()
	fixture.ExtraDescriptionLines = []string{
		"15\t20240101\tnot-a-flag\tm\t195967001\ten\t" + snomedtest.TypeSynonym + "\tWheeze\tc",
	}
	dir := snomedtest.WriteSnapshot(t, fixture)

	snapshot, err := snomed.Load(dir, snomed.WithCorruptThreshold(0.5))
	require.NoError(t, err)

	// The malformed row is skipped, the rest of the file survives
	rows, err := snapshot.Concepts(195967001)
	require.NoError(t, err)
	for _, row := range rows {
		assert.NotEqual(t, "Wheeze", row.Name)
	}
}

func TestLoadExcludesInactiveByDefault(t *testing.T) {
	dir := snomedtest.WriteSnapshot(t, snomedtest.RespiratoryFixture())

	snapshot, err := snomed.Load(dir)
	require.NoError(t, err)

	rows, err := snapshot.Concepts(195967001)
	require.NoError(t, err)
	for _, row := range rows {
		assert.NotEqual(t, "Asthma NOS", row.Name, "inactive description should be dropped")
	}
}

func TestLoadWithInactiveRetainsHistoricalDescriptions(t *testing.T) {
	dir := snomedtest.WriteSnapshot(t, snomedtest.RespiratoryFixture())

	snapshot, err := snomed.Load(dir, snomed.WithInactive())
	require.NoError(t, err)

	rows, err := snapshot.Concepts(195967001)
	require.NoError(t, err)

	var found bool
	for _, row := range rows {
		if row.Name == "Asthma NOS" {
			found = true
		}
	}
	assert.True(t, found, "inactive description should be retained with WithInactive")

	// The inactive term must not resolve: the text index is active-only
	_, ok := snapshot.FindCUI("Asthma NOS")
	assert.False(t, ok)
}

func TestLoadDiscardsNonIsAAndInactiveEdges(t *testing.T) {
	dir := snomedtest.WriteSnapshot(t, snomedtest.RespiratoryFixture())

	snapshot, err := snomed.Load(dir)
	require.NoError(t, err)

	// Fixture carries an inactive is-a edge and an active non-is-a edge
	// from 195967001; only the active is-a edge to 50043002 remains
	parents, err := snapshot.ParentIDs(195967001)
	require.NoError(t, err)
	assert.Equal(t, []snomed.CUI{50043002}, parents)
}

func TestLoadWithReleasePin(t *testing.T) {
	first := snomedtest.RespiratoryFixture()
	second := snomedtest.RespiratoryFixture()
	second.Name = "uk_sct2cl_40.0.0"
	dir := snomedtest.WriteSnapshot(t, first, second)

	snapshot, err := snomed.Load(dir, snomed.WithRelease("uk_sct2cl_40.0.0"))
	require.NoError(t, err)
	assert.Equal(t, []string{"uk_sct2cl_40.0.0"}, snapshot.Releases())

	_, err = snomed.Load(dir, snomed.WithRelease("no_such_release"))
	assert.Error(t, err)
}

func TestLoadMultipleReleasesDoNotConflict(t *testing.T) {
	first := snomedtest.RespiratoryFixture()
	second := snomedtest.RespiratoryFixture()
	second.Name = "uk_sct2cl_40.0.0"
	dir := snomedtest.WriteSnapshot(t, first, second)

	snapshot, err := snomed.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"uk_sct2cl_39.2.0", "uk_sct2cl_40.0.0"}, snapshot.Releases())

	// The same preferred term restated by the newer release is not a
	// primary-description conflict
	primary, err := snapshot.PrimaryConcept(195967001)
	require.NoError(t, err)
	assert.Equal(t, "Asthma (disorder)", primary.Name)
	assert.Equal(t, "uk_sct2cl_40.0.0", primary.Release)
}
