package rotainput_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/dropin-rota/internal/config"
	"github.com/jakechorley/dropin-rota/pkg/core/allocator"
	"github.com/jakechorley/dropin-rota/pkg/rotainput"
)

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rota.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDocument_Valid(t *testing.T) {
	path := writeDoc(t, `
shiftDates: ["2024-01-01", "2024-01-08"]
volunteers:
  - id: "v1"
    firstName: "Amy"
    lastName: "Smith"
    gender: "female"
availability:
  - volunteerID: "v1"
    hasResponded: true
    unavailableDates: ["2024-01-08"]
`)

	doc, err := rotainput.LoadDocument(path)
	require.NoError(t, err)
	assert.Len(t, doc.ShiftDates, 2)

	avail, err := doc.ToAvailability()
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, []int{1}, avail[0].UnavailableShiftIndices)
}

func TestLoadDocument_UnknownDateReference(t *testing.T) {
	path := writeDoc(t, `
shiftDates: ["2024-01-01"]
volunteers:
  - id: "v1"
    firstName: "Amy"
    lastName: "Smith"
availability:
  - volunteerID: "v1"
    hasResponded: true
    unavailableDates: ["2099-01-01"]
`)

	doc, err := rotainput.LoadDocument(path)
	require.NoError(t, err)

	_, err = doc.ToAvailability()
	assert.Error(t, err)
}

func TestLoadDocument_MissingRequiredFields(t *testing.T) {
	path := writeDoc(t, `
shiftDates: []
volunteers: []
`)
	_, err := rotainput.LoadDocument(path)
	assert.Error(t, err)
}

func TestBuildOverrides_MatchesWeeklyRRule(t *testing.T) {
	overrides := []config.RotaOverride{
		{RRule: "FREQ=WEEKLY;BYDAY=MO", Closed: true},
	}

	built, err := rotainput.BuildOverrides(overrides, []string{"2024-01-01", "2024-01-08", "2024-01-15"})
	require.NoError(t, err)
	require.Len(t, built, 1)

	assert.True(t, built[0].AppliesTo("2024-01-01"))
	assert.True(t, built[0].AppliesTo("2024-01-08"))
	assert.False(t, built[0].AppliesTo("2024-01-16"))
}

func TestBuildVolunteerGroup_DerivesTeamLeadAndMaleCount(t *testing.T) {
	members := []allocator.Volunteer{
		{ID: "a", Gender: allocator.GenderMale, IsTeamLead: true},
		{ID: "b", Gender: allocator.GenderFemale},
	}

	g := rotainput.BuildVolunteerGroup("family", members)
	assert.True(t, g.HasTeamLead)
	assert.Equal(t, 1, g.MaleCount)
}
