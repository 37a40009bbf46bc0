package allocator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/dropin-rota/pkg/core/allocator"
	"github.com/jakechorley/dropin-rota/pkg/core/allocator/criteria"
)

func defaultCriteria() []allocator.Criterion {
	return []allocator.Criterion{
		criteria.NewShiftSizeCriterion(2.0, 2.0),
		criteria.NewTeamLeadCriterion(0.5, 2.0),
		criteria.NewMaleBalanceCriterion(0.5, 1.0),
		criteria.NewNoDoubleShiftsCriterion(1.0),
		criteria.NewShiftSpreadCriterion(0.5),
	}
}

func volunteer(id string, male bool, teamLead bool) allocator.Volunteer {
	gender := allocator.GenderFemale
	if male {
		gender = allocator.GenderMale
	}
	return allocator.Volunteer{ID: id, FirstName: id, LastName: "V", Gender: gender, IsTeamLead: teamLead}
}

func respondedAll(volunteers []allocator.Volunteer) []allocator.VolunteerAvailability {
	var out []allocator.VolunteerAvailability
	for _, v := range volunteers {
		out = append(out, allocator.VolunteerAvailability{VolunteerID: v.ID, HasResponded: true})
	}
	return out
}

// Scenario 1: trivial success. Two shifts are adjacent, so NoDoubleShifts
// forbids the same group covering both — two team leads and two ordinary
// male volunteers are needed, one pair per shift.
func TestAllocate_TrivialSuccess(t *testing.T) {
	tl1 := volunteer("tl1", true, true)
	tl2 := volunteer("tl2", true, true)
	vol1 := volunteer("v1", true, false)
	vol2 := volunteer("v2", true, false)

	volunteers := []allocator.Volunteer{tl1, tl2, vol1, vol2}
	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Criteria:               defaultCriteria(),
		MaxAllocationFrequency: 1.0,
		Volunteers:             volunteers,
		Availability:           respondedAll(volunteers),
		ShiftDates:             []string{"2024-01-01", "2024-01-08"},
		DefaultShiftSize:       1,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.True(t, outcome.Success, "expected success, got errors: %+v", outcome.ValidationErrors)
	for _, shift := range outcome.State.Shifts {
		assert.NotNil(t, shift.TeamLead)
		assert.Equal(t, shift.Size, shift.CurrentSize())
	}
}

// Scenario 2: unfillable rota — isolated responders each available only one
// day, no panics, specific validation errors surface.
func TestAllocate_Unfillable(t *testing.T) {
	tl := volunteer("tl", false, true)
	male := volunteer("m1", true, false)
	f1 := volunteer("f1", false, false)
	f2 := volunteer("f2", false, false)
	f3 := volunteer("f3", false, false)

	volunteers := []allocator.Volunteer{tl, male, f1, f2, f3}
	avail := []allocator.VolunteerAvailability{
		{VolunteerID: "tl", HasResponded: true, UnavailableShiftIndices: []int{1, 2}},
		{VolunteerID: "m1", HasResponded: true, UnavailableShiftIndices: []int{1, 2}},
		{VolunteerID: "f1", HasResponded: true, UnavailableShiftIndices: []int{0, 2}},
		{VolunteerID: "f2", HasResponded: true, UnavailableShiftIndices: []int{0, 1}},
		{VolunteerID: "f3", HasResponded: true, UnavailableShiftIndices: []int{0, 1}},
	}

	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Criteria:               defaultCriteria(),
		MaxAllocationFrequency: 1.0,
		Volunteers:             volunteers,
		Availability:           avail,
		ShiftDates:             []string{"2024-01-01", "2024-01-08", "2024-01-15"},
		DefaultShiftSize:       2,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.False(t, outcome.Success)
	assert.NotEmpty(t, outcome.ValidationErrors)
}

// Scenario 3: double-shift avoided across the historical boundary.
func TestAllocate_NoDoubleShiftAcrossBoundary(t *testing.T) {
	group := allocator.VolunteerGroup{GroupKey: "individual_v1"}
	historical := []*allocator.Shift{
		{Index: 0, Date: "2023-12-25", AllocatedGroups: []*allocator.VolunteerGroup{&group}},
	}

	v1 := volunteer("v1", true, false)

	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Criteria:               defaultCriteria(),
		MaxAllocationFrequency: 1.0,
		HistoricalShifts:       historical,
		Volunteers:             []allocator.Volunteer{v1},
		Availability:           respondedAll([]allocator.Volunteer{v1}),
		ShiftDates:             []string{"2024-01-01", "2024-01-08"},
		DefaultShiftSize:       1,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome)

	var g *allocator.VolunteerGroup
	for _, s := range outcome.State.Shifts {
		for _, ag := range s.AllocatedGroups {
			if ag.GroupKey == "individual_v1" {
				g = ag
			}
		}
	}
	require.NotNil(t, g, "volunteer should have been allocated somewhere")
	assert.NotContains(t, g.AllocatedShiftIndices, 0, "shift 0 abuts the historical allocation")
}

// Scenario 4: closed shift is respected and excluded from underfill checks.
func TestAllocate_ClosedShiftRespected(t *testing.T) {
	v1 := volunteer("v1", true, false)
	v2 := volunteer("v2", true, true)

	closedSize := 2
	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Criteria:               defaultCriteria(),
		MaxAllocationFrequency: 1.0,
		Volunteers:             []allocator.Volunteer{v1, v2},
		Availability:           respondedAll([]allocator.Volunteer{v1, v2}),
		ShiftDates:             []string{"2024-01-01", "2024-01-08", "2024-01-15"},
		DefaultShiftSize:       1,
		Overrides: []allocator.ShiftOverride{
			{
				// Close the middle shift so the two open shifts (0 and 2)
				// are not adjacent, letting the lone team lead cover both.
				AppliesTo: func(date string) bool { return date == "2024-01-08" },
				ShiftSize: &closedSize,
				Closed:    true,
			},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, outcome)

	closedShift := outcome.State.Shifts[1]
	assert.True(t, closedShift.Closed)
	assert.Empty(t, closedShift.AllocatedGroups)
	assert.Nil(t, closedShift.TeamLead)
	assert.Empty(t, closedShift.CustomPreallocations)

	for _, verr := range outcome.ValidationErrors {
		assert.NotEqual(t, 1, verr.ShiftIndex, "closed shift must not raise a structural error")
	}
}

// Scenario 5: frequency cap limits a group to floor(shifts*frequency).
func TestAllocate_FrequencyCap(t *testing.T) {
	v1 := volunteer("v1", true, true)

	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Criteria:               defaultCriteria(),
		MaxAllocationFrequency: 0.33,
		Volunteers:             []allocator.Volunteer{v1},
		Availability:           respondedAll([]allocator.Volunteer{v1}),
		ShiftDates: []string{
			"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22",
			"2024-01-29", "2024-02-05", "2024-02-12",
		},
		DefaultShiftSize: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.Equal(t, 2, outcome.State.MaxAllocationCount())

	allocations := 0
	for _, s := range outcome.State.Shifts {
		for _, g := range s.AllocatedGroups {
			if g.GroupKey == "individual_v1" {
				allocations++
			}
		}
	}
	assert.LessOrEqual(t, allocations, 2)
}

// Scenario 6: custom preallocations count toward shift size.
func TestAllocate_CustomPreallocationArithmetic(t *testing.T) {
	v1 := volunteer("v1", true, false)

	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Criteria:               defaultCriteria(),
		MaxAllocationFrequency: 1.0,
		Volunteers:             []allocator.Volunteer{v1},
		Availability:           respondedAll([]allocator.Volunteer{v1}),
		ShiftDates:             []string{"2024-01-01"},
		DefaultShiftSize:       3,
		Overrides: []allocator.ShiftOverride{
			{
				AppliesTo:            func(string) bool { return true },
				CustomPreallocations: []string{"caterer_a", "caterer_b"},
			},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, outcome)

	shift := outcome.State.Shifts[0]
	assert.Len(t, shift.CustomPreallocations, 2)
	assert.Equal(t, 3, shift.Size)
	assert.Equal(t, 3, shift.CurrentSize())

	ordinaryFromGroups := 0
	for _, g := range shift.AllocatedGroups {
		ordinaryFromGroups += g.OrdinaryVolunteerCount()
	}
	assert.Equal(t, 1, ordinaryFromGroups)
}

func TestAllocate_HardErrors(t *testing.T) {
	t.Run("no shift dates", func(t *testing.T) {
		_, err := allocator.Allocate(allocator.AllocationConfig{
			MaxAllocationFrequency: 1.0,
			Volunteers:             []allocator.Volunteer{volunteer("v1", true, false)},
		})
		assert.Error(t, err)
	})

	t.Run("no volunteers", func(t *testing.T) {
		_, err := allocator.Allocate(allocator.AllocationConfig{
			MaxAllocationFrequency: 1.0,
			ShiftDates:             []string{"2024-01-01"},
		})
		assert.Error(t, err)
	})

	t.Run("negative default shift size", func(t *testing.T) {
		_, err := allocator.Allocate(allocator.AllocationConfig{
			MaxAllocationFrequency: 1.0,
			ShiftDates:             []string{"2024-01-01"},
			Volunteers:             []allocator.Volunteer{volunteer("v1", true, false)},
			DefaultShiftSize:       -1,
		})
		assert.Error(t, err)
	})

	t.Run("frequency out of range", func(t *testing.T) {
		_, err := allocator.Allocate(allocator.AllocationConfig{
			MaxAllocationFrequency: 1.5,
			ShiftDates:             []string{"2024-01-01"},
			Volunteers:             []allocator.Volunteer{volunteer("v1", true, false)},
		})
		assert.Error(t, err)
	})

	t.Run("multiple team leads in one group", func(t *testing.T) {
		a := volunteer("a", true, true)
		b := volunteer("b", true, true)
		a.GroupKey = "family"
		b.GroupKey = "family"

		_, err := allocator.Allocate(allocator.AllocationConfig{
			MaxAllocationFrequency: 1.0,
			ShiftDates:             []string{"2024-01-01"},
			Volunteers:             []allocator.Volunteer{a, b},
			Availability:           respondedAll([]allocator.Volunteer{a, b}),
			DefaultShiftSize:       1,
		})
		assert.Error(t, err)
	})
}

func TestAllocate_Determinism(t *testing.T) {
	build := func() allocator.AllocationConfig {
		return allocator.AllocationConfig{
			Criteria:               defaultCriteria(),
			MaxAllocationFrequency: 1.0,
			Volunteers: []allocator.Volunteer{
				volunteer("tl", true, true),
				volunteer("a", false, false),
				volunteer("b", false, false),
			},
			Availability: respondedAll([]allocator.Volunteer{
				volunteer("tl", true, true),
				volunteer("a", false, false),
				volunteer("b", false, false),
			}),
			ShiftDates:       []string{"2024-01-01", "2024-01-08", "2024-01-15"},
			DefaultShiftSize: 1,
		}
	}

	o1, err := allocator.Allocate(build())
	require.NoError(t, err)
	o2, err := allocator.Allocate(build())
	require.NoError(t, err)

	require.Equal(t, len(o1.State.Shifts), len(o2.State.Shifts))
	for i := range o1.State.Shifts {
		assert.Equal(t, len(o1.State.Shifts[i].AllocatedGroups), len(o2.State.Shifts[i].AllocatedGroups))
	}
}
