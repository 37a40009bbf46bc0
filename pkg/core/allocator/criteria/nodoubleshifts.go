package criteria

import (
	"fmt"

	"github.com/jakechorley/dropin-rota/pkg/core/allocator"
)

// NoDoubleShiftsCriterion vetoes allocating a group to two adjacent shifts,
// including across the boundary with the last historical shift.
type NoDoubleShiftsCriterion struct {
	affinityWeight float64
}

func NewNoDoubleShiftsCriterion(affinityWeight float64) *NoDoubleShiftsCriterion {
	return &NoDoubleShiftsCriterion{affinityWeight: affinityWeight}
}

func (c *NoDoubleShiftsCriterion) Name() string { return "NoDoubleShifts" }

func (c *NoDoubleShiftsCriterion) GroupWeight() float64    { return 0 }
func (c *NoDoubleShiftsCriterion) AffinityWeight() float64 { return c.affinityWeight }

func (c *NoDoubleShiftsCriterion) PromoteVolunteerGroup(*allocator.RotaState, *allocator.VolunteerGroup) float64 {
	return 0
}

func groupInAllocatedGroups(group *allocator.VolunteerGroup, groups []*allocator.VolunteerGroup) bool {
	for _, g := range groups {
		if g == group || g.GroupKey == group.GroupKey {
			return true
		}
	}
	return false
}

func (c *NoDoubleShiftsCriterion) violatesAdjacency(state *allocator.RotaState, group *allocator.VolunteerGroup, shiftIndex int) bool {
	if group.IsAllocated(shiftIndex - 1) {
		return true
	}
	if group.IsAllocated(shiftIndex + 1) {
		return true
	}
	if shiftIndex == 0 {
		if last := lastHistoricalShift(state); last != nil && groupInAllocatedGroups(group, last.AllocatedGroups) {
			return true
		}
	}
	return false
}

func lastHistoricalShift(state *allocator.RotaState) *allocator.Shift {
	if len(state.HistoricalShifts) == 0 {
		return nil
	}
	return state.HistoricalShifts[len(state.HistoricalShifts)-1]
}

func (c *NoDoubleShiftsCriterion) IsShiftValid(state *allocator.RotaState, group *allocator.VolunteerGroup, shift *allocator.Shift) bool {
	return !c.violatesAdjacency(state, group, shift.Index)
}

// CalculateShiftAffinity returns the proportion of group's currently valid
// shifts that would remain valid if group were hypothetically allocated to
// shift.
func (c *NoDoubleShiftsCriterion) CalculateShiftAffinity(state *allocator.RotaState, group *allocator.VolunteerGroup, shift *allocator.Shift) float64 {
	currentlyValid := 0
	remainingValid := 0
	for _, other := range state.Shifts {
		if other.Index == shift.Index {
			continue
		}
		if other.Closed || other.IsFull() || !group.IsAvailable(other.Index) || group.IsAllocated(other.Index) {
			continue
		}
		if !allocator.IsShiftValidForGroup(state, group, other, []allocator.Criterion{c}) {
			continue
		}
		currentlyValid++
		if other.Index != shift.Index-1 && other.Index != shift.Index+1 {
			remainingValid++
		}
	}
	if currentlyValid == 0 {
		return 0
	}
	return float64(remainingValid) / float64(currentlyValid)
}

func (c *NoDoubleShiftsCriterion) ValidateRotaState(state *allocator.RotaState) []allocator.ShiftValidationError {
	var errs []allocator.ShiftValidationError

	for i := 0; i+1 < len(state.Shifts); i++ {
		a, b := state.Shifts[i], state.Shifts[i+1]
		for _, ga := range a.AllocatedGroups {
			if groupInAllocatedGroups(ga, b.AllocatedGroups) {
				errs = append(errs, allocator.ShiftValidationError{
					ShiftIndex:    a.Index,
					ShiftDate:     a.Date,
					CriterionName: c.Name(),
					Description:   fmt.Sprintf("group %q is allocated to adjacent shifts %d and %d", ga.GroupKey, a.Index, b.Index),
				})
			}
		}
	}

	if last := lastHistoricalShift(state); last != nil && len(state.Shifts) > 0 {
		first := state.Shifts[0]
		for _, gl := range last.AllocatedGroups {
			if groupInAllocatedGroups(gl, first.AllocatedGroups) {
				errs = append(errs, allocator.ShiftValidationError{
					ShiftIndex:    first.Index,
					ShiftDate:     first.Date,
					CriterionName: c.Name(),
					Description: fmt.Sprintf("group %q is allocated to last historical shift and first shift of new rota (double shift across rota boundary)",
						gl.GroupKey),
				})
			}
		}
	}

	return errs
}
