// Package criteria provides the built-in Criterion implementations:
// ShiftSize, TeamLead, MaleBalance, NoDoubleShifts, ShiftSpread.
package criteria

import (
	"fmt"

	"github.com/jakechorley/dropin-rota/pkg/core/allocator"
)

// ShiftSizeCriterion vetoes allocations that would overfill a shift and
// prefers shifts with more remaining capacity relative to the ordinary
// volunteers still available to fill them.
type ShiftSizeCriterion struct {
	groupWeight    float64
	affinityWeight float64
}

func NewShiftSizeCriterion(groupWeight, affinityWeight float64) *ShiftSizeCriterion {
	return &ShiftSizeCriterion{groupWeight: groupWeight, affinityWeight: affinityWeight}
}

func (c *ShiftSizeCriterion) Name() string { return "ShiftSize" }

func (c *ShiftSizeCriterion) GroupWeight() float64    { return c.groupWeight }
func (c *ShiftSizeCriterion) AffinityWeight() float64 { return c.affinityWeight }

func (c *ShiftSizeCriterion) PromoteVolunteerGroup(*allocator.RotaState, *allocator.VolunteerGroup) float64 {
	return 0
}

func (c *ShiftSizeCriterion) IsShiftValid(_ *allocator.RotaState, group *allocator.VolunteerGroup, shift *allocator.Shift) bool {
	return group.OrdinaryVolunteerCount() <= shift.RemainingCapacity()
}

func (c *ShiftSizeCriterion) CalculateShiftAffinity(state *allocator.RotaState, group *allocator.VolunteerGroup, shift *allocator.Shift) float64 {
	if group.OrdinaryVolunteerCount() == 0 {
		return 0
	}
	remainingOrdinaries := shift.RemainingAvailableOrdinaries(state.VolunteerState)
	if remainingOrdinaries == 0 {
		return 0
	}
	affinity := float64(shift.RemainingCapacity()) / float64(remainingOrdinaries)
	if affinity > 1 {
		affinity = 1
	}
	if affinity < 0 {
		affinity = 0
	}
	return affinity
}

func (c *ShiftSizeCriterion) ValidateRotaState(state *allocator.RotaState) []allocator.ShiftValidationError {
	var errs []allocator.ShiftValidationError
	for _, shift := range state.Shifts {
		if shift.Closed {
			continue
		}
		if shift.CurrentSize() != shift.Size {
			errs = append(errs, allocator.ShiftValidationError{
				ShiftIndex:    shift.Index,
				ShiftDate:     shift.Date,
				CriterionName: c.Name(),
				Description:   fmt.Sprintf("shift has %d volunteers but expected size is %d", shift.CurrentSize(), shift.Size),
			})
		}
	}
	return errs
}
