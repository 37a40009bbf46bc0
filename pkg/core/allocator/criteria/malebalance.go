package criteria

import (
	"github.com/jakechorley/dropin-rota/pkg/core/allocator"
)

// MaleBalanceCriterion promotes groups with male members and vetoes
// allocations that would fill a shift without ever seating a male
// volunteer.
type MaleBalanceCriterion struct {
	groupWeight    float64
	affinityWeight float64
}

func NewMaleBalanceCriterion(groupWeight, affinityWeight float64) *MaleBalanceCriterion {
	return &MaleBalanceCriterion{groupWeight: groupWeight, affinityWeight: affinityWeight}
}

func (c *MaleBalanceCriterion) Name() string { return "MaleBalance" }

func (c *MaleBalanceCriterion) GroupWeight() float64    { return c.groupWeight }
func (c *MaleBalanceCriterion) AffinityWeight() float64 { return c.affinityWeight }

func (c *MaleBalanceCriterion) PromoteVolunteerGroup(_ *allocator.RotaState, group *allocator.VolunteerGroup) float64 {
	if group.MaleCount > 0 {
		return 1
	}
	return 0
}

func (c *MaleBalanceCriterion) IsShiftValid(_ *allocator.RotaState, group *allocator.VolunteerGroup, shift *allocator.Shift) bool {
	if shift.MaleCount > 0 || group.MaleCount > 0 {
		return true
	}
	wouldFillShift := group.OrdinaryVolunteerCount() >= shift.RemainingCapacity()
	return !wouldFillShift
}

func (c *MaleBalanceCriterion) CalculateShiftAffinity(state *allocator.RotaState, group *allocator.VolunteerGroup, shift *allocator.Shift) float64 {
	if group.MaleCount == 0 {
		return 0
	}
	need := 1.0 - 0.5*float64(shift.MaleCount)
	if need < 0.1 {
		need = 0.1
	}
	remaining := shift.RemainingAvailableMaleVolunteers(state.VolunteerState)
	if remaining == 0 {
		return 0
	}
	return need / float64(remaining)
}

func (c *MaleBalanceCriterion) ValidateRotaState(state *allocator.RotaState) []allocator.ShiftValidationError {
	var errs []allocator.ShiftValidationError
	for _, shift := range state.Shifts {
		if shift.Closed {
			continue
		}
		if shift.MaleCount == 0 {
			errs = append(errs, allocator.ShiftValidationError{
				ShiftIndex:    shift.Index,
				ShiftDate:     shift.Date,
				CriterionName: c.Name(),
				Description:   "shift has no male volunteer",
			})
		}
	}
	return errs
}
