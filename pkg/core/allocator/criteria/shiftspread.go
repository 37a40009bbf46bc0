package criteria

import "github.com/jakechorley/dropin-rota/pkg/core/allocator"

// ShiftSpreadCriterion never vetoes; it prefers shifts that sit as far as
// possible from a group's other allocations, current or historical, so
// that one group's shifts don't cluster together.
type ShiftSpreadCriterion struct {
	affinityWeight float64
}

func NewShiftSpreadCriterion(affinityWeight float64) *ShiftSpreadCriterion {
	return &ShiftSpreadCriterion{affinityWeight: affinityWeight}
}

func (c *ShiftSpreadCriterion) Name() string { return "ShiftSpread" }

func (c *ShiftSpreadCriterion) GroupWeight() float64    { return 0 }
func (c *ShiftSpreadCriterion) AffinityWeight() float64 { return c.affinityWeight }

func (c *ShiftSpreadCriterion) PromoteVolunteerGroup(*allocator.RotaState, *allocator.VolunteerGroup) float64 {
	return 0
}

func (c *ShiftSpreadCriterion) IsShiftValid(*allocator.RotaState, *allocator.VolunteerGroup, *allocator.Shift) bool {
	return true
}

func lastHistoricalIndexFor(state *allocator.RotaState, group *allocator.VolunteerGroup) int {
	for i := len(state.HistoricalShifts) - 1; i >= 0; i-- {
		if groupInAllocatedGroups(group, state.HistoricalShifts[i].AllocatedGroups) {
			return i
		}
	}
	return -1
}

func (c *ShiftSpreadCriterion) CalculateShiftAffinity(state *allocator.RotaState, group *allocator.VolunteerGroup, shift *allocator.Shift) float64 {
	totalShifts := len(state.Shifts)
	lastHistIdx := lastHistoricalIndexFor(state, group)

	var maxDistance int
	if lastHistIdx >= 0 {
		maxDistance = (len(state.HistoricalShifts) - lastHistIdx - 1) + totalShifts
	} else {
		maxDistance = totalShifts - 1
	}

	if maxDistance == 0 {
		return 0.5
	}

	minDistance := maxDistance

	if lastHistIdx >= 0 {
		distanceFromHistory := (len(state.HistoricalShifts) - lastHistIdx - 1) + shift.Index + 1
		if distanceFromHistory < minDistance {
			minDistance = distanceFromHistory
		}
	}

	for _, idx := range group.AllocatedShiftIndices {
		d := idx - shift.Index
		if d < 0 {
			d = -d
		}
		if d < minDistance {
			minDistance = d
		}
	}

	return float64(minDistance) / float64(maxDistance)
}

func (c *ShiftSpreadCriterion) ValidateRotaState(*allocator.RotaState) []allocator.ShiftValidationError {
	return nil
}
