package allocator

import "fmt"

// validateCoreInvariants checks the structural guarantees every
// AllocationOutcome.State must satisfy, independent of any criterion:
// no over-allocation, no duplicate allocation within a shift, availability
// respected, AllocatedShiftIndices consistent with shift membership, and
// MaleCount consistent with the groups (plus a standalone male team lead)
// allocated to each shift.
func validateCoreInvariants(state *RotaState) []ShiftValidationError {
	var errs []ShiftValidationError

	maxAllocations := state.MaxAllocationCount()
	allGroups := collectAllGroups(state)

	for _, g := range allGroups {
		if len(g.AllocatedShiftIndices) > maxAllocations {
			errs = append(errs, ShiftValidationError{
				ShiftIndex:    -1,
				CriterionName: "CoreInvariant",
				Description: fmt.Sprintf("group %q is allocated to %d shifts but max is %d",
					g.GroupKey, len(g.AllocatedShiftIndices), maxAllocations),
			})
		}
	}

	for _, shift := range state.Shifts {
		seen := make(map[string]bool)
		for _, g := range shift.AllocatedGroups {
			if seen[g.GroupKey] {
				errs = append(errs, ShiftValidationError{
					ShiftIndex:    shift.Index,
					ShiftDate:     shift.Date,
					CriterionName: "CoreInvariant",
					Description:   fmt.Sprintf("group %q is allocated multiple times to the same shift", g.GroupKey),
				})
				continue
			}
			seen[g.GroupKey] = true

			if !g.IsAvailable(shift.Index) {
				errs = append(errs, ShiftValidationError{
					ShiftIndex:    shift.Index,
					ShiftDate:     shift.Date,
					CriterionName: "CoreInvariant",
					Description:   fmt.Sprintf("group %q is allocated to shift %d but is not available for it", g.GroupKey, shift.Index),
				})
			}
		}
	}

	for _, g := range allGroups {
		actual := shiftIndicesFromRota(state, g)
		if !sameIntSet(actual, g.AllocatedShiftIndices) {
			errs = append(errs, ShiftValidationError{
				ShiftIndex:    -1,
				CriterionName: "CoreInvariant",
				Description: fmt.Sprintf("group %q AllocatedShiftIndices %v does not match shifts that actually contain it %v",
					g.GroupKey, g.AllocatedShiftIndices, actual),
			})
		}
	}

	for _, shift := range state.Shifts {
		if shift.Closed {
			continue
		}
		expected := 0
		for _, g := range shift.AllocatedGroups {
			expected += g.MaleCount
		}
		if shift.TeamLead != nil && shift.TeamLead.Gender == GenderMale && !teamLeadCountedInGroup(shift) {
			expected++
		}
		if shift.MaleCount != expected {
			errs = append(errs, ShiftValidationError{
				ShiftIndex:    shift.Index,
				ShiftDate:     shift.Date,
				CriterionName: "CoreInvariant",
				Description: fmt.Sprintf("shift MaleCount is %d but actual male count from groups is %d",
					shift.MaleCount, expected),
			})
		}
	}

	return errs
}

func teamLeadCountedInGroup(shift *Shift) bool {
	for _, g := range shift.AllocatedGroups {
		for _, m := range g.Members {
			if shift.TeamLead != nil && m.ID == shift.TeamLead.ID {
				return true
			}
		}
	}
	return false
}

func collectAllGroups(state *RotaState) []*VolunteerGroup {
	groups := append([]*VolunteerGroup{}, state.VolunteerState.VolunteerGroups...)
	for g := range state.VolunteerState.ExhaustedVolunteerGroups {
		groups = append(groups, g)
	}
	return groups
}

func shiftIndicesFromRota(state *RotaState, group *VolunteerGroup) []int {
	var indices []int
	for _, shift := range state.Shifts {
		for _, g := range shift.AllocatedGroups {
			if g == group {
				indices = append(indices, shift.Index)
				break
			}
		}
	}
	return indices
}

func sameIntSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if !set[v] {
			return false
		}
	}
	return true
}

// ValidateRotaState aggregates the built-in core invariants with every
// criterion's own structural check.
func ValidateRotaState(state *RotaState, criteria []Criterion) []ShiftValidationError {
	errs := validateCoreInvariants(state)
	for _, c := range criteria {
		errs = append(errs, c.ValidateRotaState(state)...)
	}
	return errs
}
