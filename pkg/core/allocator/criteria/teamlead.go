package criteria

import (
	"fmt"

	"github.com/jakechorley/dropin-rota/pkg/core/allocator"
)

// TeamLeadCriterion promotes team-lead-bearing groups, vetoes double-booking
// a shift's single team-lead slot, and prefers shifts where fewer other
// team-lead groups remain available.
type TeamLeadCriterion struct {
	groupWeight    float64
	affinityWeight float64
}

func NewTeamLeadCriterion(groupWeight, affinityWeight float64) *TeamLeadCriterion {
	return &TeamLeadCriterion{groupWeight: groupWeight, affinityWeight: affinityWeight}
}

func (c *TeamLeadCriterion) Name() string { return "TeamLead" }

func (c *TeamLeadCriterion) GroupWeight() float64    { return c.groupWeight }
func (c *TeamLeadCriterion) AffinityWeight() float64 { return c.affinityWeight }

func (c *TeamLeadCriterion) PromoteVolunteerGroup(_ *allocator.RotaState, group *allocator.VolunteerGroup) float64 {
	if group.HasTeamLead {
		return 1
	}
	return 0
}

func (c *TeamLeadCriterion) IsShiftValid(_ *allocator.RotaState, group *allocator.VolunteerGroup, shift *allocator.Shift) bool {
	if group.HasTeamLead && shift.TeamLead != nil {
		return false
	}
	return true
}

func (c *TeamLeadCriterion) CalculateShiftAffinity(state *allocator.RotaState, group *allocator.VolunteerGroup, shift *allocator.Shift) float64 {
	if !group.HasTeamLead || shift.TeamLead != nil {
		return 0
	}
	remaining := shift.RemainingAvailableTeamLeadGroups(state.VolunteerState)
	if remaining == 0 {
		return 0
	}
	return 1.0 / float64(remaining)
}

func (c *TeamLeadCriterion) ValidateRotaState(state *allocator.RotaState) []allocator.ShiftValidationError {
	var errs []allocator.ShiftValidationError
	for _, shift := range state.Shifts {
		if shift.Closed {
			continue
		}
		if shift.TeamLead == nil {
			errs = append(errs, allocator.ShiftValidationError{
				ShiftIndex:    shift.Index,
				ShiftDate:     shift.Date,
				CriterionName: c.Name(),
				Description:   "shift has no team lead",
			})
			continue
		}
		for _, g := range shift.AllocatedGroups {
			for _, m := range g.Members {
				if m.IsTeamLead && m.ID != shift.TeamLead.ID {
					errs = append(errs, allocator.ShiftValidationError{
						ShiftIndex:    shift.Index,
						ShiftDate:     shift.Date,
						CriterionName: c.Name(),
						Description:   fmt.Sprintf("shift has team lead (%s) allocated as an ordinary volunteer", m.DisplayName()),
					})
				}
			}
		}
	}
	return errs
}
