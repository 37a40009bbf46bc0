package allocator

// Allocator holds the criteria and the live state for one allocation run.
type Allocator struct {
	criteria []Criterion
	state    *RotaState
}

// Allocate runs the full allocation pipeline against config: validation,
// init, the greedy main loop, and outcome assembly. The only errors
// returned here are hard errors — malformed config, not an unfillable
// rota. A rota that can't be fully staffed still produces an outcome, with
// Success=false and ValidationErrors populated.
func Allocate(config AllocationConfig) (*AllocationOutcome, error) {
	state, err := InitAllocation(config)
	if err != nil {
		return nil, err
	}

	targetFrequency := config.MaxAllocationFrequency
	RankVolunteerGroups(state, config.Criteria, targetFrequency)

	a := &Allocator{criteria: config.Criteria, state: state}
	a.run(targetFrequency)

	return buildOutcome(a.state, a.criteria), nil
}

func (a *Allocator) run(targetFrequency float64) {
	vs := a.state.VolunteerState
	for {
		if len(vs.VolunteerGroups) == 0 {
			return
		}

		group := vs.VolunteerGroups[0]
		vs.VolunteerGroups = vs.VolunteerGroups[1:]

		bestShift := a.findBestShift(group)
		if bestShift == nil {
			a.exhaustGroup(group)
			if a.allShiftsFull() {
				return
			}
			continue
		}

		a.allocateGroupToShift(group, bestShift)

		maxAllocations := a.state.MaxAllocationCount()
		if len(group.AvailableShiftIndices) < maxAllocations {
			maxAllocations = len(group.AvailableShiftIndices)
		}
		if len(group.AllocatedShiftIndices) >= maxAllocations {
			a.exhaustGroup(group)
		} else {
			a.reinsertGroup(group, targetFrequency)
		}

		if a.allShiftsFull() {
			return
		}
	}
}

// findBestShift returns the highest-affinity valid, non-full shift for
// group, breaking ties toward the lowest index.
func (a *Allocator) findBestShift(group *VolunteerGroup) *Shift {
	var best *Shift
	bestAffinity := -1.0
	for _, shift := range a.state.Shifts {
		if shift.Closed || shift.IsFull() {
			continue
		}
		if !IsShiftValidForGroup(a.state, group, shift, a.criteria) {
			continue
		}
		affinity := CalculateShiftAffinity(a.state, group, shift, a.criteria)
		if affinity > bestAffinity {
			bestAffinity = affinity
			best = shift
		}
	}
	return best
}

func (a *Allocator) allocateGroupToShift(group *VolunteerGroup, shift *Shift) {
	shift.AllocatedGroups = append(shift.AllocatedGroups, group)
	group.insertAllocatedIndex(shift.Index)

	if group.HasTeamLead && shift.TeamLead == nil {
		for i := range group.Members {
			if group.Members[i].IsTeamLead {
				shift.TeamLead = &group.Members[i]
				break
			}
		}
	}

	shift.MaleCount += group.MaleCount
}

func (a *Allocator) exhaustGroup(group *VolunteerGroup) {
	a.state.VolunteerState.ExhaustedVolunteerGroups[group] = true
}

func (a *Allocator) allShiftsFull() bool {
	for _, shift := range a.state.Shifts {
		if shift.Closed {
			continue
		}
		if !shift.IsFull() {
			return false
		}
	}
	return true
}

// reinsertGroup recomputes group's ranking score and inserts it at the
// first position in the queue whose score it exceeds. Ties are broken by
// inserting after the last group with an equal score, preserving the
// existing relative order of equally-ranked groups.
func (a *Allocator) reinsertGroup(group *VolunteerGroup, targetFrequency float64) {
	vs := a.state.VolunteerState
	score := calculateGroupRankingScore(a.state, group, a.criteria, targetFrequency)

	pos := len(vs.VolunteerGroups)
	for i, other := range vs.VolunteerGroups {
		otherScore := calculateGroupRankingScore(a.state, other, a.criteria, targetFrequency)
		if score > otherScore {
			pos = i
			break
		}
	}

	vs.VolunteerGroups = append(vs.VolunteerGroups, nil)
	copy(vs.VolunteerGroups[pos+1:], vs.VolunteerGroups[pos:])
	vs.VolunteerGroups[pos] = group
}

func buildOutcome(state *RotaState, criteria []Criterion) *AllocationOutcome {
	var errs []ShiftValidationError
	errs = append(errs, validateCoreInvariants(state)...)
	for _, c := range criteria {
		errs = append(errs, c.ValidateRotaState(state)...)
	}

	maxAllocations := state.MaxAllocationCount()

	var underutilized []*VolunteerGroup
	consider := func(groups []*VolunteerGroup) {
		for _, g := range groups {
			allocated := len(g.AllocatedShiftIndices)
			available := len(g.AvailableShiftIndices)
			threshold := maxAllocations
			if available < threshold {
				threshold = available
			}
			if allocated > 0 && allocated < threshold {
				underutilized = append(underutilized, g)
			}
		}
	}
	consider(state.VolunteerState.VolunteerGroups)
	for g := range state.VolunteerState.ExhaustedVolunteerGroups {
		consider([]*VolunteerGroup{g})
	}

	return &AllocationOutcome{
		State:               state,
		Success:             len(errs) == 0,
		UnderutilizedGroups: underutilized,
		ValidationErrors:    errs,
	}
}
