package allocator

import (
	"fmt"
	"sort"
)

// VolunteerAvailability is one volunteer's response for the rota being
// allocated.
type VolunteerAvailability struct {
	VolunteerID           string
	HasResponded          bool
	UnavailableShiftIndices []int
}

// ShiftOverride adjusts the shift at any date for which AppliesTo returns
// true. AppliesTo is an opaque predicate supplied by the caller — the core
// never parses a recurrence rule or a date string itself.
type ShiftOverride struct {
	AppliesTo            func(dateKey string) bool
	ShiftSize            *int
	CustomPreallocations []string
	Closed               bool
}

// InitVolunteerGroupsInput bundles the InitVolunteerGroups parameters.
type InitVolunteerGroupsInput struct {
	Volunteers       []Volunteer
	Availability     []VolunteerAvailability
	TotalShifts      int
	HistoricalShifts []*Shift
}

// InitVolunteerGroups partitions volunteers into co-allocatable groups,
// computes each group's availability from responding members, and discards
// groups that cannot participate in this rota.
func InitVolunteerGroups(input InitVolunteerGroupsInput) (*VolunteerState, error) {
	byKey := make(map[string][]Volunteer)
	var order []string
	for _, v := range input.Volunteers {
		key := v.GroupKey
		if key == "" {
			key = "individual_" + v.ID
		}
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], v)
	}

	respondedByID := make(map[string]VolunteerAvailability, len(input.Availability))
	for _, a := range input.Availability {
		respondedByID[a.VolunteerID] = a
	}

	var groups []*VolunteerGroup
	for _, key := range order {
		members := byKey[key]

		teamLeadCount := 0
		maleCount := 0
		var teamLeadNames []string
		for _, m := range members {
			if m.IsTeamLead {
				teamLeadCount++
				teamLeadNames = append(teamLeadNames, m.DisplayName())
			}
			if m.Gender == GenderMale {
				maleCount++
			}
		}
		if teamLeadCount > 1 {
			return nil, fmt.Errorf("group %q has more than one team lead: %v", key, teamLeadNames)
		}

		hasResponded := false
		unavailable := make(map[int]bool)
		for _, m := range members {
			a, ok := respondedByID[m.ID]
			if !ok || !a.HasResponded {
				continue
			}
			hasResponded = true
			for _, idx := range a.UnavailableShiftIndices {
				unavailable[idx] = true
			}
		}
		if !hasResponded {
			continue
		}

		var available []int
		for i := 0; i < input.TotalShifts; i++ {
			if !unavailable[i] {
				available = append(available, i)
			}
		}
		if len(available) == 0 {
			continue
		}

		groups = append(groups, &VolunteerGroup{
			GroupKey:                  key,
			Members:                   members,
			AvailableShiftIndices:     available,
			AllocatedShiftIndices:     nil,
			HistoricalAllocationCount: calculateHistoricalAllocationCount(key, input.HistoricalShifts),
			HasTeamLead:               teamLeadCount == 1,
			MaleCount:                 maleCount,
		})
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("no volunteer groups available after filtering by response and availability")
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].GroupKey < groups[j].GroupKey
	})

	return &VolunteerState{
		VolunteerGroups:          groups,
		ExhaustedVolunteerGroups: make(map[*VolunteerGroup]bool),
	}, nil
}

func calculateHistoricalAllocationCount(groupKey string, historicalShifts []*Shift) int {
	count := 0
	for _, shift := range historicalShifts {
		for _, g := range shift.AllocatedGroups {
			if g.GroupKey == groupKey {
				count++
				break
			}
		}
	}
	return count
}

// InitShiftsInput bundles the InitShifts parameters.
type InitShiftsInput struct {
	Dates          []string
	DefaultSize    int
	Overrides      []ShiftOverride
	VolunteerState *VolunteerState
}

// InitShifts builds the shift slice, applying every matching override in
// order. ShiftSize is last-write-wins across matching overrides;
// CustomPreallocations accumulate across all matching overrides; a Closed
// override discards any preallocations already applied to that shift.
func InitShifts(input InitShiftsInput) []*Shift {
	shifts := make([]*Shift, len(input.Dates))
	for i, date := range input.Dates {
		shift := &Shift{
			Date:                 date,
			Index:                i,
			Size:                 input.DefaultSize,
			CustomPreallocations: nil,
			Closed:               false,
		}
		for _, override := range input.Overrides {
			if !override.AppliesTo(date) {
				continue
			}
			if override.ShiftSize != nil {
				shift.Size = *override.ShiftSize
			}
			shift.CustomPreallocations = append(shift.CustomPreallocations, override.CustomPreallocations...)
			if override.Closed {
				shift.Closed = true
				shift.CustomPreallocations = nil
			}
		}
		shifts[i] = shift
	}

	for _, shift := range shifts {
		if shift.Closed {
			continue
		}
		for _, g := range input.VolunteerState.VolunteerGroups {
			if g.IsAvailable(shift.Index) {
				shift.AvailableGroups = append(shift.AvailableGroups, g)
			}
		}
	}

	return shifts
}

// AllocationConfig is the single input to Allocate.
type AllocationConfig struct {
	Criteria               []Criterion
	MaxAllocationFrequency float64
	HistoricalShifts       []*Shift
	Volunteers             []Volunteer
	Availability           []VolunteerAvailability
	ShiftDates             []string
	DefaultShiftSize       int
	Overrides              []ShiftOverride

	WeightCurrentRotaUrgency       float64
	WeightOverallFrequencyFairness float64
	WeightPromoteGroup             float64
}

// InitAllocation validates a config and builds the initial RotaState; it
// does not rank the groups (Allocate does that afterwards). It returns an
// error for malformed input — never for a rota that merely can't be fully
// staffed.
func InitAllocation(config AllocationConfig) (*RotaState, error) {
	if len(config.ShiftDates) == 0 {
		return nil, fmt.Errorf("no shift dates provided")
	}
	if len(config.Volunteers) == 0 {
		return nil, fmt.Errorf("no volunteers provided")
	}
	if config.DefaultShiftSize < 0 {
		return nil, fmt.Errorf("default shift size must not be negative, got %d", config.DefaultShiftSize)
	}
	if config.MaxAllocationFrequency <= 0 || config.MaxAllocationFrequency > 1 {
		return nil, fmt.Errorf("max allocation frequency must be in (0, 1], got %v", config.MaxAllocationFrequency)
	}

	volunteerState, err := InitVolunteerGroups(InitVolunteerGroupsInput{
		Volunteers:       config.Volunteers,
		Availability:     config.Availability,
		TotalShifts:      len(config.ShiftDates),
		HistoricalShifts: config.HistoricalShifts,
	})
	if err != nil {
		return nil, err
	}

	shifts := InitShifts(InitShiftsInput{
		Dates:          config.ShiftDates,
		DefaultSize:    config.DefaultShiftSize,
		Overrides:      config.Overrides,
		VolunteerState: volunteerState,
	})

	state := &RotaState{
		Shifts:                         shifts,
		VolunteerState:                 volunteerState,
		HistoricalShifts:               config.HistoricalShifts,
		MaxAllocationFrequency:         config.MaxAllocationFrequency,
		WeightCurrentRotaUrgency:       config.WeightCurrentRotaUrgency,
		WeightOverallFrequencyFairness: config.WeightOverallFrequencyFairness,
		WeightPromoteGroup:             config.WeightPromoteGroup,
	}
	applyDefaultWeights(state)

	return state, nil
}
