package allocator

import "sort"

// calculateGroupRankingScore computes a group's priority in the allocation
// queue. Higher scores are served first.
func calculateGroupRankingScore(state *RotaState, group *VolunteerGroup, criteria []Criterion, targetFrequency float64) float64 {
	score := 0.0

	remainingAvailability := len(group.AvailableShiftIndices) - len(group.AllocatedShiftIndices)
	if remainingAvailability > 0 {
		target := int(float64(len(state.Shifts)) * targetFrequency)
		need := target - len(group.AllocatedShiftIndices)
		urgency := float64(need) / float64(remainingAvailability)
		if urgency < 1.0 {
			urgency = 1.0
		}
		score += urgency * state.WeightCurrentRotaUrgency
	}

	if len(state.Shifts) > 0 {
		desired := group.DesiredRemainingAllocations(len(state.HistoricalShifts), len(state.Shifts), targetFrequency)
		fairness := float64(desired) / float64(len(state.Shifts))
		if fairness > 1 {
			fairness = 1
		}
		if fairness < -1 {
			fairness = -1
		}
		score += fairness * state.WeightOverallFrequencyFairness
	}

	if len(group.Members) > 1 {
		score += state.WeightPromoteGroup
	}

	for _, c := range criteria {
		score += c.PromoteVolunteerGroup(state, group) * c.GroupWeight()
	}

	return score
}

// RankVolunteerGroups sorts state.VolunteerState.VolunteerGroups descending
// by ranking score.
func RankVolunteerGroups(state *RotaState, criteria []Criterion, targetFrequency float64) {
	groups := state.VolunteerState.VolunteerGroups
	scores := make(map[*VolunteerGroup]float64, len(groups))
	for _, g := range groups {
		scores[g] = calculateGroupRankingScore(state, g, criteria, targetFrequency)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return scores[groups[i]] > scores[groups[j]]
	})
}
