package allocator

// Default ranking weights, used by InitAllocation when a RotaState field is
// left at its zero value. An explicit weight of 0 that was set deliberately
// is indistinguishable from "unset" here; callers that need a true zero
// weight should use a value extremely close to zero instead.
const (
	DefaultWeightCurrentRotaUrgency       = 1.0
	DefaultWeightOverallFrequencyFairness = 1.0
	DefaultWeightPromoteGroup             = 1.0
)

func applyDefaultWeights(state *RotaState) {
	if state.WeightCurrentRotaUrgency == 0 {
		state.WeightCurrentRotaUrgency = DefaultWeightCurrentRotaUrgency
	}
	if state.WeightOverallFrequencyFairness == 0 {
		state.WeightOverallFrequencyFairness = DefaultWeightOverallFrequencyFairness
	}
	if state.WeightPromoteGroup == 0 {
		state.WeightPromoteGroup = DefaultWeightPromoteGroup
	}
}
