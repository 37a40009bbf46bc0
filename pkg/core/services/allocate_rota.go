// Package services wires the allocation engine with project-specific
// criterion weights and shapes its outcome for the CLI.
package services

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/dropin-rota/internal/config"
	"github.com/jakechorley/dropin-rota/pkg/core/allocator"
	"github.com/jakechorley/dropin-rota/pkg/core/allocator/criteria"
	"github.com/jakechorley/dropin-rota/pkg/rotainput"
)

// Default criterion weights. Config.CriteriaWeights overrides any of these
// per-criterion; a zero override falls back to the constant below.
const (
	WeightShiftSizeGroup    = 2.0
	WeightShiftSizeAffinity = 2.0

	WeightTeamLeadGroup    = 0.5
	WeightTeamLeadAffinity = 2.0

	WeightMaleBalanceGroup    = 0.5
	WeightMaleBalanceAffinity = 1.0

	WeightNoDoubleShiftsAffinity = 1.0

	WeightShiftSpreadAffinity = 0.5
)

// AllocateRotaResult is the outcome of one allocation run, shaped for
// display or for a caller that would persist it.
type AllocateRotaResult struct {
	RunID               string
	ShiftCount          int
	Success             bool
	AllocatedShifts     []*allocator.Shift
	ValidationErrors    []allocator.ShiftValidationError
	UnderutilizedGroups []*allocator.VolunteerGroup
}

func orDefault(value, fallback float64) float64 {
	if value == 0 {
		return fallback
	}
	return value
}

func buildCriteria(cfg *config.Config) []allocator.Criterion {
	w := cfg.CriteriaWeights
	return []allocator.Criterion{
		criteria.NewShiftSizeCriterion(
			orDefault(w.ShiftSize.Group, WeightShiftSizeGroup),
			orDefault(w.ShiftSize.Affinity, WeightShiftSizeAffinity),
		),
		criteria.NewTeamLeadCriterion(
			orDefault(w.TeamLead.Group, WeightTeamLeadGroup),
			orDefault(w.TeamLead.Affinity, WeightTeamLeadAffinity),
		),
		criteria.NewMaleBalanceCriterion(
			orDefault(w.MaleBalance.Group, WeightMaleBalanceGroup),
			orDefault(w.MaleBalance.Affinity, WeightMaleBalanceAffinity),
		),
		criteria.NewNoDoubleShiftsCriterion(
			orDefault(w.NoDoubleShifts.Affinity, WeightNoDoubleShiftsAffinity),
		),
		criteria.NewShiftSpreadCriterion(
			orDefault(w.ShiftSpread.Affinity, WeightShiftSpreadAffinity),
		),
	}
}

// AllocateRota builds the allocation config from an already loaded doc and
// cfg, runs the engine, and logs validation errors. forceCommit only affects how the
// caller should interpret Success — the engine itself never special-cases
// it.
func AllocateRota(doc *rotainput.RotaDocument, cfg *config.Config, logger *zap.Logger, forceCommit bool) (*AllocateRotaResult, error) {
	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))

	availability, err := doc.ToAvailability()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve availability: %w", err)
	}

	overrides, err := rotainput.BuildOverrides(cfg.RotaOverrides, doc.ShiftDates)
	if err != nil {
		return nil, fmt.Errorf("failed to build overrides: %w", err)
	}

	allocConfig := allocator.AllocationConfig{
		Criteria:               buildCriteria(cfg),
		MaxAllocationFrequency: cfg.MaxAllocationFrequency,
		HistoricalShifts:       doc.ToHistoricalShifts(),
		Volunteers:             doc.ToVolunteers(),
		Availability:           availability,
		ShiftDates:             doc.ShiftDates,
		DefaultShiftSize:       cfg.DefaultShiftSize,
		Overrides:              overrides,
	}

	outcome, err := allocator.Allocate(allocConfig)
	if err != nil {
		return nil, fmt.Errorf("allocation failed: %w", err)
	}

	if len(outcome.ValidationErrors) > 0 {
		logger.Warn("allocation produced validation errors", zap.Int("count", len(outcome.ValidationErrors)))
		for _, verr := range outcome.ValidationErrors {
			logger.Debug("validation error",
				zap.Int("shift_index", verr.ShiftIndex),
				zap.String("shift_date", verr.ShiftDate),
				zap.String("criterion", verr.CriterionName),
				zap.String("description", verr.Description))
		}
	}

	if forceCommit && !outcome.Success {
		logger.Warn("committing rota despite validation errors", zap.Bool("force_commit", forceCommit))
	}

	return &AllocateRotaResult{
		RunID:               runID,
		ShiftCount:          len(outcome.State.Shifts),
		Success:             outcome.Success,
		AllocatedShifts:     outcome.State.Shifts,
		ValidationErrors:    outcome.ValidationErrors,
		UnderutilizedGroups: outcome.UnderutilizedGroups,
	}, nil
}
