// Package rotainput resolves a rota definition file into the pre-resolved
// inputs pkg/core/allocator expects. Recurrence-rule parsing and date
// arithmetic live here, never inside the allocation engine itself.
package rotainput

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/dropin-rota/internal/config"
	"github.com/jakechorley/dropin-rota/pkg/core/allocator"
)

const dateLayout = "2006-01-02"

// VolunteerDoc is one volunteer entry in a rota document.
type VolunteerDoc struct {
	ID         string `yaml:"id" validate:"required"`
	FirstName  string `yaml:"firstName" validate:"required"`
	LastName   string `yaml:"lastName" validate:"required"`
	Gender     string `yaml:"gender,omitempty" validate:"omitempty,oneof=male female unspecified"`
	IsTeamLead bool   `yaml:"isTeamLead,omitempty"`
	GroupKey   string `yaml:"groupKey,omitempty"`
}

// AvailabilityDoc is one volunteer's response for the rota being built.
type AvailabilityDoc struct {
	VolunteerID         string `yaml:"volunteerID" validate:"required"`
	HasResponded        bool   `yaml:"hasResponded"`
	UnavailableDates     []string `yaml:"unavailableDates,omitempty"`
}

// HistoricalAllocationDoc records the groups allocated to one past shift,
// identified by date.
type HistoricalAllocationDoc struct {
	Date      string   `yaml:"date" validate:"required"`
	GroupKeys []string `yaml:"groupKeys,omitempty"`
}

// RotaDocument is the full file-based description of one rota to allocate.
type RotaDocument struct {
	ShiftDates            []string                  `yaml:"shiftDates" validate:"required,min=1"`
	Volunteers            []VolunteerDoc            `yaml:"volunteers" validate:"required,min=1,dive"`
	Availability          []AvailabilityDoc         `yaml:"availability,omitempty" validate:"dive"`
	HistoricalAllocations []HistoricalAllocationDoc `yaml:"historicalAllocations,omitempty" validate:"dive"`
}

var validate = validator.New()

// LoadDocument reads and validates a RotaDocument from path.
func LoadDocument(path string) (*RotaDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rota file: %w", err)
	}

	var doc RotaDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rota file: %w", err)
	}

	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("rota file validation failed: %w", err)
	}

	return &doc, nil
}

// ToVolunteers converts the document's volunteer entries into
// allocator.Volunteer values.
func (d *RotaDocument) ToVolunteers() []allocator.Volunteer {
	out := make([]allocator.Volunteer, 0, len(d.Volunteers))
	for _, v := range d.Volunteers {
		out = append(out, allocator.Volunteer{
			ID:         v.ID,
			FirstName:  v.FirstName,
			LastName:   v.LastName,
			Gender:     parseGender(v.Gender),
			IsTeamLead: v.IsTeamLead,
			GroupKey:   v.GroupKey,
		})
	}
	return out
}

func parseGender(raw string) allocator.Gender {
	switch raw {
	case "male":
		return allocator.GenderMale
	case "female":
		return allocator.GenderFemale
	default:
		return allocator.GenderUnspecified
	}
}

// ToAvailability converts the document's availability entries, resolving
// each unavailable date string against the shift date list to produce
// shift indices the allocator understands.
func (d *RotaDocument) ToAvailability() ([]allocator.VolunteerAvailability, error) {
	indexByDate := make(map[string]int, len(d.ShiftDates))
	for i, date := range d.ShiftDates {
		indexByDate[date] = i
	}

	out := make([]allocator.VolunteerAvailability, 0, len(d.Availability))
	for _, a := range d.Availability {
		var indices []int
		for _, dateStr := range a.UnavailableDates {
			idx, ok := indexByDate[dateStr]
			if !ok {
				return nil, fmt.Errorf("availability for %q references unknown shift date %q", a.VolunteerID, dateStr)
			}
			indices = append(indices, idx)
		}
		out = append(out, allocator.VolunteerAvailability{
			VolunteerID:             a.VolunteerID,
			HasResponded:            a.HasResponded,
			UnavailableShiftIndices: indices,
		})
	}
	return out, nil
}

// BuildVolunteerGroup constructs a *VolunteerGroup for historical-shift
// reconstruction from a GroupKey and its member list, deriving HasTeamLead
// and MaleCount the same way InitVolunteerGroups does.
func BuildVolunteerGroup(groupKey string, members []allocator.Volunteer) *allocator.VolunteerGroup {
	hasTeamLead := false
	maleCount := 0
	for _, m := range members {
		if m.IsTeamLead {
			hasTeamLead = true
		}
		if m.Gender == allocator.GenderMale {
			maleCount++
		}
	}
	return &allocator.VolunteerGroup{
		GroupKey:    groupKey,
		Members:     members,
		HasTeamLead: hasTeamLead,
		MaleCount:   maleCount,
	}
}

// ToHistoricalShifts reconstructs minimal historical *allocator.Shift values
// (only Date and AllocatedGroups matter to the engine) from the document's
// historical allocation records, resolving each group key against the
// current volunteer roster.
func (d *RotaDocument) ToHistoricalShifts() []*allocator.Shift {
	membersByGroup := make(map[string][]allocator.Volunteer)
	for _, v := range d.Volunteers {
		key := v.GroupKey
		if key == "" {
			key = "individual_" + v.ID
		}
		membersByGroup[key] = append(membersByGroup[key], allocator.Volunteer{
			ID:         v.ID,
			FirstName:  v.FirstName,
			LastName:   v.LastName,
			Gender:     parseGender(v.Gender),
			IsTeamLead: v.IsTeamLead,
			GroupKey:   v.GroupKey,
		})
	}

	shifts := make([]*allocator.Shift, 0, len(d.HistoricalAllocations))
	for i, h := range d.HistoricalAllocations {
		shift := &allocator.Shift{Date: h.Date, Index: i}
		for _, key := range h.GroupKeys {
			shift.AllocatedGroups = append(shift.AllocatedGroups, BuildVolunteerGroup(key, membersByGroup[key]))
		}
		shifts = append(shifts, shift)
	}
	return shifts
}

// BuildOverrides converts config.RotaOverride entries (parsed RRules) into
// allocator.ShiftOverride predicates bound to this document's date range.
func BuildOverrides(overrides []config.RotaOverride, shiftDates []string) ([]allocator.ShiftOverride, error) {
	if len(shiftDates) == 0 {
		return nil, nil
	}

	rotaStart, err := time.Parse(dateLayout, shiftDates[0])
	if err != nil {
		return nil, fmt.Errorf("invalid shift date %q: %w", shiftDates[0], err)
	}
	rotaEnd, err := time.Parse(dateLayout, shiftDates[len(shiftDates)-1])
	if err != nil {
		return nil, fmt.Errorf("invalid shift date %q: %w", shiftDates[len(shiftDates)-1], err)
	}

	result := make([]allocator.ShiftOverride, 0, len(overrides))
	for i, override := range overrides {
		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for override %d: %w", i, err)
		}

		searchStart := rotaStart.AddDate(0, 0, -7)
		searchEnd := rotaEnd.AddDate(0, 0, 7)
		rule.DTStart(searchStart)
		occurrences := rule.Between(searchStart, searchEnd, true)

		matchDates := make(map[string]bool, len(occurrences))
		for _, occ := range occurrences {
			matchDates[occ.Format(dateLayout)] = true
		}

		result = append(result, allocator.ShiftOverride{
			AppliesTo:            func(dateStr string) bool { return matchDates[dateStr] },
			ShiftSize:            override.ShiftSize,
			CustomPreallocations: override.CustomPreallocations,
			Closed:               override.Closed,
		})
	}

	return result, nil
}
