package commands

import (
	"fmt"
	"strings"

	"github.com/jakechorley/dropin-rota/pkg/core/services"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// renderAllocationResult prints the header, the validation errors, the
// per-shift table, and the underutilized-groups summary for one allocation
// result.
func renderAllocationResult(result *services.AllocateRotaResult, dryRun, forceCommit bool) {
	fmt.Printf("\nRota Allocation Results\n\n")
	fmt.Printf("Run ID:      %s\n", result.RunID)
	fmt.Printf("Shift Count: %d\n", result.ShiftCount)
	if dryRun {
		fmt.Printf("Mode:        DRY RUN (not committed)\n")
	} else if result.Success {
		fmt.Printf("Status:      SUCCESS\n")
	} else if forceCommit {
		fmt.Printf("Status:      FORCED (committed despite validation errors)\n")
	} else {
		fmt.Printf("Status:      FAILED\n")
	}
	fmt.Println()

	if len(result.ValidationErrors) > 0 {
		fmt.Printf("Validation Errors (%d):\n", len(result.ValidationErrors))
		for _, verr := range result.ValidationErrors {
			fmt.Printf("  - Shift %d (%s) - %s: %s\n",
				verr.ShiftIndex+1, verr.ShiftDate, verr.CriterionName, verr.Description)
		}
		fmt.Println()
	}

	fmt.Printf("Allocated Shifts:\n\n")

	maxTeamLeadLen := 15
	maxVolunteersLen := 40
	for _, shift := range result.AllocatedShifts {
		if shift.TeamLead != nil {
			nameLen := len(shift.TeamLead.FirstName) + len(shift.TeamLead.LastName) + 1
			if nameLen > maxTeamLeadLen {
				maxTeamLeadLen = nameLen
			}
		}

		totalLen := 0
		for _, group := range shift.AllocatedGroups {
			for _, member := range group.Members {
				if shift.TeamLead == nil || member.ID != shift.TeamLead.ID {
					totalLen += len(member.FirstName) + len(member.LastName) + 3
				}
			}
		}
		if totalLen > maxVolunteersLen {
			maxVolunteersLen = totalLen
		}
	}

	dateColWidth := 12
	teamLeadColWidth := maxTeamLeadLen + 2
	volunteersColWidth := maxVolunteersLen + 2

	fmt.Printf("%s%-*s  %-*s  %-*s  %s%s\n",
		colorBold, dateColWidth, "Date", teamLeadColWidth, "Team Lead", volunteersColWidth, "Volunteers", "Size", colorReset)
	fmt.Print(strings.Repeat("-", dateColWidth))
	fmt.Print("  ")
	fmt.Print(strings.Repeat("-", teamLeadColWidth))
	fmt.Print("  ")
	fmt.Print(strings.Repeat("-", volunteersColWidth))
	fmt.Print("  ")
	fmt.Println("----")

	for _, shift := range result.AllocatedShifts {
		fmt.Printf("%-*s  ", dateColWidth, shift.Date)

		teamLeadStr := "-"
		teamLeadDisplayWidth := 1
		if shift.TeamLead != nil {
			teamLeadStr = fmt.Sprintf("%s%s %s%s", colorGreen, shift.TeamLead.FirstName, shift.TeamLead.LastName, colorReset)
			teamLeadDisplayWidth = len(shift.TeamLead.FirstName) + len(shift.TeamLead.LastName) + 1
		}
		fmt.Printf("%s%s  ", teamLeadStr, strings.Repeat(" ", teamLeadColWidth-teamLeadDisplayWidth))

		var volunteers []string
		for _, group := range shift.AllocatedGroups {
			for _, member := range group.Members {
				if shift.TeamLead != nil && member.ID == shift.TeamLead.ID {
					continue
				}
				volunteers = append(volunteers, fmt.Sprintf("%s %s", member.FirstName, member.LastName))
			}
		}
		for _, preAlloc := range shift.CustomPreallocations {
			volunteers = append(volunteers, fmt.Sprintf("%s[%s]%s", colorYellow, preAlloc, colorReset))
		}

		volunteersStr := "-"
		if len(volunteers) > 0 {
			volunteersStr = strings.Join(volunteers, ", ")
		}
		fmt.Printf("%-*s  ", volunteersColWidth, volunteersStr)

		sizeStr := fmt.Sprintf("%d/%d", shift.CurrentSize(), shift.Size)
		if shift.CurrentSize() == shift.Size {
			sizeStr = fmt.Sprintf("%s%s%s", colorGreen, sizeStr, colorReset)
		}
		fmt.Printf("%s\n", sizeStr)
	}
	fmt.Println()

	if len(result.UnderutilizedGroups) > 0 {
		fmt.Printf("Underutilized Groups (%d):\n", len(result.UnderutilizedGroups))
		fmt.Println("  (groups with remaining availability that weren't fully allocated)")
		for _, group := range result.UnderutilizedGroups {
			fmt.Printf("  - %s: allocated %d/%d shifts\n",
				group.GroupKey, len(group.AllocatedShiftIndices), len(group.AvailableShiftIndices))
		}
		fmt.Println()
	}

	switch {
	case dryRun:
		fmt.Println("This was a dry run; re-run without --dry-run to treat the result as final.")
	case result.Success:
		fmt.Println("Allocation succeeded.")
	case forceCommit:
		fmt.Println("Allocation committed despite validation errors (--force-commit).")
	default:
		fmt.Println("Allocation failed validation and was not committed.")
		fmt.Println("Use allocateRota --force-commit to commit anyway, or fix the issues and try again.")
	}
}
