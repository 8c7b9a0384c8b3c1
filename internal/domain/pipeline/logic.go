package pipeline

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// BuildStageMetrics derives per-stage figures from the current lead
// distribution and the raw transition history. Stages come back in ascending
// OrderIndex. A tenant with no leads and no history yields an empty slice.
//
// For each stage:
//   - StageCount: leads whose current stage it is.
//   - AvgTimeInStage: mean of completed dwells (entered via a transition,
//     later left via a transition); whole days when at least one day,
//     otherwise whole hours. "n/a" when no dwell completed yet.
//   - ConversionRate: leads that advanced to a later stage over leads that
//     ever entered, as a rounded percentage.
func BuildStageMetrics(stages []Stage, currentCounts map[string]int, history []StageHistoryEntry) []StageMetrics {
	totalLeads := 0
	for _, count := range currentCounts {
		totalLeads += count
	}
	if totalLeads == 0 && len(history) == 0 {
		return []StageMetrics{}
	}

	ordered := make([]Stage, len(stages))
	copy(ordered, stages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})

	orderOf := make(map[string]int, len(ordered))
	for _, stage := range ordered {
		orderOf[stage.ID] = stage.OrderIndex
	}

	// Replay history in time order per lead to pair each stage entry with
	// the transition that left it.
	sorted := make([]StageHistoryEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChangedAt.Before(sorted[j].ChangedAt)
	})

	type stageAgg struct {
		entered    map[string]bool
		advanced   map[string]bool
		totalDwell time.Duration
		dwellCount int
	}
	aggs := make(map[string]*stageAgg, len(ordered))
	agg := func(stageID string) *stageAgg {
		a, ok := aggs[stageID]
		if !ok {
			a = &stageAgg{entered: map[string]bool{}, advanced: map[string]bool{}}
			aggs[stageID] = a
		}
		return a
	}

	enteredAt := make(map[string]map[string]time.Time) // lead -> stage -> entry time
	for _, entry := range sorted {
		if entry.FromStageID != "" {
			from := agg(entry.FromStageID)
			from.entered[entry.LeadID] = true
			if orderOf[entry.ToStageID] > orderOf[entry.FromStageID] {
				from.advanced[entry.LeadID] = true
			}
			if perLead, ok := enteredAt[entry.LeadID]; ok {
				if t, ok := perLead[entry.FromStageID]; ok {
					from.totalDwell += entry.ChangedAt.Sub(t)
					from.dwellCount++
					delete(perLead, entry.FromStageID)
				}
			}
		}
		if entry.ToStageID != "" {
			agg(entry.ToStageID).entered[entry.LeadID] = true
			if enteredAt[entry.LeadID] == nil {
				enteredAt[entry.LeadID] = map[string]time.Time{}
			}
			enteredAt[entry.LeadID][entry.ToStageID] = entry.ChangedAt
		}
	}

	out := make([]StageMetrics, 0, len(ordered))
	for _, stage := range ordered {
		m := StageMetrics{
			StageID:        stage.ID,
			StageName:      stage.Name,
			StageCount:     currentCounts[stage.ID],
			AvgTimeInStage: "n/a",
		}
		if a, ok := aggs[stage.ID]; ok {
			if a.dwellCount > 0 {
				m.AvgTimeInStage = formatDwell(a.totalDwell / time.Duration(a.dwellCount))
			}
			if len(a.entered) > 0 {
				m.ConversionRate = int(math.Round(float64(len(a.advanced)) / float64(len(a.entered)) * 100))
			}
		}
		out = append(out, m)
	}
	return out
}

func formatDwell(d time.Duration) string {
	if d >= 24*time.Hour {
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
