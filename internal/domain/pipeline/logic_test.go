package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(day, hour int) time.Time {
	return time.Date(2026, time.March, day, hour, 0, 0, 0, time.UTC)
}

func testStages() []Stage {
	return []Stage{
		{ID: "s3", Name: "Won", OrderIndex: 3},
		{ID: "s1", Name: "New", OrderIndex: 1},
		{ID: "s2", Name: "Qualified", OrderIndex: 2},
	}
}

func TestBuildStageMetricsEmptyTenant(t *testing.T) {
	got := BuildStageMetrics(testStages(), map[string]int{}, nil)

	require.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestBuildStageMetricsOrderedByOrderIndex(t *testing.T) {
	got := BuildStageMetrics(testStages(), map[string]int{"s1": 2, "s3": 1}, nil)

	require.Len(t, got, 3)
	assert.Equal(t, "New", got[0].StageName)
	assert.Equal(t, "Qualified", got[1].StageName)
	assert.Equal(t, "Won", got[2].StageName)
	assert.Equal(t, 2, got[0].StageCount)
	assert.Equal(t, 0, got[1].StageCount)
	assert.Equal(t, 1, got[2].StageCount)
}

func TestBuildStageMetricsDwellInDays(t *testing.T) {
	history := []StageHistoryEntry{
		{LeadID: "l1", FromStageID: "", ToStageID: "s1", ChangedAt: ts(1, 0)},
		{LeadID: "l1", FromStageID: "s1", ToStageID: "s2", ChangedAt: ts(4, 0)},
	}

	got := BuildStageMetrics(testStages(), map[string]int{"s2": 1}, history)

	require.Len(t, got, 3)
	assert.Equal(t, "3 days", got[0].AvgTimeInStage)
	assert.Equal(t, "n/a", got[1].AvgTimeInStage)
}

func TestBuildStageMetricsDwellInHours(t *testing.T) {
	history := []StageHistoryEntry{
		{LeadID: "l1", FromStageID: "", ToStageID: "s1", ChangedAt: ts(1, 9)},
		{LeadID: "l1", FromStageID: "s1", ToStageID: "s2", ChangedAt: ts(1, 14)},
	}

	got := BuildStageMetrics(testStages(), map[string]int{"s2": 1}, history)

	assert.Equal(t, "5 hours", got[0].AvgTimeInStage)
}

func TestBuildStageMetricsSingularUnits(t *testing.T) {
	history := []StageHistoryEntry{
		{LeadID: "l1", FromStageID: "", ToStageID: "s1", ChangedAt: ts(1, 0)},
		{LeadID: "l1", FromStageID: "s1", ToStageID: "s2", ChangedAt: ts(2, 0)},
		{LeadID: "l2", FromStageID: "", ToStageID: "s2", ChangedAt: ts(1, 0)},
		{LeadID: "l2", FromStageID: "s2", ToStageID: "s3", ChangedAt: ts(1, 1)},
	}

	got := BuildStageMetrics(testStages(), map[string]int{"s2": 1, "s3": 1}, history)

	assert.Equal(t, "1 day", got[0].AvgTimeInStage)
	assert.Equal(t, "1 hour", got[1].AvgTimeInStage)
}

func TestBuildStageMetricsConversionRate(t *testing.T) {
	// Three leads enter s1; two advance to s2, one moves back from s2.
	history := []StageHistoryEntry{
		{LeadID: "l1", FromStageID: "", ToStageID: "s1", ChangedAt: ts(1, 0)},
		{LeadID: "l2", FromStageID: "", ToStageID: "s1", ChangedAt: ts(1, 0)},
		{LeadID: "l3", FromStageID: "", ToStageID: "s1", ChangedAt: ts(1, 0)},
		{LeadID: "l1", FromStageID: "s1", ToStageID: "s2", ChangedAt: ts(2, 0)},
		{LeadID: "l2", FromStageID: "s1", ToStageID: "s2", ChangedAt: ts(2, 0)},
		{LeadID: "l2", FromStageID: "s2", ToStageID: "s1", ChangedAt: ts(3, 0)},
	}

	got := BuildStageMetrics(testStages(), map[string]int{"s1": 2, "s2": 1}, history)

	// 2 of 3 leads that entered s1 moved to a later stage: round(66.67) = 67.
	assert.Equal(t, 67, got[0].ConversionRate)
	// l2 entered s2 and moved backwards only.
	assert.Equal(t, 0, got[1].ConversionRate)
	assert.Equal(t, 0, got[2].ConversionRate)
}

func TestBuildStageMetricsHistoryOnlyTenant(t *testing.T) {
	// Every lead converted away; counts are empty but history remains.
	history := []StageHistoryEntry{
		{LeadID: "l1", FromStageID: "", ToStageID: "s1", ChangedAt: ts(1, 0)},
		{LeadID: "l1", FromStageID: "s1", ToStageID: "s3", ChangedAt: ts(2, 0)},
	}

	got := BuildStageMetrics(testStages(), map[string]int{}, history)

	require.Len(t, got, 3)
	assert.Equal(t, 100, got[0].ConversionRate)
}

func TestBuildStageMetricsUnsortedHistory(t *testing.T) {
	history := []StageHistoryEntry{
		{LeadID: "l1", FromStageID: "s1", ToStageID: "s2", ChangedAt: ts(3, 0)},
		{LeadID: "l1", FromStageID: "", ToStageID: "s1", ChangedAt: ts(1, 0)},
	}

	got := BuildStageMetrics(testStages(), map[string]int{"s2": 1}, history)

	assert.Equal(t, "2 days", got[0].AvgTimeInStage)
}
