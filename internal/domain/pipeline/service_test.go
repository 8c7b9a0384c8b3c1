package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	StoreAPI

	leads       map[string]*Lead
	stages      map[string]*Stage
	transitions int
	history     []StageHistoryEntry
	converted   []Opportunity
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:  map[string]*Lead{},
		stages: map[string]*Stage{},
	}
}

func (f *fakeStore) GetLead(_ context.Context, _, leadID string) (*Lead, error) {
	lead, ok := f.leads[leadID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

func (f *fakeStore) GetStage(_ context.Context, _, stageID string) (*Stage, error) {
	stage, ok := f.stages[stageID]
	if !ok {
		return nil, ErrStageNotFound
	}
	return stage, nil
}

func (f *fakeStore) ExecuteTransition(_ context.Context, _, leadID, fromStageID, toStageID, actorID, notes string) error {
	lead, ok := f.leads[leadID]
	if !ok {
		return ErrLeadNotFound
	}
	if lead.CurrentStageID != fromStageID {
		return &StaleStageError{LeadID: leadID, ExpectedStageID: fromStageID, CurrentStageID: lead.CurrentStageID}
	}
	lead.CurrentStageID = toStageID
	f.transitions++
	f.history = append(f.history, StageHistoryEntry{
		LeadID:      leadID,
		FromStageID: fromStageID,
		ToStageID:   toStageID,
		ChangedBy:   actorID,
		Notes:       notes,
	})
	return nil
}

func (f *fakeStore) ConvertLead(_ context.Context, _, leadID string, opp Opportunity) (string, error) {
	lead, ok := f.leads[leadID]
	if !ok {
		return "", ErrLeadNotFound
	}
	if lead.IsConverted {
		return "", ErrLeadAlreadyConverted
	}
	lead.IsConverted = true
	f.converted = append(f.converted, opp)
	return "opp-1", nil
}

func (f *fakeStore) ListStages(_ context.Context, _ string) ([]Stage, error) {
	out := make([]Stage, 0, len(f.stages))
	for _, stage := range f.stages {
		out = append(out, *stage)
	}
	return out, nil
}

func (f *fakeStore) StageCounts(_ context.Context, _ string) (map[string]int, error) {
	counts := map[string]int{}
	for _, lead := range f.leads {
		if lead.CurrentStageID != "" {
			counts[lead.CurrentStageID]++
		}
	}
	return counts, nil
}

func (f *fakeStore) ListHistory(_ context.Context, _ string, _ DateRange) ([]StageHistoryEntry, error) {
	return f.history, nil
}

func (f *fakeStore) StageHasLeads(_ context.Context, _, stageID string) (bool, error) {
	for _, lead := range f.leads {
		if lead.CurrentStageID == stageID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DeleteStage(_ context.Context, _, stageID string) error {
	delete(f.stages, stageID)
	return nil
}

func seededStore() *fakeStore {
	store := newFakeStore()
	store.stages["s1"] = &Stage{ID: "s1", Name: "New", OrderIndex: 1}
	store.stages["s2"] = &Stage{ID: "s2", Name: "Qualified", OrderIndex: 2}
	store.leads["l1"] = &Lead{ID: "l1", CompanyName: "Acme", CurrentStageID: "s1", Status: LeadStatusNew}
	return store
}

func TestTransitionStage(t *testing.T) {
	store := seededStore()
	svc := NewService(store)

	err := svc.TransitionStage(context.Background(), "t1", "l1", "s1", "s2", "u1", "called them")

	require.NoError(t, err)
	assert.Equal(t, 1, store.transitions)
	assert.Equal(t, "s2", store.leads["l1"].CurrentStageID)
	require.Len(t, store.history, 1)
	assert.Equal(t, "called them", store.history[0].Notes)
}

func TestTransitionStageStale(t *testing.T) {
	store := seededStore()
	store.leads["l1"].CurrentStageID = "s2"
	svc := NewService(store)

	err := svc.TransitionStage(context.Background(), "t1", "l1", "s1", "s2", "u1", "")

	var stale *StaleStageError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "s2", stale.CurrentStageID)
	assert.Equal(t, "s1", stale.ExpectedStageID)
	assert.Equal(t, 0, store.transitions)
	assert.Empty(t, store.history)
}

func TestTransitionStageSameStageIsNoop(t *testing.T) {
	store := seededStore()
	svc := NewService(store)

	err := svc.TransitionStage(context.Background(), "t1", "l1", "s1", "s1", "u1", "")

	require.NoError(t, err)
	assert.Equal(t, 0, store.transitions)
	assert.Empty(t, store.history)
}

func TestTransitionStageUnknownTarget(t *testing.T) {
	store := seededStore()
	svc := NewService(store)

	err := svc.TransitionStage(context.Background(), "t1", "l1", "s1", "missing", "u1", "")

	require.ErrorIs(t, err, ErrStageNotFound)
	assert.Equal(t, 0, store.transitions)
}

func TestTransitionStageUnknownLead(t *testing.T) {
	svc := NewService(seededStore())

	err := svc.TransitionStage(context.Background(), "t1", "missing", "s1", "s2", "u1", "")

	require.ErrorIs(t, err, ErrLeadNotFound)
}

func TestComputeStageMetricsEmptyTenant(t *testing.T) {
	store := newFakeStore()
	store.stages["s1"] = &Stage{ID: "s1", Name: "New", OrderIndex: 1}
	svc := NewService(store)

	got, err := svc.ComputeStageMetrics(context.Background(), "t1", DateRange{})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestConvertLead(t *testing.T) {
	store := seededStore()
	svc := NewService(store)

	id, err := svc.ConvertLead(context.Background(), "t1", "l1", Opportunity{Amount: 5000, Currency: "EUR"})

	require.NoError(t, err)
	assert.Equal(t, "opp-1", id)
	require.Len(t, store.converted, 1)
	assert.Equal(t, "Acme", store.converted[0].Name)
	assert.True(t, store.leads["l1"].IsConverted)
}

func TestConvertLeadTwice(t *testing.T) {
	store := seededStore()
	store.leads["l1"].IsConverted = true
	svc := NewService(store)

	_, err := svc.ConvertLead(context.Background(), "t1", "l1", Opportunity{})

	require.ErrorIs(t, err, ErrLeadAlreadyConverted)
	assert.Empty(t, store.converted)
}

func TestDeleteStageInUse(t *testing.T) {
	store := seededStore()
	svc := NewService(store)

	err := svc.DeleteStage(context.Background(), "t1", "s1")
	require.ErrorIs(t, err, ErrStageInUse)

	err = svc.DeleteStage(context.Background(), "t1", "s2")
	require.NoError(t, err)
	_, ok := store.stages["s2"]
	assert.False(t, ok)
}
