package pipeline

import "context"

type StoreAPI interface {
	ListStages(ctx context.Context, tenantID string) ([]Stage, error)
	GetStage(ctx context.Context, tenantID, stageID string) (*Stage, error)
	CreateStage(ctx context.Context, tenantID, name string, orderIndex int) (string, error)
	UpdateStage(ctx context.Context, tenantID, stageID, name string, orderIndex int) (bool, error)
	StageHasLeads(ctx context.Context, tenantID, stageID string) (bool, error)
	DeleteStage(ctx context.Context, tenantID, stageID string) error

	ListSources(ctx context.Context, tenantID string) ([]Source, error)
	CreateSource(ctx context.Context, tenantID, name string) (string, error)

	GetLead(ctx context.Context, tenantID, leadID string) (*Lead, error)
	CountLeads(ctx context.Context, tenantID, stageID string) (int, error)
	ListLeads(ctx context.Context, tenantID, stageID string, limit, offset int) ([]Lead, error)
	CreateLead(ctx context.Context, tenantID string, lead Lead) (string, error)
	UpdateLead(ctx context.Context, tenantID, leadID string, lead Lead) (bool, error)
	AssignLead(ctx context.Context, tenantID, leadID, userID string) (bool, error)

	// ExecuteTransition atomically moves the lead and appends the history
	// row. The from-stage guard is re-checked inside the transaction; a
	// mismatch fails with StaleStageError and writes nothing.
	ExecuteTransition(ctx context.Context, tenantID, leadID, fromStageID, toStageID, actorID, notes string) error

	StageCounts(ctx context.Context, tenantID string) (map[string]int, error)
	ListHistory(ctx context.Context, tenantID string, rng DateRange) ([]StageHistoryEntry, error)
	ListHistoryForLead(ctx context.Context, tenantID, leadID string) ([]StageHistoryEntry, error)

	// ConvertLead marks the lead converted and creates its opportunity in
	// one transaction.
	ConvertLead(ctx context.Context, tenantID, leadID string, opp Opportunity) (string, error)
	GetOpportunity(ctx context.Context, tenantID, opportunityID string) (*Opportunity, error)
	CountOpportunities(ctx context.Context, tenantID string) (int, error)
	ListOpportunities(ctx context.Context, tenantID, status string, limit, offset int) ([]Opportunity, error)
	UpdateOpportunity(ctx context.Context, tenantID, opportunityID string, opp Opportunity) (bool, error)
}
