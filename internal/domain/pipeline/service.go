package pipeline

import (
	"context"

	"hrcrm/internal/platform/metrics"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// TransitionStage moves a lead between pipeline stages.
//
// The caller passes the stage it believes the lead is in; if the persisted
// stage differs the move fails with StaleStageError and nothing is written.
// A move onto the current stage is a silent success so drag-and-drop noise
// never lands in the history. The lead update and the history append commit
// together or not at all; persistence errors pass through unmodified.
func (s *Service) TransitionStage(ctx context.Context, tenantID, leadID, fromStageID, toStageID, actorID, notes string) error {
	if fromStageID == toStageID {
		return nil
	}

	lead, err := s.store.GetLead(ctx, tenantID, leadID)
	if err != nil {
		return err
	}
	if lead.CurrentStageID != fromStageID {
		metrics.RecordStaleTransition()
		return &StaleStageError{
			LeadID:          leadID,
			ExpectedStageID: fromStageID,
			CurrentStageID:  lead.CurrentStageID,
		}
	}

	if _, err := s.store.GetStage(ctx, tenantID, toStageID); err != nil {
		return err
	}

	if err := s.store.ExecuteTransition(ctx, tenantID, leadID, fromStageID, toStageID, actorID, notes); err != nil {
		return err
	}
	metrics.RecordStageTransition()
	return nil
}

// ComputeStageMetrics recomputes the per-stage figures from history on every
// call; nothing is cached.
func (s *Service) ComputeStageMetrics(ctx context.Context, tenantID string, rng DateRange) ([]StageMetrics, error) {
	stages, err := s.store.ListStages(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.StageCounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.ListHistory(ctx, tenantID, rng)
	if err != nil {
		return nil, err
	}
	return BuildStageMetrics(stages, counts, history), nil
}

// ConvertLead closes a lead into an opportunity. Conversion is one-way.
func (s *Service) ConvertLead(ctx context.Context, tenantID, leadID string, opp Opportunity) (string, error) {
	lead, err := s.store.GetLead(ctx, tenantID, leadID)
	if err != nil {
		return "", err
	}
	if lead.IsConverted {
		return "", ErrLeadAlreadyConverted
	}
	opp.LeadID = leadID
	if opp.Name == "" {
		opp.Name = lead.CompanyName
	}
	return s.store.ConvertLead(ctx, tenantID, leadID, opp)
}

func (s *Service) ListStages(ctx context.Context, tenantID string) ([]Stage, error) {
	return s.store.ListStages(ctx, tenantID)
}

func (s *Service) CreateStage(ctx context.Context, tenantID, name string, orderIndex int) (string, error) {
	return s.store.CreateStage(ctx, tenantID, name, orderIndex)
}

func (s *Service) UpdateStage(ctx context.Context, tenantID, stageID, name string, orderIndex int) (bool, error) {
	return s.store.UpdateStage(ctx, tenantID, stageID, name, orderIndex)
}

func (s *Service) DeleteStage(ctx context.Context, tenantID, stageID string) error {
	inUse, err := s.store.StageHasLeads(ctx, tenantID, stageID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrStageInUse
	}
	return s.store.DeleteStage(ctx, tenantID, stageID)
}

func (s *Service) ListSources(ctx context.Context, tenantID string) ([]Source, error) {
	return s.store.ListSources(ctx, tenantID)
}

func (s *Service) CreateSource(ctx context.Context, tenantID, name string) (string, error) {
	return s.store.CreateSource(ctx, tenantID, name)
}

func (s *Service) GetLead(ctx context.Context, tenantID, leadID string) (*Lead, error) {
	return s.store.GetLead(ctx, tenantID, leadID)
}

func (s *Service) CountLeads(ctx context.Context, tenantID, stageID string) (int, error) {
	return s.store.CountLeads(ctx, tenantID, stageID)
}

func (s *Service) ListLeads(ctx context.Context, tenantID, stageID string, limit, offset int) ([]Lead, error) {
	return s.store.ListLeads(ctx, tenantID, stageID, limit, offset)
}

func (s *Service) CreateLead(ctx context.Context, tenantID string, lead Lead) (string, error) {
	return s.store.CreateLead(ctx, tenantID, lead)
}

func (s *Service) UpdateLead(ctx context.Context, tenantID, leadID string, lead Lead) (bool, error) {
	return s.store.UpdateLead(ctx, tenantID, leadID, lead)
}

func (s *Service) AssignLead(ctx context.Context, tenantID, leadID, userID string) (bool, error) {
	return s.store.AssignLead(ctx, tenantID, leadID, userID)
}

func (s *Service) ListHistoryForLead(ctx context.Context, tenantID, leadID string) ([]StageHistoryEntry, error) {
	return s.store.ListHistoryForLead(ctx, tenantID, leadID)
}

func (s *Service) GetOpportunity(ctx context.Context, tenantID, opportunityID string) (*Opportunity, error) {
	return s.store.GetOpportunity(ctx, tenantID, opportunityID)
}

func (s *Service) CountOpportunities(ctx context.Context, tenantID string) (int, error) {
	return s.store.CountOpportunities(ctx, tenantID)
}

func (s *Service) ListOpportunities(ctx context.Context, tenantID, status string, limit, offset int) ([]Opportunity, error) {
	return s.store.ListOpportunities(ctx, tenantID, status, limit, offset)
}

func (s *Service) UpdateOpportunity(ctx context.Context, tenantID, opportunityID string, opp Opportunity) (bool, error) {
	return s.store.UpdateOpportunity(ctx, tenantID, opportunityID, opp)
}
