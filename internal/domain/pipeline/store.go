package pipeline

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListStages(ctx context.Context, tenantID string) ([]Stage, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, order_index, created_at
    FROM lead_stages
    WHERE tenant_id = $1
    ORDER BY order_index
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Stage
	for rows.Next() {
		var stage Stage
		if err := rows.Scan(&stage.ID, &stage.Name, &stage.OrderIndex, &stage.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, stage)
	}
	return out, rows.Err()
}

func (s *Store) GetStage(ctx context.Context, tenantID, stageID string) (*Stage, error) {
	var stage Stage
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, order_index, created_at
    FROM lead_stages
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, stageID).Scan(&stage.ID, &stage.Name, &stage.OrderIndex, &stage.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

func (s *Store) CreateStage(ctx context.Context, tenantID, name string, orderIndex int) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO lead_stages (tenant_id, name, order_index)
    VALUES ($1, $2, $3)
    RETURNING id
  `, tenantID, name, orderIndex).Scan(&id)
	return id, err
}

func (s *Store) UpdateStage(ctx context.Context, tenantID, stageID, name string, orderIndex int) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE lead_stages SET name = $3, order_index = $4
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, stageID, name, orderIndex)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) StageHasLeads(ctx context.Context, tenantID, stageID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM leads WHERE tenant_id = $1 AND current_stage_id = $2
  `, tenantID, stageID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) DeleteStage(ctx context.Context, tenantID, stageID string) error {
	_, err := s.DB.Exec(ctx, `
    DELETE FROM lead_stages WHERE tenant_id = $1 AND id = $2
  `, tenantID, stageID)
	return err
}

func (s *Store) ListSources(ctx context.Context, tenantID string) ([]Source, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name FROM lead_sources WHERE tenant_id = $1 ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.Name); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *Store) CreateSource(ctx context.Context, tenantID, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO lead_sources (tenant_id, name) VALUES ($1, $2) RETURNING id
  `, tenantID, name).Scan(&id)
	return id, err
}

const leadColumns = `
    id, company_name, COALESCE(contact_name, ''), COALESCE(email, ''), COALESCE(phone, ''),
    COALESCE(source_id::text, ''), COALESCE(current_stage_id::text, ''), status,
    COALESCE(assigned_to::text, ''), is_converted, created_at, updated_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.CompanyName, &lead.ContactName, &lead.Email, &lead.Phone,
		&lead.SourceID, &lead.CurrentStageID, &lead.Status,
		&lead.AssignedTo, &lead.IsConverted, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (s *Store) GetLead(ctx context.Context, tenantID, leadID string) (*Lead, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+leadColumns+`
    FROM leads
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, leadID)
	return scanLead(row)
}

func (s *Store) CountLeads(ctx context.Context, tenantID, stageID string) (int, error) {
	query := `SELECT COUNT(1) FROM leads WHERE tenant_id = $1`
	args := []any{tenantID}
	if stageID != "" {
		query += ` AND current_stage_id = $2`
		args = append(args, stageID)
	}
	var count int
	err := s.DB.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (s *Store) ListLeads(ctx context.Context, tenantID, stageID string, limit, offset int) ([]Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = $1`
	args := []any{tenantID}
	if stageID != "" {
		query += ` AND current_stage_id = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, stageID)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *lead)
	}
	return out, rows.Err()
}

func (s *Store) CreateLead(ctx context.Context, tenantID string, lead Lead) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leads (
      tenant_id, company_name, contact_name, email, phone,
      source_id, current_stage_id, status, assigned_to
    )
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,'')::uuid,NULLIF($7,'')::uuid,$8,NULLIF($9,'')::uuid)
    RETURNING id
  `, tenantID, lead.CompanyName, lead.ContactName, lead.Email, lead.Phone,
		lead.SourceID, lead.CurrentStageID, lead.Status, lead.AssignedTo).Scan(&id)
	return id, err
}

func (s *Store) UpdateLead(ctx context.Context, tenantID, leadID string, lead Lead) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leads
    SET company_name = $3, contact_name = $4, email = $5, phone = $6,
        source_id = NULLIF($7,'')::uuid, status = $8, updated_at = now()
    WHERE tenant_id = $1 AND id = $2 AND is_converted = false
  `, tenantID, leadID, lead.CompanyName, lead.ContactName, lead.Email, lead.Phone,
		lead.SourceID, lead.Status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) AssignLead(ctx context.Context, tenantID, leadID, userID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leads SET assigned_to = NULLIF($3,'')::uuid, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, leadID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ExecuteTransition is the transactional pair of writes behind a stage move.
// The row lock plus re-check turns a lost race into StaleStageError instead
// of a silently overwritten stage.
func (s *Store) ExecuteTransition(ctx context.Context, tenantID, leadID, fromStageID, toStageID, actorID, notes string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx, `
    SELECT COALESCE(current_stage_id::text, '')
    FROM leads
    WHERE tenant_id = $1 AND id = $2
    FOR UPDATE
  `, tenantID, leadID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLeadNotFound
	}
	if err != nil {
		return err
	}
	if current != fromStageID {
		return &StaleStageError{LeadID: leadID, ExpectedStageID: fromStageID, CurrentStageID: current}
	}

	if _, err := tx.Exec(ctx, `
    UPDATE leads SET current_stage_id = $3, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, leadID, toStageID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO lead_stage_history (tenant_id, lead_id, from_stage_id, to_stage_id, changed_by, notes)
    VALUES ($1, $2, NULLIF($3,'')::uuid, $4, NULLIF($5,'')::uuid, $6)
  `, tenantID, leadID, fromStageID, toStageID, actorID, notes); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) StageCounts(ctx context.Context, tenantID string) (map[string]int, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT current_stage_id::text, COUNT(1)
    FROM leads
    WHERE tenant_id = $1 AND current_stage_id IS NOT NULL
    GROUP BY current_stage_id
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var stageID string
		var count int
		if err := rows.Scan(&stageID, &count); err != nil {
			return nil, err
		}
		counts[stageID] = count
	}
	return counts, rows.Err()
}

func (s *Store) ListHistory(ctx context.Context, tenantID string, rng DateRange) ([]StageHistoryEntry, error) {
	query := `
    SELECT id, lead_id, COALESCE(from_stage_id::text, ''), to_stage_id::text,
           COALESCE(changed_by::text, ''), COALESCE(notes, ''), changed_at
    FROM lead_stage_history
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if rng.From != nil {
		args = append(args, *rng.From)
		query += ` AND changed_at >= $2`
	}
	if rng.To != nil {
		args = append(args, *rng.To)
		if rng.From != nil {
			query += ` AND changed_at <= $3`
		} else {
			query += ` AND changed_at <= $2`
		}
	}
	query += ` ORDER BY changed_at`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StageHistoryEntry
	for rows.Next() {
		var entry StageHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.LeadID, &entry.FromStageID, &entry.ToStageID,
			&entry.ChangedBy, &entry.Notes, &entry.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) ListHistoryForLead(ctx context.Context, tenantID, leadID string) ([]StageHistoryEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, lead_id, COALESCE(from_stage_id::text, ''), to_stage_id::text,
           COALESCE(changed_by::text, ''), COALESCE(notes, ''), changed_at
    FROM lead_stage_history
    WHERE tenant_id = $1 AND lead_id = $2
    ORDER BY changed_at
  `, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StageHistoryEntry
	for rows.Next() {
		var entry StageHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.LeadID, &entry.FromStageID, &entry.ToStageID,
			&entry.ChangedBy, &entry.Notes, &entry.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) ConvertLead(ctx context.Context, tenantID, leadID string, opp Opportunity) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE leads SET is_converted = true, status = $3, updated_at = now()
    WHERE tenant_id = $1 AND id = $2 AND is_converted = false
  `, tenantID, leadID, LeadStatusQualified)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() == 0 {
		return "", ErrLeadAlreadyConverted
	}

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO opportunities (tenant_id, lead_id, name, amount, currency, status, expected_close_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, tenantID, leadID, opp.Name, opp.Amount, opp.Currency, OpportunityStatusOpen, opp.ExpectedCloseDate).Scan(&id); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

const opportunityColumns = `
    id, lead_id, name, amount, COALESCE(currency, ''), status, expected_close_date, created_at`

func scanOpportunity(row pgx.Row) (*Opportunity, error) {
	var opp Opportunity
	err := row.Scan(&opp.ID, &opp.LeadID, &opp.Name, &opp.Amount, &opp.Currency,
		&opp.Status, &opp.ExpectedCloseDate, &opp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

func (s *Store) GetOpportunity(ctx context.Context, tenantID, opportunityID string) (*Opportunity, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+opportunityColumns+`
    FROM opportunities
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, opportunityID)
	return scanOpportunity(row)
}

func (s *Store) CountOpportunities(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM opportunities WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

func (s *Store) ListOpportunities(ctx context.Context, tenantID, status string, limit, offset int) ([]Opportunity, error) {
	query := `SELECT ` + opportunityColumns + ` FROM opportunities WHERE tenant_id = $1`
	args := []any{tenantID}
	if status != "" {
		query += ` AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, status)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *opp)
	}
	return out, rows.Err()
}

func (s *Store) UpdateOpportunity(ctx context.Context, tenantID, opportunityID string, opp Opportunity) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE opportunities
    SET name = $3, amount = $4, currency = $5, status = $6, expected_close_date = $7
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, opportunityID, opp.Name, opp.Amount, opp.Currency, opp.Status, opp.ExpectedCloseDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
