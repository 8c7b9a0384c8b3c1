package timesheet

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("work log entry not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const workLogColumns = `
    id, employee_id, log_date, start_time, end_time, break_minutes, multiplier,
    status, COALESCE(notes, ''), COALESCE(decided_by::text, ''), decided_at, created_at`

func scanWorkLog(row pgx.Row) (*WorkLogEntry, error) {
	var entry WorkLogEntry
	err := row.Scan(
		&entry.ID, &entry.EmployeeID, &entry.Date, &entry.StartTime, &entry.EndTime,
		&entry.BreakMinutes, &entry.Multiplier, &entry.Status, &entry.Notes,
		&entry.DecidedBy, &entry.DecidedAt, &entry.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) Get(ctx context.Context, tenantID, entryID string) (*WorkLogEntry, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+workLogColumns+`
    FROM work_logs
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, entryID)
	return scanWorkLog(row)
}

func (s *Store) Count(ctx context.Context, tenantID, employeeID, status string) (int, error) {
	query := `SELECT COUNT(1) FROM work_logs WHERE tenant_id = $1`
	args := []any{tenantID}
	if employeeID != "" {
		args = append(args, employeeID)
		query += ` AND employee_id = $2`
	}
	if status != "" {
		args = append(args, status)
		if employeeID != "" {
			query += ` AND status = $3`
		} else {
			query += ` AND status = $2`
		}
	}
	var count int
	err := s.DB.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (s *Store) List(ctx context.Context, tenantID, employeeID, status string, limit, offset int) ([]WorkLogEntry, error) {
	query := `SELECT ` + workLogColumns + ` FROM work_logs WHERE tenant_id = $1`
	args := []any{tenantID}
	if employeeID != "" {
		args = append(args, employeeID)
		query += ` AND employee_id = $2`
	}
	if status != "" {
		args = append(args, status)
		if employeeID != "" {
			query += ` AND status = $3`
		} else {
			query += ` AND status = $2`
		}
	}
	query += ` ORDER BY log_date DESC, created_at DESC`
	args = append(args, limit, offset)
	switch len(args) {
	case 3:
		query += ` LIMIT $2 OFFSET $3`
	case 4:
		query += ` LIMIT $3 OFFSET $4`
	default:
		query += ` LIMIT $4 OFFSET $5`
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WorkLogEntry
	for rows.Next() {
		entry, err := scanWorkLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

// ListApprovedForPeriod returns the approved entries feeding a payslip
// computation.
func (s *Store) ListApprovedForPeriod(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time) ([]WorkLogEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+workLogColumns+`
    FROM work_logs
    WHERE tenant_id = $1 AND employee_id = $2 AND status = $3
      AND log_date >= $4 AND log_date <= $5
    ORDER BY log_date
  `, tenantID, employeeID, StatusApproved, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WorkLogEntry
	for rows.Next() {
		entry, err := scanWorkLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, tenantID string, entry WorkLogEntry) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO work_logs (
      tenant_id, employee_id, log_date, start_time, end_time, break_minutes, multiplier, status, notes
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, tenantID, entry.EmployeeID, entry.Date, entry.StartTime, entry.EndTime,
		entry.BreakMinutes, entry.Multiplier, StatusPending, entry.Notes).Scan(&id)
	return id, err
}

// UpdateStatus performs the pending -> approved/rejected move. The status
// guard in the WHERE clause keeps concurrent decisions from overwriting each
// other.
func (s *Store) UpdateStatus(ctx context.Context, tenantID, entryID, target, decidedBy string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE work_logs
    SET status = $3, decided_by = $4, decided_at = now()
    WHERE tenant_id = $1 AND id = $2 AND status = $5
  `, tenantID, entryID, target, decidedBy, StatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
