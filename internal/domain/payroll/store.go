package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const payslipColumns = `
    id, employee_id, period_start, period_end,
    base_salary, total_allowances, total_overtime, total_deductions, net_salary,
    currency, status, COALESCE(file_url, ''), created_at, updated_at`

func scanPayslip(row pgx.Row) (*Payslip, error) {
	var p Payslip
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.PeriodStart, &p.PeriodEnd,
		&p.BaseSalary, &p.TotalAllowances, &p.TotalOvertime, &p.TotalDeductions, &p.NetSalary,
		&p.Currency, &p.Status, &p.FileURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPayslipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Get(ctx context.Context, tenantID, payslipID string) (*Payslip, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+payslipColumns+`
    FROM payslips
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, payslipID)
	return scanPayslip(row)
}

func (s *Store) Count(ctx context.Context, tenantID, employeeID string) (int, error) {
	query := `SELECT COUNT(1) FROM payslips WHERE tenant_id = $1`
	args := []any{tenantID}
	if employeeID != "" {
		query += ` AND employee_id = $2`
		args = append(args, employeeID)
	}
	var count int
	err := s.DB.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (s *Store) List(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Payslip, error) {
	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE tenant_id = $1`
	args := []any{tenantID}
	if employeeID != "" {
		query += ` AND employee_id = $2`
		args = append(args, employeeID)
		query += ` ORDER BY period_start DESC LIMIT $3 OFFSET $4`
	} else {
		query += ` ORDER BY period_start DESC LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, tenantID string, p Payslip) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payslips (
      tenant_id, employee_id, period_start, period_end,
      base_salary, total_allowances, total_overtime, total_deductions, net_salary,
      currency, status
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING id
  `, tenantID, p.EmployeeID, p.PeriodStart, p.PeriodEnd,
		p.BaseSalary, p.TotalAllowances, p.TotalOvertime, p.TotalDeductions, p.NetSalary,
		p.Currency, StatusDraft).Scan(&id)
	return id, err
}

// UpdateAmounts writes all four constituent amounts and the recomputed net in
// a single statement so the invariant never holds partially. Paid payslips
// are excluded by the status guard.
func (s *Store) UpdateAmounts(ctx context.Context, tenantID, payslipID string, allowances, overtime, deductions, net float64) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payslips
    SET total_allowances = $3, total_overtime = $4, total_deductions = $5, net_salary = $6, updated_at = now()
    WHERE tenant_id = $1 AND id = $2 AND status <> $7
  `, tenantID, payslipID, allowances, overtime, deductions, net, StatusPaid)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatus moves a payslip between statuses. The current-status guard in
// the WHERE clause makes concurrent submissions lose cleanly.
func (s *Store) UpdateStatus(ctx context.Context, tenantID, payslipID, current, target string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payslips
    SET status = $3, updated_at = now()
    WHERE tenant_id = $1 AND id = $2 AND status = $4
  `, tenantID, payslipID, target, current)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) UpdateFileURL(ctx context.Context, tenantID, payslipID, fileURL string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE payslips SET file_url = $3, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, payslipID, fileURL)
	return err
}

// RegisterRows returns the tenant-wide payroll register for periods
// overlapping the given range.
func (s *Store) RegisterRows(ctx context.Context, tenantID string, from, to time.Time) ([]RegisterRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.employee_id, COALESCE(e.employee_number, ''), e.first_name, e.last_name,
           p.period_start, p.period_end,
           p.base_salary, p.total_allowances, p.total_overtime, p.total_deductions, p.net_salary,
           p.currency, p.status
    FROM payslips p
    JOIN employees e ON p.employee_id = e.id
    WHERE p.tenant_id = $1 AND p.period_start <= $3 AND p.period_end >= $2
    ORDER BY e.last_name, e.first_name, p.period_start
  `, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RegisterRow
	for rows.Next() {
		var r RegisterRow
		if err := rows.Scan(
			&r.EmployeeID, &r.EmployeeNumber, &r.FirstName, &r.LastName,
			&r.PeriodStart, &r.PeriodEnd,
			&r.BaseSalary, &r.Allowances, &r.Overtime, &r.Deductions, &r.Net,
			&r.Currency, &r.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
