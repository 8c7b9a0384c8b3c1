package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	cryptoutil "hrcrm/internal/platform/crypto"
)

func (s *Store) scanContract(row pgx.Row) (*Contract, error) {
	var c Contract
	var salaryPlain *float64
	var salaryEnc []byte
	err := row.Scan(
		&c.ID, &c.EmployeeID, &salaryPlain, &salaryEnc, &c.Currency,
		&c.StandardDailyHours, &c.WorkingDaysPerMonth,
		&c.StartDate, &c.EndDate, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.BaseSalary = decryptFloatFallback(s.Crypto, salaryEnc, salaryPlain)
	return &c, nil
}

const contractColumns = `
    id, employee_id, base_salary, base_salary_enc, currency,
    standard_daily_hours, working_days_per_month,
    start_date, end_date, created_at`

// ActiveContract returns the employee's contract in force on the given date.
func (s *Store) ActiveContract(ctx context.Context, tenantID, employeeID string, onDate any) (*Contract, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+contractColumns+`
    FROM employee_contracts
    WHERE tenant_id = $1 AND employee_id = $2
      AND start_date <= $3 AND (end_date IS NULL OR end_date >= $3)
    ORDER BY start_date DESC
    LIMIT 1
  `, tenantID, employeeID, onDate)
	return s.scanContract(row)
}

func (s *Store) ListContracts(ctx context.Context, tenantID, employeeID string) ([]Contract, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+contractColumns+`
    FROM employee_contracts
    WHERE tenant_id = $1 AND employee_id = $2
    ORDER BY start_date DESC
  `, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contract
	for rows.Next() {
		c, err := s.scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) CreateContract(ctx context.Context, tenantID string, c Contract) (string, error) {
	salaryPlain, salaryEnc, err := encryptFloatColumn(s.Crypto, c.BaseSalary)
	if err != nil {
		return "", err
	}
	if c.StandardDailyHours <= 0 {
		c.StandardDailyHours = DefaultStandardDailyHours
	}
	if c.WorkingDaysPerMonth <= 0 {
		c.WorkingDaysPerMonth = DefaultWorkingDaysPerMonth
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO employee_contracts (
      tenant_id, employee_id, base_salary, base_salary_enc, currency,
      standard_daily_hours, working_days_per_month, start_date, end_date
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, tenantID, c.EmployeeID, salaryPlain, salaryEnc, c.Currency,
		c.StandardDailyHours, c.WorkingDaysPerMonth, c.StartDate, c.EndDate).Scan(&id)
	return id, err
}

// CloseContract sets the end date so a replacement contract can start.
func (s *Store) CloseContract(ctx context.Context, tenantID, contractID string, endDate any) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee_contracts
    SET end_date = $3
    WHERE tenant_id = $1 AND id = $2 AND end_date IS NULL
  `, tenantID, contractID, endDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func encryptFloatColumn(crypto *cryptoutil.Service, value float64) (*float64, []byte, error) {
	if crypto == nil || !crypto.Configured() {
		return &value, nil, nil
	}
	enc, err := crypto.EncryptFloat(value)
	if err != nil {
		return nil, nil, err
	}
	return nil, enc, nil
}

func decryptFloatFallback(crypto *cryptoutil.Service, enc []byte, plain *float64) float64 {
	if len(enc) == 0 || crypto == nil || !crypto.Configured() {
		if plain != nil {
			return *plain
		}
		return 0
	}
	decrypted, err := crypto.DecryptFloat(enc)
	if err != nil {
		if plain != nil {
			return *plain
		}
		return 0
	}
	return decrypted
}
