package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cryptoutil "hrcrm/internal/platform/crypto"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

const employeeColumns = `
    id,
    COALESCE(user_id::text, ''),
    COALESCE(employee_number, ''),
    first_name, last_name, email,
    COALESCE(phone, ''),
    COALESCE(position, ''),
    COALESCE(department_id::text, ''),
    COALESCE(manager_id::text, ''),
    COALESCE(bank_account, ''),
    bank_account_enc,
    start_date, end_date, status, created_at, updated_at`

func (s *Store) scanEmployee(row pgx.Row) (*Employee, error) {
	var emp Employee
	var bankPlain string
	var bankEnc []byte
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.Phone, &emp.Position, &emp.DepartmentID, &emp.ManagerID,
		&bankPlain, &bankEnc,
		&emp.StartDate, &emp.EndDate, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	emp.BankAccount = decryptStringFallback(s.Crypto, bankEnc, bankPlain)
	return &emp, nil
}

func (s *Store) GetEmployee(ctx context.Context, tenantID, employeeID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID)
	return s.scanEmployee(row)
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1 AND user_id = $2
  `, tenantID, userID)
	return s.scanEmployee(row)
}

func (s *Store) CountEmployees(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM employees WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

func (s *Store) ListEmployees(ctx context.Context, tenantID string, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1
    ORDER BY last_name, first_name
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, tenantID string, emp Employee) (string, error) {
	bankPlain, bankEnc, err := encryptStringColumn(s.Crypto, emp.BankAccount)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO employees (
      tenant_id, employee_number, first_name, last_name, email, phone, position,
      department_id, manager_id, bank_account, bank_account_enc, start_date, status
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,'')::uuid,NULLIF($9,'')::uuid,$10,$11,$12,$13)
    RETURNING id
  `, tenantID, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.Position,
		emp.DepartmentID, emp.ManagerID, bankPlain, bankEnc, emp.StartDate, EmployeeStatusActive).Scan(&id)
	return id, err
}

func (s *Store) UpdateEmployee(ctx context.Context, tenantID, employeeID string, emp Employee) (bool, error) {
	bankPlain, bankEnc, err := encryptStringColumn(s.Crypto, emp.BankAccount)
	if err != nil {
		return false, err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $3, last_name = $4, email = $5, phone = $6, position = $7,
        department_id = NULLIF($8,'')::uuid, manager_id = NULLIF($9,'')::uuid,
        bank_account = $10, bank_account_enc = $11,
        end_date = $12, status = $13, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.Position,
		emp.DepartmentID, emp.ManagerID, bankPlain, bankEnc, emp.EndDate, emp.Status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func encryptStringColumn(crypto *cryptoutil.Service, value string) (string, []byte, error) {
	if crypto == nil || !crypto.Configured() {
		return value, nil, nil
	}
	enc, err := crypto.EncryptString(value)
	if err != nil {
		return "", nil, err
	}
	return "", enc, nil
}

func decryptStringFallback(crypto *cryptoutil.Service, enc []byte, plain string) string {
	if len(enc) == 0 || crypto == nil || !crypto.Configured() {
		return plain
	}
	decrypted, err := crypto.DecryptString(enc)
	if err != nil {
		return plain
	}
	return decrypted
}
