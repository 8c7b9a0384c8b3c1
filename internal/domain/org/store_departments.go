package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListDepartments(ctx context.Context, tenantID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(parent_department_id::text, ''), COALESCE(manager_id::text, ''), created_at
    FROM departments
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.ParentID, &dep.ManagerID, &dep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

func (s *Store) GetDepartment(ctx context.Context, tenantID, departmentID string) (*Department, error) {
	var dep Department
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(parent_department_id::text, ''), COALESCE(manager_id::text, ''), created_at
    FROM departments
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, departmentID).Scan(&dep.ID, &dep.Name, &dep.ParentID, &dep.ManagerID, &dep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dep, nil
}

func (s *Store) CreateDepartment(ctx context.Context, tenantID string, dep Department) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (tenant_id, name, parent_department_id, manager_id)
    VALUES ($1, $2, NULLIF($3,'')::uuid, NULLIF($4,'')::uuid)
    RETURNING id
  `, tenantID, dep.Name, dep.ParentID, dep.ManagerID).Scan(&id)
	return id, err
}

func (s *Store) UpdateDepartment(ctx context.Context, tenantID, departmentID string, dep Department) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments
    SET name = $3, parent_department_id = NULLIF($4,'')::uuid, manager_id = NULLIF($5,'')::uuid
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, departmentID, dep.Name, dep.ParentID, dep.ManagerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DepartmentHasEmployees(ctx context.Context, tenantID, departmentID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE tenant_id = $1 AND department_id = $2
  `, tenantID, departmentID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) DeleteDepartment(ctx context.Context, tenantID, departmentID string) error {
	_, err := s.DB.Exec(ctx, `
    DELETE FROM departments WHERE tenant_id = $1 AND id = $2
  `, tenantID, departmentID)
	return err
}
