package org

import "context"

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetEmployee(ctx context.Context, tenantID, employeeID string) (*Employee, error) {
	return s.store.GetEmployee(ctx, tenantID, employeeID)
}

func (s *Service) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (*Employee, error) {
	return s.store.GetEmployeeByUserID(ctx, tenantID, userID)
}

func (s *Service) CountEmployees(ctx context.Context, tenantID string) (int, error) {
	return s.store.CountEmployees(ctx, tenantID)
}

func (s *Service) ListEmployees(ctx context.Context, tenantID string, limit, offset int) ([]Employee, error) {
	return s.store.ListEmployees(ctx, tenantID, limit, offset)
}

func (s *Service) CreateEmployee(ctx context.Context, tenantID string, emp Employee) (string, error) {
	return s.store.CreateEmployee(ctx, tenantID, emp)
}

func (s *Service) UpdateEmployee(ctx context.Context, tenantID, employeeID string, emp Employee) (bool, error) {
	return s.store.UpdateEmployee(ctx, tenantID, employeeID, emp)
}

func (s *Service) ListDepartments(ctx context.Context, tenantID string) ([]Department, error) {
	return s.store.ListDepartments(ctx, tenantID)
}

// DepartmentOptions loads the tenant's departments and flattens them for
// selection controls.
func (s *Service) DepartmentOptions(ctx context.Context, tenantID string) ([]DepartmentOption, error) {
	departments, err := s.store.ListDepartments(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return FlattenDepartments(departments)
}

func (s *Service) GetDepartment(ctx context.Context, tenantID, departmentID string) (*Department, error) {
	return s.store.GetDepartment(ctx, tenantID, departmentID)
}

func (s *Service) CreateDepartment(ctx context.Context, tenantID string, dep Department) (string, error) {
	return s.store.CreateDepartment(ctx, tenantID, dep)
}

func (s *Service) UpdateDepartment(ctx context.Context, tenantID, departmentID string, dep Department) (bool, error) {
	return s.store.UpdateDepartment(ctx, tenantID, departmentID, dep)
}

func (s *Service) DepartmentHasEmployees(ctx context.Context, tenantID, departmentID string) (bool, error) {
	return s.store.DepartmentHasEmployees(ctx, tenantID, departmentID)
}

func (s *Service) DeleteDepartment(ctx context.Context, tenantID, departmentID string) error {
	return s.store.DeleteDepartment(ctx, tenantID, departmentID)
}

func (s *Service) ActiveContract(ctx context.Context, tenantID, employeeID string, onDate any) (*Contract, error) {
	return s.store.ActiveContract(ctx, tenantID, employeeID, onDate)
}

func (s *Service) ListContracts(ctx context.Context, tenantID, employeeID string) ([]Contract, error) {
	return s.store.ListContracts(ctx, tenantID, employeeID)
}

func (s *Service) CreateContract(ctx context.Context, tenantID string, c Contract) (string, error) {
	return s.store.CreateContract(ctx, tenantID, c)
}

func (s *Service) CloseContract(ctx context.Context, tenantID, contractID string, endDate any) (bool, error) {
	return s.store.CloseContract(ctx, tenantID, contractID, endDate)
}
