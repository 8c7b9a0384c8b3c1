package org

import "time"

type Employee struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	EmployeeNumber string     `json:"employeeNumber"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Position       string     `json:"position"`
	DepartmentID   string     `json:"departmentId"`
	ManagerID      string     `json:"managerId"`
	BankAccount    string     `json:"bankAccount,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parentId"`
	ManagerID string    `json:"managerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// DepartmentOption is one row of the flattened hierarchy used by selection
// controls. Level 0 is a root department.
type DepartmentOption struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Level       int    `json:"level"`
}

// Contract holds the payroll terms for one employee. A contract is read once
// at the start of a payslip computation and treated as immutable for its
// duration.
type Contract struct {
	ID                  string     `json:"id"`
	EmployeeID          string     `json:"employeeId"`
	BaseSalary          float64    `json:"baseSalary"`
	Currency            string     `json:"currency"`
	StandardDailyHours  int        `json:"standardDailyHours"`
	WorkingDaysPerMonth int        `json:"workingDaysPerMonth"`
	StartDate           time.Time  `json:"startDate"`
	EndDate             *time.Time `json:"endDate,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusTerminated = "terminated"

	DefaultStandardDailyHours  = 8
	DefaultWorkingDaysPerMonth = 22
)
