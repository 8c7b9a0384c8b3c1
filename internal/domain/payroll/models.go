package payroll

import "time"

type Payslip struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employeeId"`
	PeriodStart     time.Time `json:"periodStart"`
	PeriodEnd       time.Time `json:"periodEnd"`
	BaseSalary      float64   `json:"baseSalary"`
	TotalAllowances float64   `json:"totalAllowances"`
	TotalOvertime   float64   `json:"totalOvertime"`
	TotalDeductions float64   `json:"totalDeductions"`
	NetSalary       float64   `json:"netSalary"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	FileURL         string    `json:"fileUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type RegisterRow struct {
	EmployeeID     string
	EmployeeNumber string
	FirstName      string
	LastName       string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	BaseSalary     float64
	Allowances     float64
	Overtime       float64
	Deductions     float64
	Net            float64
	Currency       string
	Status         string
}
