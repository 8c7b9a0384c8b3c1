package payroll

import (
	"context"
	"time"

	"hrcrm/internal/domain/org"
	"hrcrm/internal/domain/timesheet"
	"hrcrm/internal/platform/metrics"
)

// ContractSource yields the contract in force for an employee on a date.
type ContractSource interface {
	ActiveContract(ctx context.Context, tenantID, employeeID string, onDate any) (*org.Contract, error)
}

// WorkLogSource yields the approved work-log entries for a payslip period.
type WorkLogSource interface {
	ListApprovedForPeriod(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time) ([]timesheet.WorkLogEntry, error)
}

type Service struct {
	store     *Store
	contracts ContractSource
	workLogs  WorkLogSource
}

func NewService(store *Store, contracts ContractSource, workLogs WorkLogSource) *Service {
	return &Service{store: store, contracts: contracts, workLogs: workLogs}
}

func (s *Service) Get(ctx context.Context, tenantID, payslipID string) (*Payslip, error) {
	return s.store.Get(ctx, tenantID, payslipID)
}

func (s *Service) Count(ctx context.Context, tenantID, employeeID string) (int, error) {
	return s.store.Count(ctx, tenantID, employeeID)
}

func (s *Service) List(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Payslip, error) {
	return s.store.List(ctx, tenantID, employeeID, limit, offset)
}

// Create builds a draft payslip for the employee and period: the contract is
// read once, overtime derives from the approved work logs, and the net is
// computed from the full set of amounts before anything is written.
func (s *Service) Create(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time, allowances, deductions float64) (*Payslip, error) {
	if allowances < 0 {
		return nil, &ValidationError{Field: "totalAllowances", Reason: "must not be negative"}
	}
	if deductions < 0 {
		return nil, &ValidationError{Field: "totalDeductions", Reason: "must not be negative"}
	}

	contract, err := s.contracts.ActiveContract(ctx, tenantID, employeeID, periodStart)
	if err != nil {
		if err == org.ErrNotFound {
			return nil, ErrNoContract
		}
		return nil, err
	}

	entries, err := s.workLogs.ListApprovedForPeriod(ctx, tenantID, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	overtime, err := ComputeOvertime(entries, contract.BaseSalary)
	if err != nil {
		return nil, err
	}

	payslip := Payslip{
		EmployeeID:      employeeID,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		BaseSalary:      contract.BaseSalary,
		TotalAllowances: allowances,
		TotalOvertime:   overtime,
		TotalDeductions: deductions,
		NetSalary:       ComputeNet(contract.BaseSalary, allowances, overtime, deductions),
		Currency:        contract.Currency,
		Status:          StatusDraft,
	}

	id, err := s.store.Create(ctx, tenantID, payslip)
	if err != nil {
		return nil, err
	}
	payslip.ID = id
	return &payslip, nil
}

// Recompute re-reads the approved work logs, applies the given allowances
// and deductions, and writes all amounts plus the derived net atomically.
func (s *Service) Recompute(ctx context.Context, tenantID, payslipID string, allowances, deductions float64) (*Payslip, error) {
	if allowances < 0 {
		return nil, &ValidationError{Field: "totalAllowances", Reason: "must not be negative"}
	}
	if deductions < 0 {
		return nil, &ValidationError{Field: "totalDeductions", Reason: "must not be negative"}
	}

	payslip, err := s.store.Get(ctx, tenantID, payslipID)
	if err != nil {
		return nil, err
	}
	if payslip.Status == StatusPaid {
		return nil, ErrPayslipImmutable
	}

	entries, err := s.workLogs.ListApprovedForPeriod(ctx, tenantID, payslip.EmployeeID, payslip.PeriodStart, payslip.PeriodEnd)
	if err != nil {
		return nil, err
	}
	overtime, err := ComputeOvertime(entries, payslip.BaseSalary)
	if err != nil {
		return nil, err
	}

	net := ComputeNet(payslip.BaseSalary, allowances, overtime, deductions)
	updated, err := s.store.UpdateAmounts(ctx, tenantID, payslipID, allowances, overtime, deductions, net)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrPayslipImmutable
	}

	payslip.TotalAllowances = allowances
	payslip.TotalOvertime = overtime
	payslip.TotalDeductions = deductions
	payslip.NetSalary = net
	return payslip, nil
}

// TransitionStatus enforces the draft -> approved -> paid machine. A
// same-status request succeeds without touching the row.
func (s *Service) TransitionStatus(ctx context.Context, tenantID, payslipID, target string) (*Payslip, error) {
	payslip, err := s.store.Get(ctx, tenantID, payslipID)
	if err != nil {
		return nil, err
	}

	noop, err := ValidateTransition(payslip.Status, target)
	if err != nil {
		return nil, err
	}
	if noop {
		return payslip, nil
	}

	updated, err := s.store.UpdateStatus(ctx, tenantID, payslipID, payslip.Status, target)
	if err != nil {
		return nil, err
	}
	if !updated {
		// A concurrent transition won; report against the fresh state.
		fresh, freshErr := s.store.Get(ctx, tenantID, payslipID)
		if freshErr != nil {
			return nil, freshErr
		}
		return nil, &InvalidTransitionError{From: fresh.Status, To: target}
	}

	if target == StatusPaid {
		metrics.RecordPayslipFinalized()
	}
	payslip.Status = target
	return payslip, nil
}

func (s *Service) Register(ctx context.Context, tenantID string, from, to time.Time) ([]RegisterRow, error) {
	return s.store.RegisterRows(ctx, tenantID, from, to)
}
