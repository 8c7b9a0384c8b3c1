package payroll

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"hrcrm/internal/domain/org"
)

// GeneratePayslipPDF renders the payslip to disk and records its path on the
// row. The caller provides the employee so name and email render without a
// cross-domain join here.
func (s *Service) GeneratePayslipPDF(ctx context.Context, tenantID, payslipID string, employee *org.Employee, storageDir string) (string, error) {
	payslip, err := s.store.Get(ctx, tenantID, payslipID)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(storageDir, "payslips")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, payslipID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", employee.FirstName, employee.LastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", employee.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", payslip.PeriodStart.Format("2006-01-02"), payslip.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Base salary: %.2f %s", payslip.BaseSalary, payslip.Currency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Allowances: %.2f %s", payslip.TotalAllowances, payslip.Currency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Overtime: %.2f %s", payslip.TotalOvertime, payslip.Currency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Deductions: %.2f %s", payslip.TotalDeductions, payslip.Currency))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net salary: %.2f %s", payslip.NetSalary, payslip.Currency))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if err := s.store.UpdateFileURL(ctx, tenantID, payslipID, filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
