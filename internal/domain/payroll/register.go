package payroll

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var registerHeaders = []string{
	"Employee #", "First name", "Last name", "Period start", "Period end",
	"Base salary", "Allowances", "Overtime", "Deductions", "Net", "Currency", "Status",
}

// WriteRegisterXLSX streams the payroll register as a spreadsheet.
func WriteRegisterXLSX(rows []RegisterRow, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, header := range registerHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for i, row := range rows {
		values := []any{
			row.EmployeeNumber, row.FirstName, row.LastName,
			row.PeriodStart.Format("2006-01-02"), row.PeriodEnd.Format("2006-01-02"),
			row.BaseSalary, row.Allowances, row.Overtime, row.Deductions, row.Net,
			row.Currency, row.Status,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if len(rows) > 0 {
		totalLabelCell, _ := excelize.CoordinatesToCellName(9, len(rows)+2)
		totalCell, _ := excelize.CoordinatesToCellName(10, len(rows)+2)
		total := 0.0
		for _, row := range rows {
			total += row.Net
		}
		if err := f.SetCellValue(sheet, totalLabelCell, "Total net"); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, totalCell, fmt.Sprintf("%.2f", total)); err != nil {
			return err
		}
	}

	return f.Write(w)
}
