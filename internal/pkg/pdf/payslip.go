// Package pdf renders payslip documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
)

// RenderPayslip produces the A4 payslip document for one employee.
func RenderPayslip(p payroll.Payslip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payslip "+p.PayslipNumber)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", p.EmployeeName, p.EmployeeCode))
	pdf.Ln(6)
	period := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	pdf.Cell(0, 7, "Period: "+period.Format("January 2006"))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Days worked: %d of %d, unpaid leave days: %d",
		p.DaysWorked, p.WorkingDays, p.UnpaidLeaveDays))
	pdf.Ln(10)

	section(pdf, "Earnings")
	line(pdf, "Basic salary", p.BasicSalary, p.Currency)
	line(pdf, "Allowances", p.Allowances, p.Currency)
	line(pdf, fmt.Sprintf("Overtime (%s h)", p.OvertimeHours.StringFixed(2)), p.OvertimePay, p.Currency)
	line(pdf, "Bonuses", p.Bonuses, p.Currency)
	boldLine(pdf, "Gross pay", p.Gross, p.Currency)
	pdf.Ln(4)

	section(pdf, "Deductions")
	if p.Statutory.NPFEmployee.IsPositive() {
		line(pdf, "NPF", p.Statutory.NPFEmployee, p.Currency)
	}
	line(pdf, "NSF", p.Statutory.NSFEmployee, p.Currency)
	line(pdf, "CSG", p.Statutory.CSGEmployee, p.Currency)
	line(pdf, "PAYE", p.Statutory.PAYE, p.Currency)
	if p.UnpaidLeaveDeduction.IsPositive() {
		line(pdf, "Unpaid leave", p.UnpaidLeaveDeduction, p.Currency)
	}
	if p.OtherDeductions.IsPositive() {
		line(pdf, "Other deductions", p.OtherDeductions, p.Currency)
	}
	boldLine(pdf, "Total deductions", p.TotalDeductions, p.Currency)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 9, fmt.Sprintf("Net pay: %s %s", p.Net.StringFixed(2), p.Currency))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Employer contributions (not deducted from pay):")
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("NPF %s, NSF %s, CSG %s, PRGF %s, Training levy %s",
		p.Statutory.NPFEmployer.StringFixed(2),
		p.Statutory.NSFEmployer.StringFixed(2),
		p.Statutory.CSGEmployer.StringFixed(2),
		p.Statutory.PRGF.StringFixed(2),
		p.Statutory.TrainingLevy.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
}

func line(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal, currency string) {
	pdf.Cell(110, 7, label)
	pdf.CellFormat(50, 7, amount.StringFixed(2)+" "+currency, "", 0, "R", false, 0, "")
	pdf.Ln(7)
}

func boldLine(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal, currency string) {
	pdf.SetFont("Helvetica", "B", 11)
	line(pdf, label, amount, currency)
	pdf.SetFont("Helvetica", "", 11)
}
