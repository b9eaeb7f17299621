// Package export renders fund data as spreadsheet downloads.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/comfund/backend/internal/domain/fund"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of the generated workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	ledgerSheet  = "Ledger"
	summarySheet = "Summary"
)

var ledgerHeadings = []string{"Date", "Type", "Category", "Description", "Amount", "Source"}

// LedgerWorkbook is a two-sheet workbook: the combined ledger rows and the
// fund totals they reconcile to.
type LedgerWorkbook struct {
	OrgName     string
	GeneratedAt time.Time
	Location    *time.Location
	Rows        []fund.LedgerRow
	Stats       fund.OrgStats
}

// Filename returns the suggested download name
func (w *LedgerWorkbook) Filename() string {
	return fmt.Sprintf("ledger-%s.xlsx", w.GeneratedAt.In(w.location()).Format("2006-01-02"))
}

// WriteTo renders the workbook into out
func (w *LedgerWorkbook) WriteTo(out io.Writer) (int64, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return 0, err
	}
	if err := w.writeLedger(f); err != nil {
		return 0, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return 0, err
	}
	if err := w.writeSummary(f); err != nil {
		return 0, err
	}
	return f.WriteTo(out)
}

func (w *LedgerWorkbook) writeLedger(f *excelize.File) error {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(ledgerSheet, "A1", &ledgerHeadings); err != nil {
		return err
	}
	if err := f.SetCellStyle(ledgerSheet, "A1", "F1", header); err != nil {
		return err
	}

	loc := w.location()
	for i, row := range w.Rows {
		source := "Ledger"
		if row.Derived {
			source = "Donation"
		}
		amount, _ := row.Amount.Float64()
		values := []any{
			row.Date.In(loc).Format(time.DateOnly),
			row.Type.String(),
			row.Category,
			row.Description,
			amount,
			source,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &values); err != nil {
			return err
		}
	}
	if len(w.Rows) > 0 {
		last := fmt.Sprintf("E%d", len(w.Rows)+1)
		if err := f.SetCellStyle(ledgerSheet, "E2", last, money); err != nil {
			return err
		}
	}

	for col, width := range map[string]float64{"A": 12, "B": 10, "C": 24, "D": 48, "E": 14, "F": 10} {
		if err := f.SetColWidth(ledgerSheet, col, col, width); err != nil {
			return err
		}
	}
	return f.SetPanes(ledgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (w *LedgerWorkbook) writeSummary(f *excelize.File) error {
	income, _ := w.Stats.TotalIncome.Float64()
	expense, _ := w.Stats.TotalExpense.Float64()
	balance, _ := w.Stats.TotalBalance.Float64()
	ledgerIncome, _ := w.Stats.LedgerIncome.Float64()
	donationIncome, _ := w.Stats.DonationIncome.Float64()

	rows := [][]any{
		{"Organization", w.OrgName},
		{"Generated", w.GeneratedAt.In(w.location()).Format("2006-01-02 15:04")},
		{},
		{"Ledger income", ledgerIncome},
		{"Approved donations", donationIncome},
		{"Total income", income},
		{"Total expense", expense},
		{"Balance", balance},
	}
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "B", 22)
}

func (w *LedgerWorkbook) location() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}
