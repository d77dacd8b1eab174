// Package export renders the full amortization schedule as an Excel
// workbook, the "complete schedule emailed separately" companion to the
// six-month preview inside the sanction letter.
package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/finance"
	"finsync-advisor/internal/sanction"
)

const sheetName = "Amortization Schedule"

type Exporter struct {
	outputDir string
	log       logger.Logger
}

func NewExporter(outputDir string, log logger.Logger) *Exporter {
	return &Exporter{outputDir: outputDir, log: log}
}

// WriteSchedule builds the workbook for sanctioned terms and returns
// the path it was written to.
func (e *Exporter) WriteSchedule(terms sanction.Terms) (string, error) {
	rows, err := finance.Schedule(float64(terms.Amount), terms.InterestRate, terms.TenureMonths, terms.TenureMonths)
	if err != nil {
		return "", fmt.Errorf("build schedule: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := [][]interface{}{
		{"Sanction Letter", terms.LetterNumber},
		{"Loan Amount", fmt.Sprintf("₹%s", sanction.FormatINR(terms.Amount))},
		{"Interest Rate", fmt.Sprintf("%.1f%% p.a.", terms.InterestRate)},
		{"Tenure", fmt.Sprintf("%d months", terms.TenureMonths)},
		{"Generated", terms.IssuedAt.Format("02/01/2006")},
	}
	for i, row := range header {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	columns := []interface{}{"Month", "EMI", "Principal", "Interest", "Remaining Balance"}
	cell, _ := excelize.CoordinatesToCellName(1, len(header)+2)
	if err := f.SetSheetRow(sheetName, cell, &columns); err != nil {
		return "", fmt.Errorf("write columns: %w", err)
	}

	for i, inst := range rows {
		row := []interface{}{
			inst.Month,
			finance.RoundCurrency(inst.EMI),
			finance.RoundCurrency(inst.Principal),
			finance.RoundCurrency(inst.Interest),
			finance.RoundCurrency(inst.RemainingBalance),
		}
		cell, _ := excelize.CoordinatesToCellName(1, len(header)+3+i)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", inst.Month, err)
		}
	}

	filename := fmt.Sprintf("%s-schedule-%s.xlsx", terms.LetterNumber, time.Now().UTC().Format("20060102"))
	path := filepath.Join(e.outputDir, filename)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	e.log.Info("amortization schedule exported", map[string]interface{}{
		"path":   path,
		"months": len(rows),
	})
	return path, nil
}
