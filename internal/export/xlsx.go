package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/stmtmerge/internal/model"
	"github.com/cleared-dev/stmtmerge/internal/summary"
)

// Sheet names of the output workbook.
const (
	SheetMovements = "all movements"
	SheetExpenses  = "expenses"
	SheetRevenues  = "revenues"
)

const dateNumFmt = "yyyy-mm-dd"

// WriteWorkbook writes rs to the movements sheet and, when sum is non-nil,
// the expenses and revenues pivots to their own sheets.
func WriteWorkbook(w io.Writer, rs *model.RecordSet, sum *summary.Summary) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName(wb.GetSheetName(0), SheetMovements); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := writeMovements(wb, rs); err != nil {
		return fmt.Errorf("writing %s: %w", SheetMovements, err)
	}

	if sum != nil {
		for _, s := range []struct {
			name  string
			pivot *summary.Pivot
		}{
			{SheetExpenses, sum.Expenses},
			{SheetRevenues, sum.Revenues},
		} {
			if _, err := wb.NewSheet(s.name); err != nil {
				return fmt.Errorf("creating sheet %s: %w", s.name, err)
			}
			if err := writePivot(wb, s.name, s.pivot); err != nil {
				return fmt.Errorf("writing %s: %w", s.name, err)
			}
		}
	}

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeMovements(wb *excelize.File, rs *model.RecordSet) error {
	header := make([]any, 0, len(rs.Columns()))
	for _, c := range rs.Columns() {
		header = append(header, c)
	}
	if err := wb.SetSheetRow(SheetMovements, "A1", &header); err != nil {
		return err
	}

	dateStyle, err := wb.NewStyle(&excelize.Style{CustomNumFmt: strPtr(dateNumFmt)})
	if err != nil {
		return fmt.Errorf("creating date style: %w", err)
	}

	for i, rec := range rs.Records() {
		row := make([]any, len(rec))
		for c, v := range rec {
			row[c] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(SheetMovements, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		for c, v := range rec {
			if v.Kind() != model.KindDate {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, i+2)
			if err != nil {
				return err
			}
			if err := wb.SetCellStyle(SheetMovements, name, name, dateStyle); err != nil {
				return fmt.Errorf("styling %s: %w", name, err)
			}
		}
	}
	return nil
}

func writePivot(wb *excelize.File, sheet string, p *summary.Pivot) error {
	header := make([]any, 0, len(p.Months)+1)
	header = append(header, summary.ColCategory)
	for _, m := range p.Months {
		header = append(header, m)
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, cat := range p.Categories {
		row := make([]any, 0, len(p.Months)+1)
		row = append(row, cat)
		for _, d := range p.Cells[i] {
			row = append(row, d.InexactFloat64())
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return nil
}

// cellValue maps a Value to what excelize should store. Empty cells are nil.
func cellValue(v model.Value) any {
	switch v.Kind() {
	case model.KindText:
		s, _ := v.AsText()
		return s
	case model.KindNumber:
		d, _ := v.AsNumber()
		return d.InexactFloat64()
	case model.KindDate:
		d, _ := v.AsDate()
		return d.In(time.UTC)
	default:
		return nil
	}
}

func strPtr(s string) *string { return &s }
