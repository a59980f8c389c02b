package rules

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/stmtmerge/internal/model"
)

// ErrTableNotFound is returned when the replacement table does not exist.
var ErrTableNotFound = errors.New("replacement table not found")

// Load reads a replacement table. ".csv" files are read as comma-separated
// text; anything else is opened as an XLSX workbook and its first sheet is used.
// A table with no rows yields no rules.
func Load(path string) ([]Rule, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, path)
		}
		return nil, fmt.Errorf("stat replacement table: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening replacement table: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening replacement table: %w", err)
	}
	defer wb.Close()
	return ReadWorkbook(wb)
}

// ReadCSV reads rules from a comma-separated table. All values are text.
func ReadCSV(r io.Reader) ([]Rule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading replacement CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	grid := make([][]model.Value, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]model.Value, len(rec))
		for i, s := range rec {
			row[i] = textCell(s)
		}
		grid = append(grid, row)
	}
	return buildRules(records[0], grid)
}

// ReadWorkbook reads rules from the first sheet of a workbook. Numeric cells
// become numbers; everything else is text.
func ReadWorkbook(wb *excelize.File) ([]Rule, error) {
	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	sheet := sheets[0]

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	grid := make([][]model.Value, 0, len(rows)-1)
	for r, cells := range rows[1:] {
		row := make([]model.Value, len(cells))
		for c, formatted := range cells {
			v, err := workbookCell(wb, sheet, r+1, c, formatted)
			if err != nil {
				return nil, err
			}
			row[c] = v
		}
		grid = append(grid, row)
	}
	return buildRules(rows[0], grid)
}

// buildRules maps table rows onto Rules. Header names are matched
// case-insensitively and may appear in any order. Conditions are kept as
// written, so "IS" fails validation.
func buildRules(header []string, grid [][]model.Value) ([]Rule, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range tableColumns {
		if _, ok := pos[c]; !ok {
			return nil, fmt.Errorf("replacement table: missing column %q", c)
		}
	}

	var rules []Rule
	for i, row := range grid {
		if blankRow(row) {
			continue
		}
		cell := func(name string) model.Value {
			c := pos[name]
			if c >= len(row) {
				return model.Empty()
			}
			return row[c]
		}
		rules = append(rules, Rule{
			Row:           i + 2,
			SourceColumn:  strings.TrimSpace(cell(colSourceColumn).String()),
			Condition:     Condition(strings.TrimSpace(cell(colCondition).String())),
			SourceValue:   cell(colSourceValue),
			DestinyColumn: strings.TrimSpace(cell(colDestinyColumn).String()),
			DestinyValue:  cell(colDestinyValue),
		})
	}
	return rules, nil
}

func blankRow(row []model.Value) bool {
	for _, v := range row {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}

func textCell(s string) model.Value {
	if s == "" {
		return model.Empty()
	}
	return model.Text(s)
}

func workbookCell(wb *excelize.File, sheet string, row, col int, formatted string) (model.Value, error) {
	if formatted == "" {
		return model.Empty(), nil
	}
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return model.Empty(), fmt.Errorf("cell coordinates: %w", err)
	}
	typ, err := wb.GetCellType(sheet, name)
	if err != nil {
		return model.Empty(), fmt.Errorf("cell %s type: %w", name, err)
	}
	if typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber {
		return model.Text(formatted), nil
	}
	raw, err := wb.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Empty(), fmt.Errorf("cell %s value: %w", name, err)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Text(formatted), nil
	}
	return model.Number(d), nil
}

// WriteTemplate creates a workbook at path holding only the table header.
func WriteTemplate(path string) error {
	wb := excelize.NewFile()
	defer wb.Close()

	header := make([]any, len(tableColumns))
	for i, c := range tableColumns {
		header[i] = c
	}
	if err := wb.SetSheetRow(wb.GetSheetName(0), "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("saving replacement template: %w", err)
	}
	return nil
}
