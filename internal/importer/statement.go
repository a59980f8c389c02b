package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/stmtmerge/internal/model"
)

const (
	fieldDelimiter = ';'
	utf8BOM        = "\ufeff"
)

// StatementParser parses ';'-delimited bank statement exports.
type StatementParser struct{}

// Parse reads one statement export. The first row is the header. A column whose
// non-empty cells all parse as locale numbers becomes numeric; everything else
// stays text. Empty cells are left empty. Rows shorter than the header are
// padded with empty cells; longer rows are an error. A stray quote inside an
// unquoted field is read as text.
func (p *StatementParser) Parse(r io.Reader) (*model.RecordSet, error) {
	cr := csv.NewReader(r)
	cr.Comma = fieldDelimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reading statement CSV: no header row")
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	rows := records[1:]
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d: %d fields, header has %d", i+2, len(row), len(header))
		}
	}
	numeric := numericColumns(len(header), rows)

	rs := model.NewRecordSet(header...)
	for i, row := range rows {
		rec := make(model.Record, len(header))
		for c := range rec {
			if c >= len(row) {
				rec[c] = model.Empty()
				continue
			}
			rec[c] = parseCell(row[c], numeric[c])
		}
		if err := rs.Append(rec); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return rs, nil
}

func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if h == "" {
			return fmt.Errorf("header column %d is empty", i+1)
		}
		if seen[h] {
			return fmt.Errorf("duplicate header column %q", h)
		}
		seen[h] = true
	}
	return nil
}

func numericColumns(width int, rows [][]string) []bool {
	numeric := make([]bool, width)
	for c := range numeric {
		seenValue := false
		numeric[c] = true
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[c])
			if cell == "" {
				continue
			}
			seenValue = true
			if _, err := ParseNumber(cell); err != nil {
				numeric[c] = false
				break
			}
		}
		numeric[c] = numeric[c] && seenValue
	}
	return numeric
}

func parseCell(cell string, numeric bool) model.Value {
	if strings.TrimSpace(cell) == "" {
		return model.Empty()
	}
	if numeric {
		d, err := ParseNumber(cell)
		if err == nil {
			return model.Number(d)
		}
	}
	return model.Text(cell)
}
