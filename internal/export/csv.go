package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/stmtmerge/internal/model"
)

// WriteCSV writes rs as comma-separated text with a header row.
// Numbers are written with '.' decimals, dates as YYYY-MM-DD, empty cells as "".
func WriteCSV(w io.Writer, rs *model.RecordSet) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(rs.Columns()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range rs.Records() {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(rec model.Record) []string {
	row := make([]string, len(rec))
	for i, v := range rec {
		row[i] = v.String()
	}
	return row
}
