package period

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// FormatYearMonth returns a period key like "2025-01".
func FormatYearMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Of returns the period key of a date.
func Of(d civil.Date) string {
	return FormatYearMonth(d.Year, int(d.Month))
}
