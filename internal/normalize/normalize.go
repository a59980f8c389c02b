// Package normalize coerces merged statement rows into their canonical shape.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtmerge/internal/importer"
	"github.com/cleared-dev/stmtmerge/internal/model"
	"github.com/cleared-dev/stmtmerge/internal/period"
)

// Canonical column names.
const (
	ColAmount    = "amount"
	ColBalance   = "accountBalance"
	ColDate      = "dateVal"
	ColYear      = "year"
	ColMonth     = "month"
	ColYearMonth = "year_month"
)

// DroppedColumns are removed from every statement when present.
var DroppedColumns = []string{"comment", "pointer", "dateOp"}

// dateFormat is day/month/year; single-digit day and month are accepted.
const dateFormat = "2/1/2006"

// ErrCoercion is returned when a row cannot be coerced to the canonical types.
var ErrCoercion = errors.New("coercion failed")

// Options controls optional normalization steps.
type Options struct {
	// DeriveCalendar adds year, month and year_month columns from dateVal.
	DeriveCalendar bool
}

// Normalize coerces amount and accountBalance to numbers, parses dateVal,
// optionally derives calendar fields, and drops unused columns. Any row that
// fails coercion fails the whole set.
func Normalize(rs *model.RecordSet, opts Options) error {
	for _, col := range []string{ColAmount, ColBalance} {
		if err := coerceNumbers(rs, col); err != nil {
			return err
		}
	}
	if err := coerceDates(rs, ColDate); err != nil {
		return err
	}

	if opts.DeriveCalendar {
		deriveCalendar(rs)
	}

	for _, col := range DroppedColumns {
		if rs.HasColumn(col) {
			rs.DropColumn(col)
		}
	}
	return nil
}

func coerceNumbers(rs *model.RecordSet, col string) error {
	if !rs.HasColumn(col) {
		return fmt.Errorf("%w: missing column %q", ErrCoercion, col)
	}
	for i := range rs.Records() {
		v := rs.Get(i, col)
		switch v.Kind() {
		case model.KindNumber:
			continue
		case model.KindText:
			s, _ := v.AsText()
			d, err := parseAmount(s)
			if err != nil {
				return fmt.Errorf("%w: row %d: %s %q is not a number", ErrCoercion, i+1, col, s)
			}
			rs.Set(i, col, model.Number(d))
		default:
			return fmt.Errorf("%w: row %d: %s is %s", ErrCoercion, i+1, col, v.Kind())
		}
	}
	return nil
}

// parseAmount reads a locale number, falling back to a '.' decimal like "12.50".
func parseAmount(s string) (decimal.Decimal, error) {
	if d, err := importer.ParseNumber(s); err == nil {
		return d, nil
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}

func coerceDates(rs *model.RecordSet, col string) error {
	if !rs.HasColumn(col) {
		return fmt.Errorf("%w: missing column %q", ErrCoercion, col)
	}
	for i := range rs.Records() {
		v := rs.Get(i, col)
		if _, ok := v.AsDate(); ok {
			continue
		}
		s, ok := v.AsText()
		if !ok {
			return fmt.Errorf("%w: row %d: %s is %s", ErrCoercion, i+1, col, v.Kind())
		}
		d, err := ParseDate(s)
		if err != nil {
			return fmt.Errorf("%w: row %d: %w", ErrCoercion, i+1, err)
		}
		rs.Set(i, col, model.Date(d))
	}
	return nil
}

// ParseDate parses a day-first date like "31/01/2024".
func ParseDate(s string) (civil.Date, error) {
	t, err := time.Parse(dateFormat, strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return civil.DateOf(t), nil
}

func deriveCalendar(rs *model.RecordSet) {
	for _, col := range []string{ColYear, ColMonth, ColYearMonth} {
		rs.AddColumn(col)
	}
	for i := range rs.Records() {
		d, _ := rs.Get(i, ColDate).AsDate()
		rs.Set(i, ColYear, model.Int(d.Year))
		rs.Set(i, ColMonth, model.Int(int(d.Month)))
		rs.Set(i, ColYearMonth, model.Text(period.Of(d)))
	}
}
