package importer

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Statement exports use ',' for decimals and spaces for thousands.
const decimalSep = ","

// thousandsSeps are stripped before parsing. Besides the plain space, exports
// use no-break space and narrow no-break space.
var thousandsSeps = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "")

var errNotNumber = errors.New("not a number")

// ParseNumber parses a locale-formatted number like "-1 234,56".
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errNotNumber
	}
	s = thousandsSeps.Replace(s)
	if strings.Contains(s, ".") {
		return decimal.Zero, errNotNumber
	}
	s = strings.Replace(s, decimalSep, ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errNotNumber
	}
	return d, nil
}
