package rules

import (
	"fmt"
	"strings"

	"github.com/cleared-dev/stmtmerge/internal/model"
)

// ValidationError describes why a table row cannot be used as a rule.
type ValidationError struct {
	Row         int
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d [%s]: %s", e.Row, e.Field, e.Description)
}

// Validate splits rules into usable ones and the rows that must be skipped.
// A rule with any empty field, or an unknown condition, is skipped.
func Validate(rules []Rule) ([]Rule, []ValidationError) {
	var valid []Rule
	var errs []ValidationError

	for _, r := range rules {
		if ve, ok := checkRule(r); !ok {
			errs = append(errs, ve)
			continue
		}
		valid = append(valid, r)
	}
	return valid, errs
}

func checkRule(r Rule) (ValidationError, bool) {
	fields := []struct {
		name  string
		blank bool
	}{
		{colSourceColumn, r.SourceColumn == ""},
		{colCondition, r.Condition == ""},
		{colSourceValue, blank(r.SourceValue)},
		{colDestinyColumn, r.DestinyColumn == ""},
		{colDestinyValue, blank(r.DestinyValue)},
	}
	for _, f := range fields {
		if f.blank {
			return ValidationError{Row: r.Row, Field: f.name, Description: "empty field"}, false
		}
	}

	switch r.Condition {
	case ConditionIs, ConditionContains:
	default:
		return ValidationError{
			Row:         r.Row,
			Field:       colCondition,
			Description: fmt.Sprintf("unknown condition %q", r.Condition),
		}, false
	}
	return ValidationError{}, true
}

func blank(v model.Value) bool {
	return v.IsEmpty() || strings.TrimSpace(v.String()) == ""
}
