package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/stmtmerge/internal/model"
)

var (
	// ErrUnknownColumn is returned when a rule names a source column the set does not have.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotText is returned when a contains rule targets a column holding non-text cells.
	ErrNotText = errors.New("column is not text")
	// ErrUnknownCondition is returned for a condition other than is/contains.
	ErrUnknownCondition = errors.New("unknown condition")
)

// Outcome records what one rule did. Err is set when the rule was skipped.
type Outcome struct {
	Rule    Rule
	Matched int
	Err     error
}

// Report summarizes a Replace run.
type Report struct {
	Invalid  []ValidationError
	Outcomes []Outcome
	Removed  int // duplicate records removed after application
}

// Failed returns the outcomes of rules that were skipped.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Replace validates rules, applies the valid ones in order, and deduplicates rs.
// Deduplication runs even when no rule is valid.
func Replace(rs *model.RecordSet, rules []Rule) Report {
	valid, invalid := Validate(rules)
	report := Report{Invalid: invalid}
	if len(valid) > 0 {
		report.Outcomes = Apply(rs, valid)
	}
	report.Removed = rs.Dedupe()
	return report
}

// Apply runs rules in order against rs. A failing rule is recorded in its
// Outcome and leaves rs untouched; later rules still run.
func Apply(rs *model.RecordSet, rules []Rule) []Outcome {
	outcomes := make([]Outcome, 0, len(rules))
	for _, r := range rules {
		n, err := applyRule(rs, r)
		outcomes = append(outcomes, Outcome{Rule: r, Matched: n, Err: err})
	}
	return outcomes
}

func applyRule(rs *model.RecordSet, r Rule) (int, error) {
	if !rs.HasColumn(r.SourceColumn) {
		return 0, fmt.Errorf("row %d: %w %q", r.Row, ErrUnknownColumn, r.SourceColumn)
	}

	var match func(v model.Value) bool
	switch r.Condition {
	case ConditionIs:
		match = r.SourceValue.Equal
	case ConditionContains:
		if err := requireText(rs, r.SourceColumn); err != nil {
			return 0, fmt.Errorf("row %d: %w", r.Row, err)
		}
		needle := strings.ToLower(r.SourceValue.String())
		match = func(v model.Value) bool {
			s, ok := v.AsText()
			return ok && strings.Contains(strings.ToLower(s), needle)
		}
	default:
		return 0, fmt.Errorf("row %d: %w %q", r.Row, ErrUnknownCondition, r.Condition)
	}

	// Collect matches first; destiny may be the source column.
	var hits []int
	for i := range rs.Records() {
		if match(rs.Get(i, r.SourceColumn)) {
			hits = append(hits, i)
		}
	}

	rs.AddColumn(r.DestinyColumn)
	for _, i := range hits {
		rs.Set(i, r.DestinyColumn, r.DestinyValue)
	}
	return len(hits), nil
}

func requireText(rs *model.RecordSet, col string) error {
	for i := range rs.Records() {
		v := rs.Get(i, col)
		if v.IsEmpty() {
			continue
		}
		if _, ok := v.AsText(); !ok {
			return fmt.Errorf("%w: %q holds %s values", ErrNotText, col, v.Kind())
		}
	}
	return nil
}
