// Package rules loads value-replacement rules and applies them to a RecordSet.
package rules

import (
	"github.com/cleared-dev/stmtmerge/internal/model"
)

// Condition selects how a rule matches the source column.
type Condition string

const (
	// ConditionIs matches cells equal to the source value, kind included.
	ConditionIs Condition = "is"
	// ConditionContains matches text cells containing the source value, ignoring case.
	ConditionContains Condition = "contains"
)

// Rule is one row of the replacement table: where source_column matches
// source_value, set destiny_column to destiny_value.
type Rule struct {
	Row           int // 1-based row in the table, header is row 1
	SourceColumn  string
	Condition     Condition
	SourceValue   model.Value
	DestinyColumn string
	DestinyValue  model.Value
}

// Table column names.
const (
	colSourceColumn  = "source_column"
	colCondition     = "condition"
	colSourceValue   = "source_value"
	colDestinyColumn = "destiny_column"
	colDestinyValue  = "destiny_value"
)

var tableColumns = []string{colSourceColumn, colCondition, colSourceValue, colDestinyColumn, colDestinyValue}
