// Package summary aggregates normalized transactions into monthly category pivots.
package summary

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtmerge/internal/model"
)

// ColCategory is the grouping column of the pivot rows.
const ColCategory = "category"

const (
	colAmount    = "amount"
	colYearMonth = "year_month"
)

// Pivot is a category x month table of summed amounts. Cells[i][j] is the
// total for Categories[i] in Months[j]; missing combinations are zero.
type Pivot struct {
	Categories []string
	Months     []string
	Cells      [][]decimal.Decimal
}

// Get returns the total for a category and month, or zero.
func (p *Pivot) Get(category, month string) decimal.Decimal {
	i := sort.SearchStrings(p.Categories, category)
	j := sort.SearchStrings(p.Months, month)
	if i == len(p.Categories) || p.Categories[i] != category || j == len(p.Months) || p.Months[j] != month {
		return decimal.Zero
	}
	return p.Cells[i][j]
}

// Total returns the sum of every cell.
func (p *Pivot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, row := range p.Cells {
		for _, c := range row {
			total = total.Add(c)
		}
	}
	return total
}

// Partitions splits records by the sign of amount.
type Partitions struct {
	Expenses *model.RecordSet // amount < 0
	Revenues *model.RecordSet // amount > 0
	Zero     *model.RecordSet // amount == 0, excluded from both summaries
}

// Partition splits rs by the sign of amount. Every record lands in exactly one part.
func Partition(rs *model.RecordSet) (Partitions, error) {
	if !rs.HasColumn(colAmount) {
		return Partitions{}, fmt.Errorf("partition: missing column %q", colAmount)
	}
	signs := make([]int, rs.Len())
	for i := range rs.Records() {
		d, ok := rs.Get(i, colAmount).AsNumber()
		if !ok {
			return Partitions{}, fmt.Errorf("partition: row %d: amount is not a number", i+1)
		}
		signs[i] = d.Sign()
	}
	return Partitions{
		Expenses: rs.Filter(func(i int) bool { return signs[i] < 0 }),
		Revenues: rs.Filter(func(i int) bool { return signs[i] > 0 }),
		Zero:     rs.Filter(func(i int) bool { return signs[i] == 0 }),
	}, nil
}

// Aggregate groups rs by (year_month, category), sums amount and pivots
// categories into rows and months into columns, both sorted ascending.
// Records with an empty category or year_month are left out. Any text is a
// valid month key, so values rewritten by replacement rules still group.
func Aggregate(rs *model.RecordSet) (*Pivot, error) {
	for _, col := range []string{colAmount, colYearMonth, ColCategory} {
		if !rs.HasColumn(col) {
			return nil, fmt.Errorf("aggregate: missing column %q", col)
		}
	}

	type key struct{ category, month string }
	sums := make(map[key]decimal.Decimal)
	categories := make(map[string]bool)
	months := make(map[string]bool)

	for i := range rs.Records() {
		cat := rs.Get(i, ColCategory)
		ym := rs.Get(i, colYearMonth)
		if cat.IsEmpty() || ym.IsEmpty() {
			continue
		}
		amount, ok := rs.Get(i, colAmount).AsNumber()
		if !ok {
			return nil, fmt.Errorf("aggregate: row %d: amount is not a number", i+1)
		}

		k := key{cat.String(), ym.String()}
		sums[k] = sums[k].Add(amount)
		categories[k.category] = true
		months[k.month] = true
	}

	p := &Pivot{
		Categories: sortedKeys(categories),
		Months:     sortedKeys(months),
	}
	p.Cells = make([][]decimal.Decimal, len(p.Categories))
	for i, cat := range p.Categories {
		p.Cells[i] = make([]decimal.Decimal, len(p.Months))
		for j, month := range p.Months {
			p.Cells[i][j] = sums[key{cat, month}]
		}
	}
	return p, nil
}

// Summary holds the expenses and revenues pivots.
type Summary struct {
	Expenses *Pivot
	Revenues *Pivot
}

// Build partitions rs by sign and aggregates each side.
func Build(rs *model.RecordSet) (*Summary, error) {
	parts, err := Partition(rs)
	if err != nil {
		return nil, err
	}
	expenses, err := Aggregate(parts.Expenses)
	if err != nil {
		return nil, fmt.Errorf("expenses: %w", err)
	}
	revenues, err := Aggregate(parts.Revenues)
	if err != nil {
		return nil, fmt.Errorf("revenues: %w", err)
	}
	return &Summary{Expenses: expenses, Revenues: revenues}, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
