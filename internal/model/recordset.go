package model

import "fmt"

// Record is one transaction row. Cells align with the owning RecordSet's columns.
type Record []Value

// RecordSet is the working table of the pipeline: ordered columns and ordered records.
type RecordSet struct {
	columns []string
	index   map[string]int
	records []Record
}

// NewRecordSet creates an empty RecordSet with the given columns.
// Duplicate column names panic.
func NewRecordSet(columns ...string) *RecordSet {
	rs := &RecordSet{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, ok := rs.index[c]; ok {
			panic("duplicate column: " + c)
		}
		rs.index[c] = len(rs.columns)
		rs.columns = append(rs.columns, c)
	}
	return rs
}

// Columns returns the column names in order.
func (rs *RecordSet) Columns() []string {
	out := make([]string, len(rs.columns))
	copy(out, rs.columns)
	return out
}

// Len returns the number of records.
func (rs *RecordSet) Len() int { return len(rs.records) }

// Records returns the records in order. Callers must not append to the slice.
func (rs *RecordSet) Records() []Record { return rs.records }

// Index returns the position of column name, or -1.
func (rs *RecordSet) Index(name string) int {
	if i, ok := rs.index[name]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether the column exists.
func (rs *RecordSet) HasColumn(name string) bool {
	_, ok := rs.index[name]
	return ok
}

// Append adds a record. The record must have one cell per column.
func (rs *RecordSet) Append(rec Record) error {
	if len(rec) != len(rs.columns) {
		return fmt.Errorf("record has %d cells, want %d", len(rec), len(rs.columns))
	}
	rs.records = append(rs.records, rec)
	return nil
}

// Get returns the cell at row i in column name. A missing column yields Empty.
func (rs *RecordSet) Get(i int, name string) Value {
	c := rs.Index(name)
	if c < 0 {
		return Empty()
	}
	return rs.records[i][c]
}

// Set writes the cell at row i in column name, which must exist.
func (rs *RecordSet) Set(i int, name string, v Value) {
	rs.records[i][rs.index[name]] = v
}

// AddColumn appends a column filled with Empty. It is a no-op if the column exists.
func (rs *RecordSet) AddColumn(name string) {
	if rs.HasColumn(name) {
		return
	}
	rs.index[name] = len(rs.columns)
	rs.columns = append(rs.columns, name)
	for i := range rs.records {
		rs.records[i] = append(rs.records[i], Empty())
	}
}

// DropColumn removes a column and reports whether it was present.
func (rs *RecordSet) DropColumn(name string) bool {
	c, ok := rs.index[name]
	if !ok {
		return false
	}
	rs.columns = append(rs.columns[:c], rs.columns[c+1:]...)
	for i, rec := range rs.records {
		rs.records[i] = append(rec[:c], rec[c+1:]...)
	}
	rs.reindex()
	return true
}

// Filter returns a new RecordSet with the same columns holding the records keep accepts.
// Records are shared, not copied.
func (rs *RecordSet) Filter(keep func(i int) bool) *RecordSet {
	out := NewRecordSet(rs.columns...)
	for i, rec := range rs.records {
		if keep(i) {
			out.records = append(out.records, rec)
		}
	}
	return out
}

func (rs *RecordSet) reindex() {
	rs.index = make(map[string]int, len(rs.columns))
	for i, c := range rs.columns {
		rs.index[c] = i
	}
}
