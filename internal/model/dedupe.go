package model

import "strings"

// Dedupe removes records that are field-wise identical to an earlier record,
// keeping the first occurrence. It returns the number of records removed.
func (rs *RecordSet) Dedupe() int {
	seen := make(map[string]struct{}, len(rs.records))
	kept := rs.records[:0]
	for _, rec := range rs.records {
		k := rec.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, rec)
	}
	removed := len(rs.records) - len(kept)
	for i := len(kept); i < len(rs.records); i++ {
		rs.records[i] = nil
	}
	rs.records = kept
	return removed
}

func (r Record) key() string {
	var b strings.Builder
	for _, v := range r {
		b.WriteString(v.key())
		b.WriteByte(0)
	}
	return b.String()
}
