package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Kind classifies the content of a Value.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Value is one typed cell of a RecordSet.
type Value struct {
	kind Kind
	text string
	num  decimal.Decimal
	date civil.Date
}

// Empty returns a missing value.
func Empty() Value { return Value{} }

// Text returns a text value. An empty string is still text, not Empty.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a decimal value.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

// Int returns a whole-number value.
func Int(n int) Value { return Number(decimal.NewFromInt(int64(n))) }

// Date returns a calendar date value.
func Date(d civil.Date) Value { return Value{kind: KindDate, date: d} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value is missing.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// AsText returns the text content and whether v is text.
func (v Value) AsText() (string, bool) { return v.text, v.kind == KindText }

// AsNumber returns the decimal content and whether v is a number.
func (v Value) AsNumber() (decimal.Decimal, bool) { return v.num, v.kind == KindNumber }

// AsDate returns the date content and whether v is a date.
func (v Value) AsDate() (civil.Date, bool) { return v.date, v.kind == KindDate }

// Equal reports whether a and b have the same kind and content.
// Text "10" is not equal to Number 10.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num.Equal(o.num)
	case KindDate:
		return v.date == o.date
	default:
		return true
	}
}

// String renders the value for output. Empty renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num.String()
	case KindDate:
		return v.date.String()
	default:
		return ""
	}
}

// key is a kind-tagged rendering used for row identity.
func (v Value) key() string {
	return string(rune('0'+int(v.kind))) + v.String()
}
