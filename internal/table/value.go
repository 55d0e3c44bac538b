package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the stored type of a single cell.
type Kind int

const (
	Empty Kind = iota
	Text
	Number
	Time
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Text:
		return "text"
	case Number:
		return "number"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// Value is one cell. Raw keeps the text exactly as the source stored it so
// exports reproduce cells unchanged; Num is only meaningful for Number.
type Value struct {
	Kind Kind
	Raw  string
	Num  float64
}

// Missing returns the empty cell.
func Missing() Value { return Value{} }

// TextValue wraps a string cell. An empty string is treated as missing.
func TextValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: Text, Raw: s}
}

// NumberValue wraps a numeric cell keeping its original spelling.
func NumberValue(raw string, f float64) Value {
	if raw == "" {
		raw = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return Value{Kind: Number, Raw: raw, Num: f}
}

// TimeValue wraps a date/time cell in its display form.
func TimeValue(raw string) Value {
	if raw == "" {
		return Value{}
	}
	return Value{Kind: Time, Raw: raw}
}

// ParseValue infers the kind of a raw cell: empty, finite number, or text.
func ParseValue(raw string) Value {
	if raw == "" {
		return Value{}
	}
	if f, ok := parseFinite(raw); ok {
		return NumberValue(raw, f)
	}
	return TextValue(raw)
}

func (v Value) IsMissing() bool { return v.Kind == Empty }

func (v Value) String() string { return v.Raw }

// parseFinite accepts plain decimal and scientific notation. Words that
// strconv would read as NaN or Inf stay text.
func parseFinite(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" || t != s {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
