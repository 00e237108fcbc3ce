package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Plain decimal notation. Keeps NaN, Inf, hex and underscore forms that
// strconv accepts from reading as numbers.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// The kind of data an answer value holds.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindText
	KindList
	KindTable
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	default:
		return "null"
	}
}

// A single table answer row keyed by column id.
type TableRow map[string]Value

// Value is the answer payload. Exactly one of the fields is meaningful,
// selected by Kind.
//
// The zero Value is null.
type Value struct {
	Kind  ValueKind
	Bool  bool
	Num   float64
	Text  string
	List  []Value
	Table []TableRow
}

func Null() Value                  { return Value{} }
func Bool(b bool) Value            { return Value{Kind: KindBool, Bool: b} }
func Number(n float64) Value       { return Value{Kind: KindNumber, Num: n} }
func Text(s string) Value          { return Value{Kind: KindText, Text: s} }
func List(items ...Value) Value    { return Value{Kind: KindList, List: items} }
func Table(rows ...TableRow) Value { return Value{Kind: KindTable, Table: rows} }

// Strings builds a list value out of plain strings, the usual shape of a
// multi choice answer.
func Strings(items ...string) Value {
	list := make([]Value, 0, len(items))
	for _, s := range items {
		list = append(list, Text(s))
	}
	return Value{Kind: KindList, List: list}
}

// IsEmpty reports whether the value is null, an empty string or an empty
// sequence.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindNull:
		return true
	case KindText:
		return v.Text == ""
	case KindList:
		return len(v.List) == 0
	case KindTable:
		return len(v.Table) == 0
	default:
		return false
	}
}

// Float returns the numeric reading of the value. Text is numeric when it is
// a plain decimal after trimming. The result is always finite.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return finite(v.Num)
	case KindText:
		s := strings.TrimSpace(v.Text)
		if !decimalPattern.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// out of range
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Truthy coerces the value to a boolean.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num != 0
	case KindText:
		switch strings.ToLower(strings.TrimSpace(v.Text)) {
		case "", "false", "0":
			return false
		}
		return true
	case KindList:
		return len(v.List) > 0
	case KindTable:
		return len(v.Table) > 0
	default:
		return false
	}
}

// String returns the textual form used for string comparisons.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Text
	case KindList:
		parts := make([]string, 0, len(v.List))
		for _, item := range v.List {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// Rows returns the table rows of the value. An empty list is read as a table
// with no rows since both decode from `[]`.
func (v Value) Rows() ([]TableRow, bool) {
	switch v.Kind {
	case KindTable:
		return v.Table, true
	case KindList:
		if len(v.List) == 0 {
			return nil, true
		}
	case KindNull:
		return nil, true
	}
	return nil, false
}

// Native converts the value back into plain Go data, the shape expression
// environments and encoders work with.
func (v Value) Native() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num
	case KindText:
		return v.Text
	case KindList:
		out := make([]any, 0, len(v.List))
		for _, item := range v.List {
			out = append(out, item.Native())
		}
		return out
	case KindTable:
		out := make([]any, 0, len(v.Table))
		for _, row := range v.Table {
			m := make(map[string]any, len(row))
			for k, cell := range row {
				m[k] = cell.Native()
			}
			out = append(out, m)
		}
		return out
	default:
		return nil
	}
}

// FromNative converts decoded JSON data into a Value.
func FromNative(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Text(x.String())
		}
		return Number(f)
	case string:
		return Text(x)
	case []string:
		return Strings(x...)
	case []any:
		if len(x) > 0 && allObjects(x) {
			rows := make([]TableRow, 0, len(x))
			for _, item := range x {
				obj := item.(map[string]any)
				row := make(TableRow, len(obj))
				for k, cell := range obj {
					row[k] = FromNative(cell)
				}
				rows = append(rows, row)
			}
			return Table(rows...)
		}
		list := make([]Value, 0, len(x))
		for _, item := range x {
			list = append(list, FromNative(item))
		}
		return Value{Kind: KindList, List: list}
	default:
		return Null()
	}
}

func allObjects(items []any) bool {
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromNative(raw)
	return nil
}
