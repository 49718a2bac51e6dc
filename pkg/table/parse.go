package table

import (
	"strconv"
	"strings"
)

// SetText parses val according to the column kind and stores it. Empty
// values and values that do not parse are left null. Raw columns store val
// untouched.
func (f *Frame) SetText(row int, cs ColumnSchema, val string) {
	if cs.Raw {
		if val != "" {
			_ = f.SetCell(row, cs.Name, val)
		}
		return
	}
	val = strings.ToValidUTF8(strings.TrimSpace(val), "?")
	if val == "" {
		return
	}
	switch cs.Type {
	case KindFloat:
		if x, err := strconv.ParseFloat(val, 64); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	case KindInt:
		if x, err := strconv.ParseInt(val, 10, 64); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	case KindBool:
		if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	default:
		_ = f.SetCell(row, cs.Name, val)
	}
}
