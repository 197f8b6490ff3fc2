package models

import (
	"encoding/json"
	"strconv"
)

// Value is a cell value that is numeric when it could be parsed, and keeps the
// original text otherwise.
type Value struct {
	Number  float64
	Text    string
	Numeric bool
}

// Num returns a numeric value.
func Num(f float64) Value {
	return Value{Number: f, Text: strconv.FormatFloat(f, 'f', -1, 64), Numeric: true}
}

// Text returns a non-numeric value.
func Text(s string) Value {
	return Value{Text: s}
}

// IsNumeric reports whether the value was parsed as a number.
func (v Value) IsNumeric() bool {
	return v.Numeric
}

// Float returns the numeric value and whether it is numeric.
func (v Value) Float() (float64, bool) {
	return v.Number, v.Numeric
}

func (v Value) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// MarshalJSON writes numbers as JSON numbers and anything else as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Numeric {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts either a JSON number or a string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Num(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Text(s)
	return nil
}
