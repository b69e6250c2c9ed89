package vsa

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Value is an optional numeric layer field. The zero Value is blank,
// which is how form input such as "" or null reaches the engine.
type Value struct {
	v   float64
	set bool
}

// Num returns a numeric Value.
func Num(x float64) Value { return Value{v: x, set: true} }

// Float returns the number and whether the value is numeric.
func (v Value) Float() (float64, bool) { return v.v, v.set }

func (v Value) IsSet() bool { return v.set }

// Or returns the number, or def when blank.
func (v Value) Or(def float64) float64 {
	if !v.set {
		return def
	}
	return v.v
}

func (v Value) String() string {
	if !v.set {
		return ""
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else,
// including "", null, "NaN" and "Infinity", leaves the value blank.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(x) && !math.IsInf(x, 0) {
			*v = Num(x)
		}
		return nil
	}
	var x float64
	if err := json.Unmarshal(data, &x); err != nil {
		return nil
	}
	*v = Num(x)
	return nil
}
