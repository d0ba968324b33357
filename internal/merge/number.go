package merge

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float64 that tolerates the shapes extraction output comes in:
// JSON numbers, numeric strings ("1 200,50"), null, or garbage. Anything that
// does not parse decodes as 0 instead of failing the whole document.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*n = Number(ParseNumber(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Number(f)
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 { return float64(n) }

// ParseNumber parses a free-form numeric string. Spaces (including no-break
// spaces) are dropped and a lone comma is read as the decimal separator.
// Invalid input yields 0.
func ParseNumber(s string) float64 {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Code is a string identifier that may arrive as a JSON string or number,
// e.g. a tariff code emitted as 8471300000.
type Code string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Code) UnmarshalJSON(data []byte) error {
	*c = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*c = Code(s)
		return nil
	}
	// Numbers keep their literal digits; other JSON kinds are ignored.
	if data[0] == '-' || (data[0] >= '0' && data[0] <= '9') {
		*c = Code(data)
	}
	return nil
}

// Flag is a bool that also accepts "true"/"yes"/"1" strings and non-zero
// numbers. Other values decode as false.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = false
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 't':
		*f = Flag(bytes.Equal(data, []byte("true")))
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "y", "1", "да":
			*f = true
		}
	default:
		if v, err := strconv.ParseFloat(string(data), 64); err == nil && v != 0 {
			*f = true
		}
	}
	return nil
}
