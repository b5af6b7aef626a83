package interval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Interval is a closed numeric range used for set, rep, RIR and RPE prescriptions.
// A single value x is represented as [x,x].
type Interval struct {
	Low  float64
	High float64
}

// Point returns the interval [x,x].
func Point(x float64) Interval {
	return Interval{Low: x, High: x}
}

// New returns the interval spanning a and b, whichever order they are given in.
func New(a, b float64) Interval {
	if a > b {
		a, b = b, a
	}
	return Interval{Low: a, High: b}
}

// IsPoint reports whether the interval holds a single value.
func (iv Interval) IsPoint() bool {
	return iv.Low == iv.High
}

// String returns the canonical bracket form, e.g. "[8,12]".
func (iv Interval) String() string {
	return "[" + formatNum(iv.Low) + "," + formatNum(iv.High) + "]"
}

// Add returns the bound-wise sum of two intervals.
func (iv Interval) Add(o Interval) Interval {
	return Interval{Low: iv.Low + o.Low, High: iv.High + o.High}
}

// Parse accepts canonical bracket notation ("[8,12]", "[8]") or a human range
// ("8-12", "8 – 12", "8 to 12", "8"). It returns false for anything else.
func Parse(s string) (Interval, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Interval{}, false
	}

	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return Interval{}, false
		}
		parts := strings.Split(s[1:len(s)-1], ",")
		switch len(parts) {
		case 1:
			x, ok := parseNum(parts[0])
			if !ok {
				return Interval{}, false
			}
			return Point(x), true
		case 2:
			a, ok := parseNum(parts[0])
			if !ok {
				return Interval{}, false
			}
			b, ok := parseNum(parts[1])
			if !ok {
				return Interval{}, false
			}
			return New(a, b), true
		default:
			return Interval{}, false
		}
	}

	if x, ok := parseNum(s); ok {
		return Point(x), true
	}

	for _, sep := range []string{"–", "—", " to ", "-"} {
		// Skip a leading sign so "-1" is not read as an empty low bound.
		i := strings.Index(s[1:], sep)
		if i < 0 {
			continue
		}
		i++
		a, ok := parseNum(s[:i])
		if !ok {
			return Interval{}, false
		}
		b, ok := parseNum(s[i+len(sep):])
		if !ok {
			return Interval{}, false
		}
		return New(a, b), true
	}
	return Interval{}, false
}

// Format returns the canonical form of iv, or nil when iv is nil.
func Format(iv *Interval) *string {
	if iv == nil {
		return nil
	}
	s := iv.String()
	return &s
}

// FromText parses an optional stored value. Nil or unparsable input yields nil.
func FromText(s *string) *Interval {
	if s == nil {
		return nil
	}
	iv, ok := Parse(*s)
	if !ok {
		return nil
	}
	return &iv
}

// Normalize funnels free-form input into canonical form. Unparsable input yields nil.
func Normalize(s *string) *string {
	return Format(FromText(s))
}

// FromJSON decodes a loosely typed JSON value: a number, a string in any form
// Parse accepts, a one- or two-element array, or null. Anything it cannot read
// yields nil, which callers treat as "no value".
func FromJSON(raw json.RawMessage) *Interval {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return FromText(&s)
	case '[':
		var nums []float64
		if err := json.Unmarshal(raw, &nums); err != nil {
			return nil
		}
		switch len(nums) {
		case 1:
			iv := Point(nums[0])
			return &iv
		case 2:
			iv := New(nums[0], nums[1])
			return &iv
		}
		return nil
	default:
		var x float64
		if err := json.Unmarshal(raw, &x); err != nil {
			return nil
		}
		iv := Point(x)
		return &iv
	}
}

// MarshalJSON encodes the interval as its canonical string.
func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(iv.String())
}

// UnmarshalJSON accepts the same shapes as FromJSON but reports unreadable input.
func (iv *Interval) UnmarshalJSON(data []byte) error {
	parsed := FromJSON(data)
	if parsed == nil {
		return fmt.Errorf("interval: cannot parse %s", data)
	}
	*iv = *parsed
	return nil
}

func parseNum(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}

func formatNum(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
