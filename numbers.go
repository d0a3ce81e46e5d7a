package booster

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber coerces raw input into an optional number. Empty, non-numeric
// and non-finite input yields nil rather than an error. A comma decimal
// separator is accepted.
func ParseNumber(raw string) *float64 {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, " ", "")
	if !strings.Contains(text, ".") {
		text = strings.Replace(text, ",", ".", 1)
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

// ParseScore parses a strategy score, rounding to the nearest integer and
// clamping into [MinScore, MaxScore]. Unparseable input yields nil.
func ParseScore(raw string) *int {
	value := ParseNumber(raw)
	if value == nil {
		return nil
	}
	return ClampScore(Int(int(math.Round(*value))))
}

// ParseLeverArea maps raw input onto a LeverArea, ignoring case and
// surrounding space.
func ParseLeverArea(raw string) (LeverArea, bool) {
	area := LeverArea(strings.ToLower(strings.TrimSpace(raw)))
	if !area.Valid() {
		return AreaNone, false
	}
	return area, true
}

// ClampScore returns a copy of score moved into [MinScore, MaxScore]. nil
// stays nil.
func ClampScore(score *int) *int {
	if score == nil {
		return nil
	}
	value := *score
	if value < MinScore {
		value = MinScore
	}
	if value > MaxScore {
		value = MaxScore
	}
	return &value
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
