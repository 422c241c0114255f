package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

// ClampProgress bounds a progress value to [0, 100]
func ClampProgress(v int) int {
	if v < MinProgress {
		return MinProgress
	}
	if v > MaxProgress {
		return MaxProgress
	}
	return v
}

// CoerceProgress turns raw form or JSON input into a clamped progress value.
// Anything that is not a finite number counts as 0.
func CoerceProgress(raw any) int {
	var f float64
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		return ClampProgress(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case float32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > MaxProgress {
		return MaxProgress
	}
	if f < MinProgress {
		return MinProgress
	}
	return int(f)
}

// NormalizeCode is the canonical form of a lookup code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizePlate is the canonical form of a license plate
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// NormalizeContactNumber strips whitespace and a leading "+".
// The number is not otherwise validated.
func NormalizeContactNumber(number string) string {
	n := strings.Join(strings.Fields(number), "")
	return strings.TrimPrefix(n, "+")
}
