package utils

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampProgress(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-1, 0},
		{math.MinInt, 0},
		{0, 0},
		{42, 42},
		{100, 100},
		{101, 100},
		{150, 100},
		{math.MaxInt, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampProgress(tt.in), "ClampProgress(%d)", tt.in)
	}
}

func TestClampProgress_RangeAndIdentity(t *testing.T) {
	for v := -250; v <= 250; v++ {
		got := ClampProgress(v)
		assert.GreaterOrEqual(t, got, MinProgress)
		assert.LessOrEqual(t, got, MaxProgress)
		if v >= MinProgress && v <= MaxProgress {
			assert.Equal(t, v, got)
		}
	}
}

func TestCoerceProgress(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"nil", nil, 0},
		{"int", 55, 55},
		{"int over", 150, 100},
		{"int64", int64(-20), 0},
		{"float", 42.9, 42},
		{"float32", float32(12.5), 12},
		{"json number", json.Number("75"), 75},
		{"bad json number", json.Number("x"), 0},
		{"numeric string", " 30 ", 30},
		{"fractional string", "99.9", 99},
		{"string over", "1000", 100},
		{"empty string", "", 0},
		{"garbage string", "setengah", 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceProgress(tt.in))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	inputs := []string{"", "  x9a21b ", "ABC123", "\tab12\n", "mIxEd Case"}
	for _, in := range inputs {
		got := NormalizeCode(in)
		assert.Equal(t, strings.ToUpper(strings.TrimSpace(in)), got)
		assert.Equal(t, got, NormalizeCode(got), "NormalizeCode should be idempotent for %q", in)
	}
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "R 1234 ABC", NormalizePlate("  r 1234 abc "))
}

func TestNormalizeContactNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"6281234567890", "6281234567890"},
		{" +62 812 3456 7890 ", "6281234567890"},
		{"+62812", "62812"},
		{"0812-3456", "0812-3456"},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeContactNumber(tt.in), "NormalizeContactNumber(%q)", tt.in)
	}
}
