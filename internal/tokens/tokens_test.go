package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount_EmptyString(t *testing.T) {
	assert.Equal(t, uint32(0), Count(""))
}

func TestCount_NonEmptyIsPositive(t *testing.T) {
	assert.Greater(t, Count("package main\n\nfunc main() {}\n"), uint32(0))
}

func TestMeasure_ReductionPercent(t *testing.T) {
	usage := MeasureCounts(100, 40)
	assert.Equal(t, uint32(100), usage.OriginalTokens)
	assert.Equal(t, uint32(40), usage.CompressedTokens)
	assert.Equal(t, 60, usage.ReductionPercent)
}

func TestMeasureCounts_ZeroOriginal(t *testing.T) {
	usage := MeasureCounts(0, 0)
	assert.Equal(t, 0, usage.ReductionPercent)
}

func TestMeasure_RoundTrip(t *testing.T) {
	original := "the quick brown fox jumps over the lazy dog repeatedly and thoroughly"
	compressed := "quick fox jumps"
	usage := Measure(original, compressed)
	assert.Greater(t, usage.OriginalTokens, usage.CompressedTokens)
	assert.Greater(t, usage.ReductionPercent, 0)
}
