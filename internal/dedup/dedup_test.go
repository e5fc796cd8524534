package dedup

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_BelowThresholdRendersVerbatim(t *testing.T) {
	lines := []string{"connecting to db", "connecting to db"}
	result := Group(lines, Options{Threshold: 3, KeepFirst: 1})

	assert.Equal(t, lines, result.Rendered)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, 2, result.Groups[0].Occurrences)
	assert.Equal(t, 0, result.DroppedLineCount)
}

func TestGroup_AtThresholdCollapses(t *testing.T) {
	lines := []string{
		"retry attempt 1 failed",
		"retry attempt 2 failed",
		"retry attempt 3 failed",
	}
	result := Group(lines, DefaultOptions())

	require.Len(t, result.Groups, 1)
	assert.Equal(t, 3, result.Groups[0].Occurrences)
	assert.Equal(t, []string{"retry attempt 1 failed", "... and 2 more occurrences"}, result.Rendered)
	assert.Equal(t, 2, result.DroppedLineCount)
	assert.Equal(t, 2, result.Stats.DuplicatesRemoved)
}

func TestGroup_NormalizationMergesVariantLines(t *testing.T) {
	lines := []string{
		`request id=123 path=/var/log/app.log status=200`,
		`request id=456 path=/var/log/app.log status=200`,
	}
	result := Group(lines, DefaultOptions())

	require.Len(t, result.Groups, 1, "lines differing only by id should normalize to one signature")
	assert.Equal(t, 2, result.Groups[0].Occurrences)
}

func TestGroup_QuotedStringsNormalized(t *testing.T) {
	a := normalize(`user said "hello world"`)
	b := normalize(`user said "goodbye"`)
	assert.Equal(t, a, b)
}

func TestGroup_CustomPatternPassesThroughNonMatches(t *testing.T) {
	lines := []string{"ERROR disk full", "INFO heartbeat", "ERROR disk full", "ERROR disk full"}
	opts := Options{Threshold: 2, KeepFirst: 1, CustomPattern: regexp.MustCompile(`^ERROR`)}
	result := Group(lines, opts)

	require.Len(t, result.Rendered, 3)
	assert.Contains(t, result.Rendered, "INFO heartbeat")
	assert.Contains(t, result.Rendered, "... and 2 more occurrences")
}

func TestGroup_EmptyInput(t *testing.T) {
	result := Group(nil, DefaultOptions())
	assert.Empty(t, result.Rendered)
	assert.Equal(t, 0.0, result.Stats.ReductionPercent)
}

func TestGroup_CollapsesThousandVariantsToOneGroup(t *testing.T) {
	lines := make([]string, 1000)
	for i := range lines {
		lines[i] = fmt.Sprintf("Error: connection refused at 10.0.0.%d:443", i%250+1)
	}
	result := Group(lines, DefaultOptions())

	require.Len(t, result.Groups, 1)
	assert.Equal(t, 1000, result.Groups[0].Occurrences)
	assert.Equal(t, "error: connection refused at <N>.<N>:<N>", result.Groups[0].Pattern)
}

func TestGroup_IsIdempotentOnRenderedOutput(t *testing.T) {
	lines := []string{"a", "a", "a", "b"}
	first := Group(lines, DefaultOptions())
	second := Group(first.Rendered, DefaultOptions())
	assert.Equal(t, first.Rendered, second.Rendered)
}
