package semantic

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctxengine/internal/detect"
)

const prose = `The quick brown fox jumps over the lazy dog near the riverbank at dawn.

Meanwhile, deep in the forest, a family of owls debated the merits of nocturnal hunting strategies.

The stock market saw unprecedented volatility today as investors reacted to the central bank announcement.

A lighthouse keeper recorded the weather patterns every single day for forty consecutive years without fail.

Scientists discovered a new species of deep-sea fish near the Mariana Trench last week during an expedition.`

func TestSplit_ParagraphsForGeneric(t *testing.T) {
	segments := Split(prose, detect.TypeGeneric)
	assert.Len(t, segments, 5)
}

func TestCompress_ReducesTokenCount(t *testing.T) {
	result := Compress(prose, detect.TypeGeneric, Options{TargetRatio: 0.5})
	assert.Less(t, result.Usage.CompressedTokens, result.Usage.OriginalTokens)
}

func TestCompress_PreservesReadingOrder(t *testing.T) {
	result := Compress(prose, detect.TypeGeneric, Options{TargetRatio: 0.9})
	last := -1
	for _, seg := range result.SelectedSegments {
		require.Greater(t, seg.Index, last)
		last = seg.Index
	}
}

func TestCompress_AnchorPatternAlwaysKept(t *testing.T) {
	anchored := prose + "\n\nIMPORTANT: never delete the production database without a backup."
	opts := Options{TargetRatio: 0.2, PreservePatterns: []*regexp.Regexp{regexp.MustCompile(`(?i)IMPORTANT`)}}
	result := Compress(anchored, detect.TypeGeneric, opts)
	found := false
	for _, seg := range result.SelectedSegments {
		if regexp.MustCompile(`(?i)IMPORTANT`).MatchString(seg.Content) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompress_TightBudgetStillKeepsAnchoredParagraph(t *testing.T) {
	paragraphs := make([]string, 20)
	for i := range paragraphs {
		paragraphs[i] = fmt.Sprintf("Paragraph %d discusses routine operational matters in some depth and detail.", i+1)
	}
	paragraphs[6] = "Paragraph 7 records the OUTAGE window and the mitigation steps taken."
	text := strings.Join(paragraphs, "\n\n")

	opts := Options{TargetRatio: 0.3, PreservePatterns: []*regexp.Regexp{regexp.MustCompile(`OUTAGE`)}}
	result := Compress(text, detect.TypeGeneric, opts)

	assert.Contains(t, result.Content, "OUTAGE")
	last := -1
	for _, seg := range result.SelectedSegments {
		require.Greater(t, seg.Index, last)
		last = seg.Index
	}
}

func TestCompress_EmptyTextRoundTrips(t *testing.T) {
	result := Compress("", detect.TypeGeneric, Options{})
	assert.Equal(t, "", result.Content)
}

func TestSplit_CodeByBraces(t *testing.T) {
	code := "func A() {\n\treturn 1\n}\n\nfunc B() {\n\treturn 2\n}\n"
	segments := Split(code, detect.TypeCode)
	assert.Len(t, segments, 2)
}
