// Package tokens implements the token accountant (spec component C1): an
// estimate of how many LLM tokens a piece of UTF-8 text would consume.
//
// When tiktoken-go's cl100k_base tables load, the count is that encoding's
// exact BPE token count; otherwise it is a chars-per-token heuristic. The
// contract every caller may rely on is: Count is monotonic in
// input length, stable across identical inputs, Count("") == 0, and
// Count(a+b) <= Count(a) + Count(b) + 1.
package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE family used when tiktoken-go's tables are
// available. cl100k is the closest public encoding to the model family
// the engine targets.
const encodingName = "cl100k_base"

// charsPerToken is the fallback heuristic ratio used when the BPE encoder
// can't be loaded (for example, the asset is not present in a constrained
// runtime image). Which path Count takes depends only on whether the
// encoder loaded, never on the input text. 4 chars/token is a standard
// rough proxy.
const charsPerToken = 4.0

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

func encoder() (*tiktoken.Tiktoken, error) {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding(encodingName)
	})
	return enc, encErr
}

// Count estimates the number of tokens text would occupy.
//
// Count("") is always 0. When the tiktoken encoder is available, Count
// returns the exact BPE token count for cl100k_base. Otherwise it falls
// back to a 4-chars-per-token heuristic over the text's rune count, which
// keeps behavior identical across malformed UTF-8 (rune count still counts
// the replacement character once per bad byte sequence).
func Count(text string) uint32 {
	if text == "" {
		return 0
	}
	if e, err := encoder(); err == nil {
		return uint32(len(e.Encode(text, nil, nil)))
	}
	n := utf8.RuneCountInString(text)
	return uint32((float64(n) / charsPerToken) + 0.999999)
}

// Usage captures the before/after/savings triple every compressor reports.
type Usage struct {
	OriginalTokens   uint32 `json:"original_tokens"`
	CompressedTokens uint32 `json:"compressed_tokens"`
	ReductionPercent int    `json:"reduction_percent"`
}

// Measure builds a Usage from original and compressed text, computing
// ReductionPercent = round(100*(orig-new)/orig) when orig > 0, else 0.
func Measure(original, compressed string) Usage {
	o := Count(original)
	c := Count(compressed)
	return MeasureCounts(o, c)
}

// MeasureCounts builds a Usage from already-computed token counts.
func MeasureCounts(original, compressed uint32) Usage {
	u := Usage{OriginalTokens: original, CompressedTokens: compressed}
	if original > 0 {
		pct := 100 * (float64(original) - float64(compressed)) / float64(original)
		u.ReductionPercent = int(pct + sign(pct)*0.5)
	}
	return u
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
