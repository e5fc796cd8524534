package detect

import (
	"regexp"
	"strings"
)

// ContentType is the closed set of content classifications C2 routes on.
type ContentType string

const (
	TypeLogs       ContentType = "logs"
	TypeStackTrace ContentType = "stacktrace"
	TypeDiff       ContentType = "diff"
	TypeConfig     ContentType = "config"
	TypeCode       ContentType = "code"
	TypeGeneric    ContentType = "generic"
)

var (
	logTimestampRE = regexp.MustCompile(`(?m)^\s*(\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}|\d{2}:\d{2}:\d{2})`)
	logLevelRE     = regexp.MustCompile(`(?i)\[(error|warn(ing)?|info|debug)\]`)
	stackFrameRE   = regexp.MustCompile(`(?m)^\s*at\s+\S+\s*\([^)]*:\d+:\d+\)`)
	pyTracebackRE  = regexp.MustCompile(`(?m)^\s*File\s+"[^"]+",\s*line\s*\d+`)
	diffHeaderRE   = regexp.MustCompile(`(?m)^diff --git |^@@ .* @@`)
	configLineRE   = regexp.MustCompile(`(?m)^\s*[A-Za-z_][\w.-]*\s*[:=]\s*\S`)
	configBraceRE  = regexp.MustCompile(`^\s*[\{\[]`)
)

// Result is the outcome of Analyze: the winning type, its confidence, and
// the per-type scores that produced it.
type Result struct {
	DetectedType ContentType            `json:"detected_type"`
	Confidence   float64                `json:"confidence"`
	Scores       map[ContentType]float64 `json:"scores"`
}

// Analyze classifies blob into one of the six closed content types.
//
// Analyze is pure and side-effect free: each scorer is a regex vote
// normalized by line count, and the argmax wins; ties break toward
// TypeGeneric.
func Analyze(blob string) Result {
	lines := strings.Split(blob, "\n")
	n := float64(len(lines))
	if n == 0 {
		n = 1
	}

	scores := map[ContentType]float64{}

	if diffHeaderRE.MatchString(blob) {
		scores[TypeDiff] = 1.0
	} else {
		scores[TypeDiff] = 0
	}

	scores[TypeStackTrace] = frameScore(blob, n)
	scores[TypeLogs] = logScore(blob, n)
	scores[TypeConfig] = configScore(lines, n)

	if lang := FromContent(blob); lang != LangGeneric {
		scores[TypeCode] = 1.0
	} else {
		scores[TypeCode] = 0
	}
	scores[TypeGeneric] = 0.05 // small constant floor so generic always has a score

	best := TypeGeneric
	bestScore := scores[TypeGeneric]
	// Deterministic iteration order for tie-breaking toward generic: check
	// every non-generic type first, generic last, keep strictly-greater.
	order := []ContentType{TypeDiff, TypeStackTrace, TypeLogs, TypeConfig, TypeCode}
	for _, t := range order {
		if scores[t] > bestScore {
			best = t
			bestScore = scores[t]
		}
	}

	conf := bestScore
	if conf > 1 {
		conf = 1
	}
	return Result{DetectedType: best, Confidence: conf, Scores: scores}
}

func frameScore(blob string, n float64) float64 {
	frames := len(stackFrameRE.FindAllString(blob, -1)) + len(pyTracebackRE.FindAllString(blob, -1))
	if frames == 0 {
		return 0
	}
	return minF(1.0, float64(frames)/n*3)
}

func logScore(blob string, n float64) float64 {
	tsLines := len(logTimestampRE.FindAllString(blob, -1))
	levelLines := len(logLevelRE.FindAllString(blob, -1))
	ratio := float64(tsLines) / n
	if ratio >= 0.3 {
		return minF(1.0, ratio+0.2)
	}
	if levelLines > 0 {
		return minF(1.0, float64(levelLines)/n*2)
	}
	return 0
}

func configScore(lines []string, n float64) float64 {
	hits := 0
	for _, l := range lines {
		if configLineRE.MatchString(l) || configBraceRE.MatchString(l) {
			hits++
		}
	}
	ratio := float64(hits) / n
	if ratio >= 0.5 {
		return minF(1.0, ratio)
	}
	return 0
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
