package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/ctxengine/ctxengine/internal/astx"
	"github.com/ctxengine/ctxengine/internal/tokens"
)

// Snippet is an untrusted unit of work: its source (for the static gate)
// and a function that runs against the bound SDK.
type Snippet struct {
	Source string
	Run    func(ctx context.Context, sdk *SDK) (any, error)
}

// RunResult is one sandbox execution's outcome.
type RunResult struct {
	Output    string
	Static    StaticResult
	Truncated bool
	Duration  time.Duration
	// Rejected is true when the run never completed: the static gate
	// blocked it, it exceeded its timeout, or it returned an error. Error
	// holds the sanitized reason in that case.
	Rejected bool
	Error    string
}

// Runner ties the static analyzer, path validator, and resource limits
// together around one Snippet execution.
type Runner struct {
	WorkingDir string
	Limits     Limits
	registry   *astx.Registry
}

// NewRunner returns a Runner rooted at workingDir with the given limits
// (normalized against spec maxima).
func NewRunner(workingDir string, limits Limits) *Runner {
	return &Runner{WorkingDir: workingDir, Limits: limits.normalized(), registry: astx.NewRegistry(5 * 1024 * 1024)}
}

// Exec runs snippet under the gate and resource limits. A blocked static
// result short-circuits execution with Rejected=true; it never calls
// snippet.Run.
func (r *Runner) Exec(ctx context.Context, snippet Snippet) RunResult {
	ctx, span := startRunSpan(ctx, r.WorkingDir)
	defer span.End()

	// The untrusted source lives in locked memory for the duration of the
	// run and is zeroed on every exit path.
	src := NewSecureBuffer([]byte(snippet.Source))
	defer src.Destroy()

	static := AnalyzeStatic(string(src.Bytes()))
	if static.Blocked() {
		recordBlocked(ctx)
		rules := make([]string, len(static.Violations))
		for i, v := range static.Violations {
			rules[i] = v.Rule
		}
		return RunResult{Static: static, Rejected: true, Error: "blocked by static analyzer: " + strings.Join(rules, ", ")}
	}

	homeDir, _ := os.UserHomeDir()
	sdk, err := NewSDK(r.WorkingDir, r.registry)
	if err != nil {
		return RunResult{Static: static, Rejected: true, Error: Sanitize(err.Error(), r.WorkingDir, homeDir)}
	}

	runCtx, cancel := context.WithTimeout(ctx, r.Limits.Timeout)
	defer cancel()

	start := timeNow()
	type execOutcome struct {
		value any
		err   error
	}
	done := make(chan execOutcome, 1)
	go func() {
		value, err := snippet.Run(runCtx, sdk)
		done <- execOutcome{value: value, err: err}
	}()

	var outcome execOutcome
	select {
	case outcome = <-done:
	case <-runCtx.Done():
		duration := timeNow().Sub(start)
		recordRun(ctx, duration, false)
		return RunResult{
			Static:   static,
			Duration: duration,
			Rejected: true,
			Error:    Sanitize((&TimeoutError{Timeout: r.Limits.Timeout}).Error(), r.WorkingDir, homeDir),
		}
	}
	duration := timeNow().Sub(start)

	if outcome.err != nil {
		recordRun(ctx, duration, false)
		errMsg := outcome.err.Error()
		if errors.Is(outcome.err, context.DeadlineExceeded) {
			errMsg = (&TimeoutError{Timeout: r.Limits.Timeout}).Error()
		}
		return RunResult{
			Static:   static,
			Duration: duration,
			Rejected: true,
			Error:    Sanitize(errMsg, r.WorkingDir, homeDir),
		}
	}

	serialized, err := json.Marshal(outcome.value)
	if err != nil {
		recordRun(ctx, duration, false)
		return RunResult{Static: static, Duration: duration, Rejected: true, Error: "serializing result: " + err.Error()}
	}

	output := string(serialized)
	truncated := false
	if tokens.Count(output) > r.Limits.MaxOutputTokens {
		output = truncateToTokens(output, r.Limits.MaxOutputTokens) + OutputTruncatedSuffix
		truncated = true
		recordTruncated(ctx)
	}

	recordRun(ctx, duration, true)
	return RunResult{Output: output, Static: static, Duration: duration, Truncated: truncated}
}

// truncateToTokens clips s to approximately maxTokens tokens using the
// tokenizer's ~4-chars/token heuristic, then re-verifies by count.
func truncateToTokens(s string, maxTokens uint32) string {
	approxChars := int(maxTokens) * 4
	if approxChars >= len(s) {
		return s
	}
	clipped := s[:approxChars]
	for tokens.Count(clipped) > maxTokens && len(clipped) > 0 {
		clipped = clipped[:len(clipped)-1]
	}
	return clipped
}

func timeNow() time.Time { return time.Now() }
