package logs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_ServerLogDetected(t *testing.T) {
	blob := "2024-01-01T10:00:00Z INFO server started listening on port 8080\n" +
		"2024-01-01T10:00:01Z INFO GET /health status=200\n" +
		"2024-01-01T10:00:02Z ERROR GET /users status=500\n"

	summary := Summarize(blob, DetailNormal)
	assert.Equal(t, "server", summary.LogType)
	require.NotEmpty(t, summary.Errors)
}

func TestSummarize_TestLogDetected(t *testing.T) {
	blob := "=== RUN TestFoo\n--- PASS: TestFoo (0.00s)\n=== RUN TestBar\n--- FAIL: TestBar (0.00s)\nFAIL\n"
	summary := Summarize(blob, DetailNormal)
	assert.Equal(t, "test", summary.LogType)
}

func TestSummarize_BuildLogDetected(t *testing.T) {
	blob := "go build ./...\n# github.com/example/pkg\npkg/file.go:10:2: undefined reference to Foo\n"
	summary := Summarize(blob, DetailNormal)
	assert.Equal(t, "build", summary.LogType)
}

func TestSummarize_FallsBackToGeneric(t *testing.T) {
	blob := "the quick brown fox\njumps over the lazy dog\n"
	summary := Summarize(blob, DetailNormal)
	assert.Equal(t, "generic", summary.LogType)
}

func TestSummarize_CapsRespectDetailLevel(t *testing.T) {
	var lines string
	for i := 0; i < 30; i++ {
		lines += "2024-01-01T10:00:00Z ERROR distinct failure number " + string(rune('A'+i)) + "\n"
	}
	summary := Summarize(lines, DetailMinimal)
	assert.LessOrEqual(t, len(summary.Errors), 5)
}

func TestSummarize_KeyEventsMatchLifecyclePatterns(t *testing.T) {
	blob := "server starting up\nprocessing request\nserver shutting down\n"
	summary := Summarize(blob, DetailDetailed)
	assert.NotEmpty(t, summary.KeyEvents)
}

func TestDetailLevel_JSONRoundTrip(t *testing.T) {
	var d DetailLevel
	require.NoError(t, d.UnmarshalJSON([]byte(`"detailed"`)))
	assert.Equal(t, DetailDetailed, d)
}
