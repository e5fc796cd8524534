package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze_DetectsDiff(t *testing.T) {
	blob := "diff --git a/foo.go b/foo.go\n@@ -1,2 +1,2 @@\n-old\n+new\n"
	result := Analyze(blob)
	assert.Equal(t, TypeDiff, result.DetectedType)
}

func TestAnalyze_DetectsStacktrace(t *testing.T) {
	blob := "Traceback (most recent call last):\n  File \"app.py\", line 42, in run\n    raise ValueError()\n"
	result := Analyze(blob)
	assert.Equal(t, TypeStackTrace, result.DetectedType)
}

func TestAnalyze_DetectsLogs(t *testing.T) {
	blob := "2024-01-01T10:00:00 starting\n2024-01-01T10:00:01 running\n2024-01-01T10:00:02 done\n"
	result := Analyze(blob)
	assert.Equal(t, TypeLogs, result.DetectedType)
}

func TestAnalyze_DetectsConfig(t *testing.T) {
	blob := "host: localhost\nport: 8080\ntimeout: 30s\ndebug: true\n"
	result := Analyze(blob)
	assert.Equal(t, TypeConfig, result.DetectedType)
}

func TestAnalyze_DetectsCode(t *testing.T) {
	blob := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	result := Analyze(blob)
	assert.Equal(t, TypeCode, result.DetectedType)
}

func TestAnalyze_FallsBackToGeneric(t *testing.T) {
	blob := "hello there, this is just prose with no structure to speak of."
	result := Analyze(blob)
	assert.Equal(t, TypeGeneric, result.DetectedType)
}

func TestAnalyze_IsPure(t *testing.T) {
	blob := "diff --git a/x b/x\n@@ -1 +1 @@\n"
	a := Analyze(blob)
	b := Analyze(blob)
	assert.Equal(t, a, b)
}
