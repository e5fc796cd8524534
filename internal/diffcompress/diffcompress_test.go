package diffcompress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,5 +1,6 @@
 package main

+import "fmt"
+
 func main() {
-	println("hi")
+	fmt.Println("hello world")
 }
`

func TestParse_ExtractsFilesAndStats(t *testing.T) {
	result, err := Parse(sampleDiff)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "main.go", result.Files[0].NewPath)
	assert.Greater(t, result.Stats.Additions, 0)
	assert.Greater(t, result.Stats.Deletions, 0)
}

func TestCompress_HunksOnlyDropsContext(t *testing.T) {
	result, err := Parse(sampleDiff)
	require.NoError(t, err)
	out := Compress(result, StrategyHunksOnly, CompressOptions{})
	assert.NotContains(t, out, "package main")
	assert.Contains(t, out, "@@")
	assert.Contains(t, out, "+import \"fmt\"")
}

func TestCompress_SummaryHasNoCode(t *testing.T) {
	result, err := Parse(sampleDiff)
	require.NoError(t, err)
	out := Compress(result, StrategySummary, CompressOptions{})
	assert.NotContains(t, out, "fmt.Println")
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "files changed")
}

func TestCompress_SemanticKeepsAtLeastOneHunkPerFile(t *testing.T) {
	result, err := Parse(sampleDiff)
	require.NoError(t, err)
	out := Compress(result, StrategySemantic, CompressOptions{TargetRatio: 0.01})
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "@@")
}

const threeFileDiff = `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
@@ -1,4 +1,10 @@
+l1
+l2
+l3
+l4
+l5
+l6
+l7
+l8
+l9
+l10
-d1
-d2
-d3
-d4
diff --git a/b.go b/b.go
--- a/b.go
+++ b/b.go
@@ -0,0 +1,2 @@
+x1
+x2
diff --git a/c.go b/c.go
--- a/c.go
+++ b/c.go
@@ -1,3 +0,0 @@
-y1
-y2
-y3
`

func TestCompress_SummaryPerFileLinesAndTotals(t *testing.T) {
	result, err := Parse(threeFileDiff)
	require.NoError(t, err)

	assert.Equal(t, 12, result.Stats.Additions)
	assert.Equal(t, 7, result.Stats.Deletions)

	out := Compress(result, StrategySummary, CompressOptions{})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "M a.go (+10/-4)", lines[0])
	assert.Equal(t, "M b.go (+2/-0)", lines[1])
	assert.Equal(t, "M c.go (+0/-3)", lines[2])
	assert.Equal(t, "3 files changed, +12/-7", lines[3])
}

func TestParse_PerFileStatsSumToTotals(t *testing.T) {
	result, err := Parse(threeFileDiff)
	require.NoError(t, err)

	var adds, dels int
	for _, f := range result.Files {
		adds += f.Additions
		dels += f.Deletions
	}
	assert.Equal(t, result.Stats.Additions, adds)
	assert.Equal(t, result.Stats.Deletions, dels)
}

func TestClassifyRisk_CredentialPathIsCritical(t *testing.T) {
	h := Hunk{Lines: []DiffLine{{Type: LineAdded, Content: "x"}}}
	assert.Equal(t, RiskCritical, classifyRisk(h, "config/secrets.yaml"))
}

func TestClassifyRisk_PureAdditionIsLow(t *testing.T) {
	h := Hunk{Lines: []DiffLine{{Type: LineAdded, Content: "x"}, {Type: LineAdded, Content: "y"}}}
	assert.Equal(t, RiskLow, classifyRisk(h, "app.go"))
}
