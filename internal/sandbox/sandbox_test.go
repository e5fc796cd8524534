package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctxengine/ctxengine/internal/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_BlocksEval(t *testing.T) {
	result := AnalyzeStatic(`eval("1+1")`)
	assert.True(t, result.Blocked())
}

func TestAnalyze_BlocksPathTraversal(t *testing.T) {
	result := AnalyzeStatic(`files.read("../../etc/passwd")`)
	assert.True(t, result.Blocked())
}

func TestAnalyze_WarnsOnInfiniteWhileButDoesNotBlock(t *testing.T) {
	result := AnalyzeStatic(`while(true) { doWork(); }`)
	assert.False(t, result.Blocked())
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "infinite-while", result.Warnings[0].Rule)
}

func TestAnalyze_WarnsOnLargeRepeatOnly(t *testing.T) {
	small := AnalyzeStatic(`"x".repeat(10)`)
	assert.Empty(t, small.Warnings)

	large := AnalyzeStatic(`"x".repeat(2000000)`)
	require.Len(t, large.Warnings, 1)
}

func TestAnalyze_CleanSnippetPasses(t *testing.T) {
	result := AnalyzeStatic(`ctx.utils.countTokens("hello world")`)
	assert.False(t, result.Blocked())
	assert.Empty(t, result.Warnings)
}

func TestPathValidator_RejectsEscape(t *testing.T) {
	dir := t.TempDir()
	v, err := NewPathValidator(dir)
	require.NoError(t, err)

	_, err = v.ValidateFile("../outside.txt")
	assert.Error(t, err)
}

func TestPathValidator_RejectsSecretBasenames(t *testing.T) {
	dir := t.TempDir()
	v, err := NewPathValidator(dir)
	require.NoError(t, err)

	_, err = v.ValidateFile(".env")
	assert.Error(t, err)
	_, err = v.ValidateFile("id_rsa")
	assert.Error(t, err)
}

func TestPathValidator_AllowsFileWithinDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.txt"), []byte("hi"), 0o644))

	v, err := NewPathValidator(dir)
	require.NoError(t, err)
	resolved, err := v.ValidateFile("ok.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ok.txt"), resolved)
}

func TestPathValidator_RejectsTraversalGlob(t *testing.T) {
	dir := t.TempDir()
	v, err := NewPathValidator(dir)
	require.NoError(t, err)
	assert.Error(t, v.ValidateGlob("../*.go"))
	assert.Error(t, v.ValidateGlob("/abs/*.go"))
	assert.NoError(t, v.ValidateGlob("**/*.go"))
}

func TestSecretScanner_EntropyThreshold(t *testing.T) {
	scanner := NewSecretScanner()
	assert.False(t, scanner.LooksLikeSecret("aaaaaaaaaa"))
	assert.True(t, scanner.LooksLikeSecret("aK9$mP2#qR7!xZ4w"))
}

func TestLimits_NormalizedClampsTimeout(t *testing.T) {
	l := Limits{Timeout: time.Hour}.normalized()
	assert.Equal(t, MaxTimeout, l.Timeout)
}

func TestLimits_NormalizedFillsDefaults(t *testing.T) {
	l := Limits{}.normalized()
	assert.Equal(t, DefaultTimeout, l.Timeout)
	assert.Equal(t, int64(DefaultMemoryBytes), l.MemoryBytes)
	assert.Equal(t, uint32(DefaultMaxOutputTokens), l.MaxOutputTokens)
}

func TestSanitize_RewritesWorkdirAndHome(t *testing.T) {
	msg := Sanitize("failed reading /home/user/project/secret.txt under /home/user", "/home/user/project", "/home/user")
	assert.NotContains(t, msg, "/home/user/project")
	assert.Contains(t, msg, "<workdir>")
}

func TestSecureBuffer_DestroyClearsBytes(t *testing.T) {
	buf := NewSecureBuffer([]byte("top-secret"))
	assert.Equal(t, []byte("top-secret"), buf.Bytes())
	buf.Destroy()
	assert.Nil(t, buf.Bytes())
}

func TestRunner_BlocksEvalSnippet(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(dir, DefaultLimits())
	result := runner.Exec(context.Background(), Snippet{
		Source: `eval("danger")`,
		Run: func(ctx context.Context, sdk *SDK) (any, error) {
			return "should not run", nil
		},
	})
	assert.True(t, result.Rejected)
	assert.True(t, result.Static.Blocked())
}

func TestRunner_ExecutesCleanSnippet(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(dir, DefaultLimits())
	result := runner.Exec(context.Background(), Snippet{
		Source: `ctx.utils.countTokens(text)`,
		Run: func(ctx context.Context, sdk *SDK) (any, error) {
			return sdk.Utils().CountTokens("hello world"), nil
		},
	})
	assert.False(t, result.Rejected)
	assert.NotEmpty(t, result.Output)
}

func TestRunner_TimesOutLongRunningSnippet(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(dir, Limits{Timeout: 30 * time.Millisecond})
	result := runner.Exec(context.Background(), Snippet{
		Source: `sleepForever()`,
		Run: func(ctx context.Context, sdk *SDK) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	assert.True(t, result.Rejected)
	assert.Contains(t, result.Error, "timeout")
}

func TestSDK_FilesReadRespectsPathValidator(t *testing.T) {
	dir := t.TempDir()
	sdk, err := NewSDK(dir, nil)
	require.NoError(t, err)
	_, err = sdk.Files().Read(".env")
	assert.Error(t, err)
}

func TestSDK_FilesReadDeniesTraversalRegardlessOfContents(t *testing.T) {
	sdk, err := NewSDK(t.TempDir(), nil)
	require.NoError(t, err)
	_, err = sdk.Files().Read("../../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
}

func TestSDK_UtilsCountTokens(t *testing.T) {
	sdk, err := NewSDK(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Greater(t, sdk.Utils().CountTokens("hello world"), uint32(0))
}

func TestSDK_ConversationMemoryRoundTrip(t *testing.T) {
	sdk, err := NewSDK(t.TempDir(), nil)
	require.NoError(t, err)
	sdk.Conversation().ClearMemory()
	assert.False(t, sdk.Conversation().HasMemory())

	sdk.Conversation().SetMemory(conversation.Result{Summary: "a prior session summary"})
	assert.True(t, sdk.Conversation().HasMemory())
	t.Cleanup(sdk.Conversation().ClearMemory)
}

func TestSDK_MemorySlotIsProcessWide(t *testing.T) {
	first, err := NewSDK(t.TempDir(), nil)
	require.NoError(t, err)
	second, err := NewSDK(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(first.Conversation().ClearMemory)

	first.Conversation().SetMemory(conversation.Result{Summary: "set by the first SDK"})
	mem, ok := second.Conversation().GetMemory()
	require.True(t, ok, "a second SDK must observe the slot the first one wrote")
	assert.Equal(t, "set by the first SDK", mem.Result.Summary)
}

func TestScriptSnippet_RunsStepsInOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("hello sandbox"), 0o644))

	snippet, err := ScriptSnippet([]byte(`[
		{"op": "files.read", "args": {"path": "note.txt"}},
		{"op": "utils.countTokens", "args": {"text": "hello sandbox"}}
	]`))
	require.NoError(t, err)

	runner := NewRunner(dir, DefaultLimits())
	result := runner.Exec(context.Background(), snippet)
	require.False(t, result.Rejected, result.Error)
	assert.Contains(t, result.Output, "hello sandbox")
}

func TestScriptSnippet_BlockedPatternInArgsNeverRuns(t *testing.T) {
	snippet, err := ScriptSnippet([]byte(`[
		{"op": "utils.countTokens", "args": {"text": "process.exit(1)"}}
	]`))
	require.NoError(t, err)

	runner := NewRunner(t.TempDir(), DefaultLimits())
	result := runner.Exec(context.Background(), snippet)
	assert.True(t, result.Rejected)
	assert.True(t, result.Static.Blocked())
	assert.Contains(t, result.Error, "process")
}

func TestScriptSnippet_RejectsNonArrayScript(t *testing.T) {
	_, err := ScriptSnippet([]byte(`{"op": "files.read"}`))
	assert.Error(t, err)
}
