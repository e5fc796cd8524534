package toolset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctxengine/internal/astx"
	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

func newTestRegistry(t *testing.T) (*registry.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	sdk, err := sandbox.NewSDK(dir, astx.NewRegistry(0))
	require.NoError(t, err)

	reg := registry.NewRegistry()
	RegisterAll(reg, sdk)
	return reg, dir
}

func TestRegisterAll_MountsEveryNamespace(t *testing.T) {
	reg, _ := newTestRegistry(t)
	names := map[string]bool{}
	for _, def := range reg.Available() {
		names[def.Name] = true
	}
	for _, want := range []string{
		"compress_auto", "compress_logs", "compress_diff", "compress_semantic",
		"code_parse", "code_extract", "code_skeleton",
		"files_read", "files_exists", "files_glob",
		"git_diff", "git_log", "git_blame", "git_status", "git_branch",
		"search_grep", "search_symbols", "search_files", "search_references",
		"analyze_dependencies", "analyze_exports", "analyze_call_graph", "analyze_structure",
		"utils_count_tokens", "utils_detect_type", "utils_detect_language", "logs_summarize",
		"conversation_compress", "conversation_extract_decisions", "conversation_extract_code_refs",
		"conversation_create_memory", "conversation_set_memory", "conversation_get_memory",
		"conversation_restore", "conversation_clear_memory", "conversation_has_memory",
		"conversation_get_summary", "pipeline_execute",
	} {
		assert.True(t, names[want], "expected tool %q to be registered", want)
	}
}

func TestCompressAuto_DispatchesThroughRegistry(t *testing.T) {
	reg, _ := newTestRegistry(t)
	result := reg.Dispatch(context.Background(), "compress_auto", map[string]any{"content": "2024-01-01T00:00:00Z INFO started"})
	require.False(t, result.IsError)
	assert.NotEmpty(t, result.Text())
}

func TestFilesGlob_ListsWrittenFile(t *testing.T) {
	reg, _ := newTestRegistry(t)
	result := reg.Dispatch(context.Background(), "files_glob", map[string]any{"pattern": "*.go"})
	require.False(t, result.IsError)
	assert.Contains(t, result.Text(), "main.go")
}

func TestCodeParse_ReturnsFunctions(t *testing.T) {
	reg, _ := newTestRegistry(t)
	result := reg.Dispatch(context.Background(), "code_parse", map[string]any{
		"content":  "package main\n\nfunc main() {}\n",
		"language": "go",
	})
	require.False(t, result.IsError)
	assert.Contains(t, result.Text(), "main")
}

func TestAnalyzeCallGraph_MissingFunctionIsNotFound(t *testing.T) {
	reg, _ := newTestRegistry(t)
	result := reg.Dispatch(context.Background(), "analyze_call_graph", map[string]any{
		"function": "doesNotExist",
		"file":     "main.go",
	})
	assert.True(t, result.IsError)
}

func TestConversationMemory_RoundTripsThroughRegistry(t *testing.T) {
	reg, _ := newTestRegistry(t)

	compressed := reg.Dispatch(context.Background(), "conversation_compress", map[string]any{
		"messages": []any{
			map[string]any{"role": "user", "content": "Let's use Postgres for storage."},
			map[string]any{"role": "assistant", "content": "Sounds good, I'll wire up internal/store."},
		},
	})
	require.False(t, compressed.IsError)

	var compressedResult map[string]any
	require.NoError(t, json.Unmarshal([]byte(compressed.Text()), &compressedResult))
	created := reg.Dispatch(context.Background(), "conversation_create_memory", map[string]any{"result": compressedResult})
	require.False(t, created.IsError, created.Text())
	stored := reg.Dispatch(context.Background(), "conversation_has_memory", nil)
	require.False(t, stored.IsError)
	assert.Contains(t, stored.Text(), "true")

	reg.Dispatch(context.Background(), "conversation_clear_memory", nil)
	has := reg.Dispatch(context.Background(), "conversation_has_memory", nil)
	require.False(t, has.IsError)
	assert.Contains(t, has.Text(), "false")
}

func TestPipelineExecute_RunsScriptUnderGate(t *testing.T) {
	reg, _ := newTestRegistry(t)

	ok := reg.Dispatch(context.Background(), "pipeline_execute", map[string]any{
		"script": `[{"op": "utils.countTokens", "args": {"text": "hello"}}]`,
	})
	require.False(t, ok.IsError, ok.Text())

	blocked := reg.Dispatch(context.Background(), "pipeline_execute", map[string]any{
		"script": `[{"op": "utils.countTokens", "args": {"text": "process.exit(1)"}}]`,
	})
	assert.True(t, blocked.IsError)
	assert.Contains(t, blocked.Text(), "process")
}
