// Package toolset wires the sandbox SDK's namespaces (spec §6) to concrete
// registry.Tool instances: the tool-protocol surface an external caller
// actually dispatches against. Each tool here is a thin FuncTool wrapper —
// argument decoding plus one SDK call — grounded in the teacher's
// agent/tools adapter pattern (MockTool.ExecuteFunc generalized to a
// production http.HandlerFunc-style closure).
package toolset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ctxengine/ctxengine/internal/astx"
	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

// RegisterAll mounts every tool this package defines onto reg, bound to
// sdk. Tools with no meaningful setup cost are registered eagerly; this
// engine has none expensive enough to warrant RegisterLazy today, but a
// future parser-grammar-backed tool would use it the same way C4's
// Registry defers tree-sitter construction.
func RegisterAll(reg *registry.Registry, sdk *sandbox.SDK) {
	registerCompressTools(reg, sdk)
	registerCodeTools(reg, sdk)
	registerFileTools(reg, sdk)
	registerGitTools(reg, sdk)
	registerSearchTools(reg, sdk)
	registerAnalyzeTools(reg, sdk)
	registerUtilsTools(reg, sdk)
	registerConversationTools(reg, sdk)
	registerPipelineTools(reg, sdk)
}

// jsonResult marshals v as a single text content block. Every tool in this
// package returns structured data this way rather than a bespoke string
// format, so a caller gets one decoding rule for the whole catalog.
func jsonResult(v any) registry.ToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return registry.ErrorResult(fmt.Sprintf("encoding result: %v", err))
	}
	return registry.TextResult(string(b))
}

var elementKindNames = map[string]astx.ElementKind{
	"function":  astx.KindFunction,
	"method":    astx.KindMethod,
	"class":     astx.KindClass,
	"interface": astx.KindInterface,
	"type":      astx.KindType,
	"variable":  astx.KindVariable,
	"import":    astx.KindImport,
	"export":    astx.KindExport,
}

func parseElementKind(s string) (astx.ElementKind, error) {
	if k, ok := elementKindNames[s]; ok {
		return k, nil
	}
	return 0, registry.InvalidInput(fmt.Sprintf("unknown element kind %q", s))
}

// simpleTool builds a FuncTool from a definition and a handler, the shape
// every tool in this package shares.
func simpleTool(def registry.ToolDefinition, fn func(ctx context.Context, args map[string]any) (registry.ToolResult, error)) registry.Tool {
	return registry.FuncTool{Def: def, Fn: fn}
}
