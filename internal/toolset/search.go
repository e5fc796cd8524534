package toolset

import (
	"context"

	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

func registerSearchTools(reg *registry.Registry, sdk *sandbox.SDK) {
	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "search_grep",
		Description: "Searches files matching a glob for a regular expression, line by line.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"pattern": {Type: registry.ParamTypeString, Required: true},
			"glob":    {Type: registry.ParamTypeString, Description: "Defaults to **/*."},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		matches, err := sdk.Search().Grep(registry.StringArg(args, "pattern", ""), registry.StringArg(args, "glob", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(matches), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "search_symbols",
		Description: "Searches parsed code elements whose name matches a query (exact, prefix, substring, then near-miss spelling), across files matching a glob.",
		Category:    registry.CategoryCode,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"query": {Type: registry.ParamTypeString, Required: true},
			"glob":  {Type: registry.ParamTypeString},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		refs, err := sdk.Search().Symbols(ctx, registry.StringArg(args, "query", ""), registry.StringArg(args, "glob", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(refs), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "search_files",
		Description: "Lists working-directory-relative paths matching a glob.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"pattern": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		matches, err := sdk.Search().Files(registry.StringArg(args, "pattern", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(matches), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "search_references",
		Description: "Finds every line containing a plain-text occurrence of a symbol, across files matching a glob, ranked by BM25 relevance to the symbol.",
		Category:    registry.CategoryCode,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"symbol": {Type: registry.ParamTypeString, Required: true},
			"glob":   {Type: registry.ParamTypeString},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		matches, err := sdk.Search().References(ctx, registry.StringArg(args, "symbol", ""), registry.StringArg(args, "glob", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(matches), nil
	}))
}
