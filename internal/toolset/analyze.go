package toolset

import (
	"context"

	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

func registerAnalyzeTools(reg *registry.Registry, sdk *sandbox.SDK) {
	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "analyze_dependencies",
		Description: "Lists the import targets named in a file's parsed import list.",
		Category:    registry.CategoryAnalyze,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"file": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		deps, err := sdk.Analyze().Dependencies(ctx, registry.StringArg(args, "file", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(deps), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "analyze_exports",
		Description: "Lists every exported element in a file.",
		Category:    registry.CategoryAnalyze,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"file": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		exports, err := sdk.Analyze().Exports(ctx, registry.StringArg(args, "file", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(exports), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "analyze_call_graph",
		Description: "Finds a function's definition in a file and reports the functions its body calls by name.",
		Category:    registry.CategoryAnalyze,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"function": {Type: registry.ParamTypeString, Required: true},
			"file":     {Type: registry.ParamTypeString, Required: true},
			"depth":    {Type: registry.ParamTypeInteger, Description: "Accepted for forward compatibility; only one hop is expanded today."},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		called, err := sdk.Analyze().CallGraph(ctx, registry.StringArg(args, "function", ""), registry.StringArg(args, "file", ""), registry.IntArg(args, "depth", 1))
		if err != nil {
			return registry.ToolResult{}, registry.NotFound(err.Error())
		}
		return jsonResult(called), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "analyze_structure",
		Description: "Walks a directory up to a depth and reports every file path encountered.",
		Category:    registry.CategoryAnalyze,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"dir":   {Type: registry.ParamTypeString, Description: "Defaults to the working directory root."},
			"depth": {Type: registry.ParamTypeInteger, Description: "0 means unlimited."},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		paths, err := sdk.Analyze().Structure(registry.StringArg(args, "dir", ""), registry.IntArg(args, "depth", 0))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(paths), nil
	}))
}
