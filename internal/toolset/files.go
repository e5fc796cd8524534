package toolset

import (
	"context"

	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

func registerFileTools(reg *registry.Registry, sdk *sandbox.SDK) {
	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "files_read",
		Description: "Reads a file relative to the working directory, subject to path validation.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"path": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		content, err := sdk.Files().Read(registry.StringArg(args, "path", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return registry.TextResult(string(content)), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "files_exists",
		Description: "Reports whether a path exists within the working directory.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"path": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		exists := sdk.Files().Exists(registry.StringArg(args, "path", ""))
		return jsonResult(map[string]bool{"exists": exists}), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "files_glob",
		Description: "Lists working-directory-relative paths matching a glob pattern.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"pattern": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		matches, err := sdk.Files().Glob(registry.StringArg(args, "pattern", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(matches), nil
	}))
}
