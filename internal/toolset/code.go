package toolset

import (
	"context"

	"github.com/ctxengine/ctxengine/internal/astx"
	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

func registerCodeTools(reg *registry.Registry, sdk *sandbox.SDK) {
	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "code_parse",
		Description: "Parses source into a language-agnostic FileStructure of functions, classes, imports, and other elements.",
		Category:    registry.CategoryCode,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"content":  {Type: registry.ParamTypeString, Required: true},
			"language": {Type: registry.ParamTypeString, Description: "go, python, typescript, javascript, or generic."},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		fs, err := sdk.Code().Parse(ctx, []byte(registry.StringArg(args, "content", "")), registry.StringArg(args, "language", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(fs), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "code_extract",
		Description: "Extracts the source lines for one named function, class, or other element.",
		Category:    registry.CategoryCode,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"content":  {Type: registry.ParamTypeString, Required: true},
			"language": {Type: registry.ParamTypeString},
			"kind":     {Type: registry.ParamTypeString, Required: true, Enum: []any{"function", "method", "class", "interface", "type", "variable", "import", "export"}},
			"name":     {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		kind, err := parseElementKind(registry.StringArg(args, "kind", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		target := astx.ElementTarget{Kind: kind, Name: registry.StringArg(args, "name", "")}
		result, ok := sdk.Code().Extract(ctx, []byte(registry.StringArg(args, "content", "")), registry.StringArg(args, "language", ""), target)
		if !ok {
			return registry.ToolResult{}, registry.NotFound("element " + target.Name + " not found")
		}
		return jsonResult(result), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "code_skeleton",
		Description: "Renders a signatures-only view of a source file, grouped by element kind with bodies omitted.",
		Category:    registry.CategoryCode,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"content":  {Type: registry.ParamTypeString, Required: true},
			"language": {Type: registry.ParamTypeString},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		skeleton, err := sdk.Code().Skeleton(ctx, []byte(registry.StringArg(args, "content", "")), registry.StringArg(args, "language", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return registry.TextResult(skeleton), nil
	}))
}
