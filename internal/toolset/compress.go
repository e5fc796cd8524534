package toolset

import (
	"context"

	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

func registerCompressTools(reg *registry.Registry, sdk *sandbox.SDK) {
	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "compress_auto",
		Description: "Detects a blob's content type and routes it through the matching compressor (logs, diff, or generic semantic compression).",
		Category:    registry.CategoryCompress,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"content": {Type: registry.ParamTypeString, Required: true, Description: "Raw text to compress."},
			"hint":    {Type: registry.ParamTypeString, Description: "Optional content-type override (logs, diff, stacktrace, config, code, generic)."},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		content := registry.StringArg(args, "content", "")
		hint := registry.StringArg(args, "hint", "")
		out, err := sdk.Compress().Auto(content, hint)
		if err != nil {
			return registry.ToolResult{}, err
		}
		return registry.TextResult(out), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "compress_logs",
		Description: "Summarizes a log blob into a capped, deduplicated digest of errors, warnings, and key events.",
		Category:    registry.CategoryCompress,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"content": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		summary := sdk.Compress().Logs(registry.StringArg(args, "content", ""))
		return jsonResult(summary), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "compress_diff",
		Description: "Parses a unified diff and renders a hunks-only compressed view.",
		Category:    registry.CategoryCompress,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"content": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		out, err := sdk.Compress().Diff(registry.StringArg(args, "content", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return registry.TextResult(out), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "compress_semantic",
		Description: "Compresses arbitrary text to a target token ratio by scoring and selecting the most informative segments.",
		Category:    registry.CategoryCompress,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"content": {Type: registry.ParamTypeString, Required: true},
			"ratio":   {Type: registry.ParamTypeNumber, Description: "Target fraction of original tokens to keep (0,1]. Defaults to 0.3.", Tag: "omitempty,gt=0,lte=1"},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		ratio := registry.FloatArg(args, "ratio", 0.3)
		result := sdk.Compress().Semantic(registry.StringArg(args, "content", ""), ratio)
		return jsonResult(result), nil
	}))
}
