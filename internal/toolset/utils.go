package toolset

import (
	"context"

	"github.com/ctxengine/ctxengine/internal/logs"
	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

func registerUtilsTools(reg *registry.Registry, sdk *sandbox.SDK) {
	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "utils_count_tokens",
		Description: "Counts the tokens a string would cost under the engine's tokenizer.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"text": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		count := sdk.Utils().CountTokens(registry.StringArg(args, "text", ""))
		return jsonResult(map[string]uint32{"tokens": count}), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "utils_detect_type",
		Description: "Classifies a text blob's content type (logs, diff, stacktrace, config, code, generic) with a confidence score.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"text": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		result := sdk.Utils().DetectType(registry.StringArg(args, "text", ""))
		return jsonResult(result), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "utils_detect_language",
		Description: "Infers a programming language from a file path's extension.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"path": {Type: registry.ParamTypeString, Required: true},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		lang := sdk.Utils().DetectLanguage(registry.StringArg(args, "path", ""))
		return jsonResult(map[string]string{"language": string(lang)}), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "logs_summarize",
		Description: "Summarizes a log blob at a chosen detail level (minimal, normal, detailed), independent of content-type auto-routing.",
		Category:    registry.CategoryLogs,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"content": {Type: registry.ParamTypeString, Required: true},
			"detail":  {Type: registry.ParamTypeString, Enum: []any{"minimal", "normal", "detailed"}},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		detail := parseDetailLevel(registry.StringArg(args, "detail", "normal"))
		summary := logs.Summarize(registry.StringArg(args, "content", ""), detail)
		return jsonResult(summary), nil
	}))
}

func parseDetailLevel(s string) logs.DetailLevel {
	switch s {
	case "minimal":
		return logs.DetailMinimal
	case "detailed":
		return logs.DetailDetailed
	default:
		return logs.DetailNormal
	}
}
