package toolset

import (
	"context"
	"time"

	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

func registerPipelineTools(reg *registry.Registry, sdk *sandbox.SDK) {
	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "pipeline_execute",
		Description: "Runs a snippet script (a JSON array of {op, args} SDK steps) under the sandbox's static gate, path validation, and resource limits.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"script":     {Type: registry.ParamTypeString, Required: true, Description: "JSON array of steps, e.g. [{\"op\":\"compress.auto\",\"args\":{\"content\":\"...\"}}]."},
			"timeout_ms": {Type: registry.ParamTypeInteger, Description: "Wall-clock cap in milliseconds, clamped to the sandbox maximum.", Tag: "omitempty,min=1"},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		source := registry.StringArg(args, "script", "")

		limits := sandbox.DefaultLimits()
		if ms := registry.IntArg(args, "timeout_ms", 0); ms > 0 {
			limits.Timeout = time.Duration(ms) * time.Millisecond
		}

		snippet, err := sandbox.ScriptSnippet([]byte(source))
		if err != nil {
			return registry.ToolResult{}, registry.InvalidInput(err.Error())
		}

		runner := sandbox.NewRunner(sdk.WorkingDir, limits)
		run := runner.Exec(ctx, snippet)
		if run.Rejected {
			if run.Static.Blocked() {
				return registry.ToolResult{}, registry.NewError(registry.KindSandboxBlocked, run.Error, nil)
			}
			return registry.ToolResult{}, registry.ResourceExceeded(run.Error)
		}

		result := registry.TextResult(run.Output)
		if run.Truncated {
			result.Metadata = map[string]any{"truncated": true}
		}
		if len(run.Static.Warnings) > 0 {
			if result.Metadata == nil {
				result.Metadata = map[string]any{}
			}
			warnings := make([]string, len(run.Static.Warnings))
			for i, w := range run.Static.Warnings {
				warnings[i] = w.Rule
			}
			result.Metadata["static_warnings"] = warnings
		}
		return result, nil
	}))
}
