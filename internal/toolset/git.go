package toolset

import (
	"context"

	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

func registerGitTools(reg *registry.Registry, sdk *sandbox.SDK) {
	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "git_diff",
		Description: "Runs `git diff` (optionally against a ref) in the working directory.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"ref": {Type: registry.ParamTypeString, Description: "Optional commit/branch to diff against."},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		out, err := sdk.Git().Diff(ctx, registry.StringArg(args, "ref", ""))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return registry.TextResult(out), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "git_log",
		Description: "Runs `git log --oneline` capped at a commit limit (default/max 100).",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"limit": {Type: registry.ParamTypeInteger, Description: "Number of commits, 1-100."},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		out, err := sdk.Git().Log(ctx, registry.IntArg(args, "limit", 100))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return registry.TextResult(out), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "git_blame",
		Description: "Runs `git blame` on a file, optionally scoped to one line.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"file": {Type: registry.ParamTypeString, Required: true},
			"line": {Type: registry.ParamTypeInteger, Description: "1-indexed line to scope the blame to."},
		}},
	}, func(ctx context.Context, args map[string]any) (registry.ToolResult, error) {
		out, err := sdk.Git().Blame(ctx, registry.StringArg(args, "file", ""), registry.IntArg(args, "line", 0))
		if err != nil {
			return registry.ToolResult{}, err
		}
		return registry.TextResult(out), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "git_status",
		Description: "Runs `git status --short` in the working directory.",
		Category:    registry.CategoryPipeline,
	}, func(ctx context.Context, _ map[string]any) (registry.ToolResult, error) {
		out, err := sdk.Git().Status(ctx)
		if err != nil {
			return registry.ToolResult{}, err
		}
		return registry.TextResult(out), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "git_branch",
		Description: "Reports the working directory's current branch name.",
		Category:    registry.CategoryPipeline,
	}, func(ctx context.Context, _ map[string]any) (registry.ToolResult, error) {
		out, err := sdk.Git().Branch(ctx)
		if err != nil {
			return registry.ToolResult{}, err
		}
		return registry.TextResult(out), nil
	}))
}
