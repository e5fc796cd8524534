package registry

import "context"

// FuncTool adapts a plain function to the Tool interface, the production
// equivalent of the teacher's test-only MockTool.ExecuteFunc field. Most
// of this engine's tools are thin wrappers around an SDK method with no
// state of their own, so a struct-per-tool would be pure boilerplate —
// FuncTool is the idiomatic http.HandlerFunc-style adapter for that case.
type FuncTool struct {
	Def ToolDefinition
	Fn  func(ctx context.Context, args map[string]any) (ToolResult, error)
}

func (t FuncTool) Name() string             { return t.Def.Name }
func (t FuncTool) Category() Category       { return t.Def.Category }
func (t FuncTool) Definition() ToolDefinition { return t.Def }
func (t FuncTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	return t.Fn(ctx, args)
}
