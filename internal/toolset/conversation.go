package toolset

import (
	"context"
	"fmt"

	"github.com/ctxengine/ctxengine/internal/conversation"
	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
)

// decodeMessages converts the JSON-decoded `messages` argument
// ([]any of {role, content} objects) into []conversation.Message.
func decodeMessages(args map[string]any) ([]conversation.Message, error) {
	raw, ok := args["messages"]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, registry.InvalidInput("parameter \"messages\" must be an array")
	}
	out := make([]conversation.Message, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, registry.InvalidInput(fmt.Sprintf("messages[%d] must be an object", i))
		}
		role, _ := obj["role"].(string)
		content, _ := obj["content"].(string)
		out = append(out, conversation.Message{Role: conversation.Role(role), Content: content})
	}
	return out, nil
}

func registerConversationTools(reg *registry.Registry, sdk *sandbox.SDK) {
	messagesSchema := registry.InputSchema{Properties: map[string]registry.ParamDef{
		"messages": {Type: registry.ParamTypeArray, Required: true, Description: "Array of {role, content} transcript entries."},
	}}

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "conversation_compress",
		Description: "Compresses a message transcript via rolling-summary, key-extraction, or hybrid strategy.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"messages":        messagesSchema.Properties["messages"],
			"strategy":        {Type: registry.ParamTypeString, Enum: []any{"rolling-summary", "key-extraction", "hybrid"}},
			"max_tokens":      {Type: registry.ParamTypeInteger},
			"preserve_system": {Type: registry.ParamTypeBoolean},
			"preserve_last_n": {Type: registry.ParamTypeInteger},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		messages, err := decodeMessages(args)
		if err != nil {
			return registry.ToolResult{}, err
		}
		opts := conversation.DefaultOptions()
		if s := registry.StringArg(args, "strategy", ""); s != "" {
			opts.Strategy = conversation.Strategy(s)
		}
		opts.MaxTokens = uint32(registry.IntArg(args, "max_tokens", 0))
		opts.PreserveSystem = registry.BoolArg(args, "preserve_system", opts.PreserveSystem)
		opts.PreserveLastN = registry.IntArg(args, "preserve_last_n", opts.PreserveLastN)
		result := sdk.Conversation().Compress(messages, opts)
		return jsonResult(result), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "conversation_extract_decisions",
		Description: "Pulls decision statements out of a message transcript.",
		Category:    registry.CategoryPipeline,
		Schema:      messagesSchema,
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		messages, err := decodeMessages(args)
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(sdk.Conversation().ExtractDecisions(messages)), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "conversation_extract_code_refs",
		Description: "Pulls file and symbol references out of a message transcript.",
		Category:    registry.CategoryPipeline,
		Schema:      messagesSchema,
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		messages, err := decodeMessages(args)
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(sdk.Conversation().ExtractCodeRefs(messages)), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "conversation_create_memory",
		Description: "Creates the process-wide conversation memory slot from a compression result.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"result": {Type: registry.ParamTypeObject, Required: true, Description: "A conversation_compress result."},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		result, err := decodeResult(args)
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(sdk.Conversation().CreateMemory(result)), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "conversation_set_memory",
		Description: "Replaces the process-wide conversation memory slot with a new compression result.",
		Category:    registry.CategoryPipeline,
		Schema: registry.InputSchema{Properties: map[string]registry.ParamDef{
			"result": {Type: registry.ParamTypeObject, Required: true, Description: "A conversation_compress result."},
		}},
	}, func(_ context.Context, args map[string]any) (registry.ToolResult, error) {
		result, err := decodeResult(args)
		if err != nil {
			return registry.ToolResult{}, err
		}
		return jsonResult(sdk.Conversation().SetMemory(result)), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "conversation_get_memory",
		Description: "Reads the process-wide conversation memory slot, if one has been set.",
		Category:    registry.CategoryPipeline,
	}, func(_ context.Context, _ map[string]any) (registry.ToolResult, error) {
		mem, ok := sdk.Conversation().GetMemory()
		if !ok {
			return registry.ToolResult{}, registry.NotFound("no conversation memory has been set")
		}
		return jsonResult(mem), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "conversation_restore",
		Description: "Restores the process-wide conversation memory slot (alias of get for a resuming caller).",
		Category:    registry.CategoryPipeline,
	}, func(_ context.Context, _ map[string]any) (registry.ToolResult, error) {
		mem, ok := sdk.Conversation().Restore()
		if !ok {
			return registry.ToolResult{}, registry.NotFound("no conversation memory to restore")
		}
		return jsonResult(mem), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "conversation_clear_memory",
		Description: "Clears the process-wide conversation memory slot.",
		Category:    registry.CategoryPipeline,
	}, func(_ context.Context, _ map[string]any) (registry.ToolResult, error) {
		sdk.Conversation().ClearMemory()
		return registry.TextResult("cleared"), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "conversation_has_memory",
		Description: "Reports whether the process-wide conversation memory slot is set.",
		Category:    registry.CategoryPipeline,
	}, func(_ context.Context, _ map[string]any) (registry.ToolResult, error) {
		return jsonResult(map[string]bool{"has_memory": sdk.Conversation().HasMemory()}), nil
	}))

	reg.Register(simpleTool(registry.ToolDefinition{
		Name:        "conversation_get_summary",
		Description: "Reads the summary text of the current conversation memory slot, or empty if unset.",
		Category:    registry.CategoryPipeline,
	}, func(_ context.Context, _ map[string]any) (registry.ToolResult, error) {
		return registry.TextResult(sdk.Conversation().GetSummary()), nil
	}))
}

// decodeResult reconstructs a conversation.Result from the generic
// map[string]any a caller passes as `result` (its own prior
// conversation_compress output round-tripped through JSON).
func decodeResult(args map[string]any) (conversation.Result, error) {
	raw, ok := args["result"]
	if !ok {
		return conversation.Result{}, registry.InvalidInput("missing required parameter \"result\"")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return conversation.Result{}, registry.InvalidInput("parameter \"result\" must be an object")
	}

	result := conversation.Result{}
	if s, ok := obj["summary"].(string); ok {
		result.Summary = s
	}
	if n, ok := obj["original_tokens"].(float64); ok {
		result.OriginalTokens = uint32(n)
	}
	if n, ok := obj["compressed_tokens"].(float64); ok {
		result.CompressedTokens = uint32(n)
	}
	if n, ok := obj["savings"].(float64); ok {
		result.Savings = int(n)
	}
	if kp, ok := obj["key_points"].([]any); ok {
		for _, v := range kp {
			if s, ok := v.(string); ok {
				result.KeyPoints = append(result.KeyPoints, s)
			}
		}
	}
	if ds, ok := obj["decisions"].([]any); ok {
		for _, v := range ds {
			if s, ok := v.(string); ok {
				result.Decisions = append(result.Decisions, s)
			}
		}
	}
	if refs, ok := obj["code_references"].([]any); ok {
		for _, v := range refs {
			if s, ok := v.(string); ok {
				result.CodeReferences = append(result.CodeReferences, s)
			}
		}
	}
	if msgs, ok := obj["compressed_messages"].([]any); ok {
		for _, v := range msgs {
			if m, ok := v.(map[string]any); ok {
				role, _ := m["role"].(string)
				content, _ := m["content"].(string)
				result.CompressedMessages = append(result.CompressedMessages, conversation.Message{Role: conversation.Role(role), Content: content})
			}
		}
	}
	return result, nil
}
