package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ctxengine/ctxengine/internal/astx"
	"github.com/ctxengine/ctxengine/internal/conversation"
)

// Step is one SDK operation in a snippet script: a namespaced op name
// ("compress.auto", "files.read", "code.skeleton", ...) plus its
// arguments. Scripts are the data form a caller hands the sandbox; the
// raw script text still passes the static gate before any step runs, so
// a script smuggling a blocked pattern inside an argument string is
// rejected before the first SDK call.
type Step struct {
	Op   string         `json:"op"`
	Args map[string]any `json:"args"`
}

// ParseScript decodes a JSON array of steps.
func ParseScript(source []byte) ([]Step, error) {
	var steps []Step
	if err := json.Unmarshal(source, &steps); err != nil {
		return nil, fmt.Errorf("script must be a JSON array of {op, args} steps: %w", err)
	}
	for i, s := range steps {
		if s.Op == "" {
			return nil, fmt.Errorf("step %d is missing op", i)
		}
	}
	return steps, nil
}

// ScriptSnippet wraps a parsed script as a Snippet: Source carries the
// raw text for the static gate, Run interprets each step against the
// bound SDK in order, collecting per-step results. ctx is checked
// between steps, the sandbox's cooperative cancellation point.
func ScriptSnippet(source []byte) (Snippet, error) {
	steps, err := ParseScript(source)
	if err != nil {
		return Snippet{}, err
	}
	return Snippet{
		Source: string(source),
		Run: func(ctx context.Context, sdk *SDK) (any, error) {
			results := make([]any, 0, len(steps))
			for i, step := range steps {
				if err := ctx.Err(); err != nil {
					return results, err
				}
				out, err := runStep(ctx, sdk, step)
				if err != nil {
					return results, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
				}
				results = append(results, out)
			}
			return results, nil
		},
	}, nil
}

func stepString(step Step, key string) string {
	if v, ok := step.Args[key].(string); ok {
		return v
	}
	return ""
}

func stepInt(step Step, key string, def int) int {
	switch v := step.Args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func stepFloat(step Step, key string, def float64) float64 {
	if v, ok := step.Args[key].(float64); ok {
		return v
	}
	return def
}

func runStep(ctx context.Context, sdk *SDK, step Step) (any, error) {
	switch step.Op {
	case "compress.auto":
		return sdk.Compress().Auto(stepString(step, "content"), stepString(step, "hint"))
	case "compress.logs":
		return sdk.Compress().Logs(stepString(step, "content")), nil
	case "compress.diff":
		return sdk.Compress().Diff(stepString(step, "content"))
	case "compress.semantic":
		return sdk.Compress().Semantic(stepString(step, "content"), stepFloat(step, "ratio", 0)), nil

	case "code.parse":
		return sdk.Code().Parse(ctx, []byte(stepString(step, "content")), stepString(step, "language"))
	case "code.extract":
		kind, err := elementKindFromString(stepString(step, "kind"))
		if err != nil {
			return nil, err
		}
		result, ok := sdk.Code().Extract(ctx, []byte(stepString(step, "content")), stepString(step, "language"),
			astx.ElementTarget{Kind: kind, Name: stepString(step, "name")})
		if !ok {
			return nil, fmt.Errorf("element %q not found", stepString(step, "name"))
		}
		return result, nil
	case "code.skeleton":
		return sdk.Code().Skeleton(ctx, []byte(stepString(step, "content")), stepString(step, "language"))

	case "files.read":
		content, err := sdk.Files().Read(stepString(step, "path"))
		if err != nil {
			return nil, err
		}
		return string(content), nil
	case "files.exists":
		return sdk.Files().Exists(stepString(step, "path")), nil
	case "files.glob":
		return sdk.Files().Glob(stepString(step, "pattern"))

	case "git.diff":
		return sdk.Git().Diff(ctx, stepString(step, "ref"))
	case "git.log":
		return sdk.Git().Log(ctx, stepInt(step, "limit", 100))
	case "git.blame":
		return sdk.Git().Blame(ctx, stepString(step, "file"), stepInt(step, "line", 0))
	case "git.status":
		return sdk.Git().Status(ctx)
	case "git.branch":
		return sdk.Git().Branch(ctx)

	case "search.grep":
		return sdk.Search().Grep(stepString(step, "pattern"), stepString(step, "glob"))
	case "search.symbols":
		return sdk.Search().Symbols(ctx, stepString(step, "query"), stepString(step, "glob"))
	case "search.files":
		return sdk.Search().Files(stepString(step, "pattern"))
	case "search.references":
		return sdk.Search().References(ctx, stepString(step, "symbol"), stepString(step, "glob"))

	case "analyze.dependencies":
		return sdk.Analyze().Dependencies(ctx, stepString(step, "file"))
	case "analyze.exports":
		return sdk.Analyze().Exports(ctx, stepString(step, "file"))
	case "analyze.callGraph":
		return sdk.Analyze().CallGraph(ctx, stepString(step, "function"), stepString(step, "file"), stepInt(step, "depth", 1))
	case "analyze.structure":
		return sdk.Analyze().Structure(stepString(step, "dir"), stepInt(step, "depth", 0))

	case "utils.countTokens":
		return sdk.Utils().CountTokens(stepString(step, "text")), nil
	case "utils.detectType":
		return sdk.Utils().DetectType(stepString(step, "text")), nil
	case "utils.detectLanguage":
		return sdk.Utils().DetectLanguage(stepString(step, "path")), nil

	case "conversation.compress":
		messages, err := stepMessages(step)
		if err != nil {
			return nil, err
		}
		return sdk.Conversation().Compress(messages, conversation.DefaultOptions()), nil
	case "conversation.extractDecisions":
		messages, err := stepMessages(step)
		if err != nil {
			return nil, err
		}
		return sdk.Conversation().ExtractDecisions(messages), nil
	case "conversation.extractCodeRefs":
		messages, err := stepMessages(step)
		if err != nil {
			return nil, err
		}
		return sdk.Conversation().ExtractCodeRefs(messages), nil
	case "conversation.getSummary":
		return sdk.Conversation().GetSummary(), nil
	case "conversation.hasMemory":
		return sdk.Conversation().HasMemory(), nil

	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func stepMessages(step Step) ([]conversation.Message, error) {
	raw, ok := step.Args["messages"].([]any)
	if !ok {
		return nil, fmt.Errorf("messages must be an array of {role, content}")
	}
	out := make([]conversation.Message, 0, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("messages[%d] must be an object", i)
		}
		role, _ := obj["role"].(string)
		content, _ := obj["content"].(string)
		out = append(out, conversation.Message{Role: conversation.Role(role), Content: content})
	}
	return out, nil
}

func elementKindFromString(s string) (astx.ElementKind, error) {
	for kind := astx.KindFunction; kind <= astx.KindExport; kind++ {
		if strings.EqualFold(kind.String(), s) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown element kind %q", s)
}
