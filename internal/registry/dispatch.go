package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ctxengine/ctxengine/internal/tokens"
)

// Dispatch runs the full C12 pipeline for one tool invocation (spec
// §4.12):
//
//  1. tokensIn = count(json(args))
//  2. build a DispatchContext
//  3. run middleware.Before in order; any skip=true filters the call
//  4. execute the tool (loading it on demand if it's only "available");
//     a panic in the tool is recovered as an ExternalFailure error
//  5. tokensOut = count(join(content.text))
//  6. run middleware.After in reverse order
//  7. on error, run middleware.OnError in order; first non-nil wins,
//     otherwise synthesize {isError:true, content:["Error executing
//     X: …"]}
//
// Unknown tool names yield {isError:true, content:["Unknown tool:
// …"]} per spec §6, without running any middleware.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) ToolResult {
	if args == nil {
		args = map[string]any{}
	}
	argsJSON, _ := json.Marshal(args)
	tokensIn := tokens.Count(string(argsJSON))

	entry := r.get(name)
	if entry == nil {
		return ToolResult{
			Content:   []ContentBlock{{Type: "text", Text: "Unknown tool: " + name}},
			IsError:   true,
			TokensIn:  tokensIn,
			TokensOut: tokensIn,
		}
	}

	dc := &DispatchContext{
		Name:      name,
		Args:      args,
		StartTime: time.Now(),
		Metadata:  map[string]any{},
	}

	chain := r.middlewareSnapshot()
	for _, mw := range chain {
		skip, err := mw.Before(ctx, dc)
		if err != nil {
			dc.MiddlewareErrors = append(dc.MiddlewareErrors, err)
			continue
		}
		if skip {
			return ToolResult{WasFiltered: true, TokensIn: tokensIn, TokensOut: 0, TokensSaved: 0, Metadata: dc.Metadata}
		}
	}

	if err := ValidateArgs(entry.meta.Schema, args); err != nil {
		return r.handleError(ctx, dc, chain, err, tokensIn)
	}

	r.ensureLoaded(name)
	entry = r.get(name)
	if entry == nil || entry.tool == nil {
		return r.handleError(ctx, dc, chain, NewError(KindNotFound, "tool "+name+" could not be loaded", nil), tokensIn)
	}

	execCtx, cancel := context.WithDeadline(ctx, dc.StartTime.Add(r.dispatchTimeout()))
	defer cancel()

	result, err := func() (res ToolResult, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = ExternalFailure("tool "+name+" panicked", fmt.Errorf("%v", p))
			}
		}()
		return entry.tool.Execute(execCtx, args)
	}()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			res := ErrorResult("Error executing " + name + ": dispatch deadline exceeded")
			res.TokensIn = tokensIn
			res.TokensOut = tokens.Count(res.Text())
			res.Metadata = dc.Metadata
			res.Metadata["timeout"] = true
			return res
		}
		return r.handleError(ctx, dc, chain, err, tokensIn)
	}

	result.TokensIn = tokensIn
	result.TokensOut = tokens.Count(result.Text())
	if result.TokensSaved == 0 {
		result.TokensSaved = savedTokens(tokensIn, result.TokensOut)
	}
	if result.Metadata == nil {
		result.Metadata = dc.Metadata
	} else {
		for k, v := range dc.Metadata {
			if _, exists := result.Metadata[k]; !exists {
				result.Metadata[k] = v
			}
		}
	}

	for i := len(chain) - 1; i >= 0; i-- {
		chain[i].After(ctx, dc, &result)
	}
	return result
}

// savedTokens implements the default tokensSaved contract (spec §8):
// max(0, tokensIn - tokensOut), overridable by a compressor that knows a
// larger figure (e.g. the sandbox SDK amortizes a whole snippet run).
func savedTokens(in, out uint32) uint32 {
	if in > out {
		return in - out
	}
	return 0
}

func (r *Registry) handleError(ctx context.Context, dc *DispatchContext, chain []Middleware, err error, tokensIn uint32) ToolResult {
	for _, mw := range chain {
		if result := mw.OnError(ctx, dc, err); result != nil {
			result.TokensIn = tokensIn
			if result.TokensOut == 0 {
				result.TokensOut = tokens.Count(result.Text())
			}
			return *result
		}
	}
	res := ErrorResult("Error executing " + dc.Name + ": " + err.Error())
	res.TokensIn = tokensIn
	res.TokensOut = tokens.Count(res.Text())
	return res
}
