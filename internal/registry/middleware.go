package registry

import (
	"context"
	"time"
)

// Middleware observes or short-circuits a dispatch. Before runs in
// registration order ahead of the tool; any Before may return skip=true
// to filter the call out entirely (spec §4.12 step 3). After runs in
// reverse registration order once the tool has produced a result (step
// 6) and may mutate result.TokensSaved/Metadata. OnError runs in
// registration order when the tool itself returned an error (step 7);
// the first non-nil ToolResult wins.
//
// BaseMiddleware gives every concrete implementation a no-op default for
// the hooks it doesn't care about, the same way the teacher's optional
// interface methods are satisfied by embedding a zero-value struct.
type Middleware interface {
	Before(ctx context.Context, dc *DispatchContext) (skip bool, err error)
	After(ctx context.Context, dc *DispatchContext, result *ToolResult)
	OnError(ctx context.Context, dc *DispatchContext, err error) *ToolResult
}

// BaseMiddleware is a no-op Middleware to embed in concrete types that
// only need one hook.
type BaseMiddleware struct{}

func (BaseMiddleware) Before(context.Context, *DispatchContext) (bool, error) { return false, nil }
func (BaseMiddleware) After(context.Context, *DispatchContext, *ToolResult)   {}
func (BaseMiddleware) OnError(context.Context, *DispatchContext, error) *ToolResult {
	return nil
}

// AuditMiddleware records dispatch timing and outcome into each
// DispatchContext's Metadata, mirroring pkg/extensions's AuditEvent shape
// adapted to a local, dependency-free sink (no external audit collector
// is in scope for the core; an outer collaborator can read
// ctx.Metadata["audit"] and ship it wherever the deployment needs).
type AuditMiddleware struct {
	BaseMiddleware
	// Sink receives one audit record per completed dispatch. Nil is a
	// valid no-op sink.
	Sink func(record AuditRecord)
}

// AuditRecord is one dispatch's audit trail.
type AuditRecord struct {
	Tool      string
	StartedAt time.Time
	Duration  time.Duration
	IsError   bool
	Filtered  bool
}

func (m *AuditMiddleware) After(_ context.Context, dc *DispatchContext, result *ToolResult) {
	if m.Sink == nil {
		return
	}
	m.Sink(AuditRecord{
		Tool:      dc.Name,
		StartedAt: dc.StartTime,
		Duration:  time.Since(dc.StartTime),
		IsError:   result.IsError,
		Filtered:  result.WasFiltered,
	})
}

// DenylistMiddleware filters dispatches to tools named in Denied,
// mirroring pkg/extensions's MessageFilter rejection contract but scoped
// to tool names instead of message content — the core's own content
// filtering happens inside the sandbox's static analyzer (§4.11), not
// here.
type DenylistMiddleware struct {
	BaseMiddleware
	Denied map[string]bool
}

func (m *DenylistMiddleware) Before(_ context.Context, dc *DispatchContext) (bool, error) {
	if m.Denied != nil && m.Denied[dc.Name] {
		return true, nil
	}
	return false, nil
}

// RecoveryMiddleware renders every tool error as an isError result,
// including a tool panic, which Dispatch recovers and reports as an
// ExternalFailure, matching the teacher's tools/recovery.go stance that
// one misbehaving tool must not take down the registry.
type RecoveryMiddleware struct {
	BaseMiddleware
}

func (m *RecoveryMiddleware) OnError(_ context.Context, dc *DispatchContext, err error) *ToolResult {
	res := ErrorResult("Error executing " + dc.Name + ": " + err.Error())
	return &res
}
