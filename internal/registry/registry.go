package registry

import (
	"sort"
	"sync"
	"time"
)

// catalogEntry holds one tool's metadata plus the means to construct its
// executable form. meta is always populated (cheap, no construction);
// tool is nil until LoadByNames (or an on-demand Dispatch) mounts it.
type catalogEntry struct {
	meta    ToolDefinition
	factory Factory
	tool    Tool
}

// Registry is the process-wide tool catalog (spec component C12).
// Registration is serialized behind a single RWMutex; reads (Get,
// Discover, Dispatch) take a read lock and hand back an independent
// snapshot so a concurrent Register/Unregister never mutates state a
// caller is iterating over — the "copy-on-read" guarantee spec §5
// describes for loaded-tool-set snapshots.
//
// Shape carried from the teacher's agent/tools.Registry
// (byName/byCategory maps behind one RWMutex).
type Registry struct {
	mu          sync.RWMutex
	byName      map[string]*catalogEntry
	byCategory  map[Category][]string
	middleware  []Middleware
	toolTimeout time.Duration
}

// DefaultToolTimeout bounds one dispatch's execution (spec §5).
const DefaultToolTimeout = 30 * time.Second

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:      make(map[string]*catalogEntry),
		byCategory:  make(map[Category][]string),
		toolTimeout: DefaultToolTimeout,
	}
}

// SetToolTimeout overrides the per-dispatch deadline.
func (r *Registry) SetToolTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > 0 {
		r.toolTimeout = d
	}
}

func (r *Registry) dispatchTimeout() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.toolTimeout
}

// Register adds tool to the catalog, mounted (loaded) immediately. Use
// RegisterLazy for tools whose construction is expensive enough to defer.
func (r *Registry) Register(tool Tool) {
	if tool == nil {
		return
	}
	def := tool.Definition()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeFromCategoryLocked(def.Name)
	r.byName[def.Name] = &catalogEntry{meta: def, tool: tool}
	r.byCategory[def.Category] = append(r.byCategory[def.Category], def.Name)
}

// RegisterLazy adds a tool to the "available" catalog by metadata only;
// factory is invoked the first time the tool is loaded (LoadByNames or an
// on-demand Dispatch).
func (r *Registry) RegisterLazy(meta ToolDefinition, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeFromCategoryLocked(meta.Name)
	r.byName[meta.Name] = &catalogEntry{meta: meta, factory: factory}
	r.byCategory[meta.Category] = append(r.byCategory[meta.Category], meta.Name)
}

// Unregister removes a tool entirely (available and loaded).
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeFromCategoryLocked(name)
	delete(r.byName, name)
}

func (r *Registry) removeFromCategoryLocked(name string) {
	existing, ok := r.byName[name]
	if !ok {
		return
	}
	cat := existing.meta.Category
	names := r.byCategory[cat]
	for i, n := range names {
		if n == name {
			r.byCategory[cat] = append(names[:i], names[i+1:]...)
			break
		}
	}
}

// Use appends a Middleware to the dispatch chain (Before and OnError run
// in the order Use was called; After runs in the reverse order).
func (r *Registry) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw)
}

// middlewareSnapshot returns a copy of the middleware chain, safe to use
// outside the lock.
func (r *Registry) middlewareSnapshot() []Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Middleware, len(r.middleware))
	copy(out, r.middleware)
	return out
}

// IsLoaded reports whether name's executable form has been mounted.
func (r *Registry) IsLoaded(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return ok && e.tool != nil
}

// LoadByNames mounts the executable form for every named tool that isn't
// already loaded. Unknown names are silently skipped (discovery already
// told the caller what's available); the only error path is a factory
// that returns a nil Tool.
func (r *Registry) LoadByNames(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		e, ok := r.byName[name]
		if !ok || e.tool != nil {
			continue
		}
		if e.factory == nil {
			continue
		}
		tool := e.factory()
		if tool == nil {
			return NewError(KindInvalidInput, "factory for "+name+" returned a nil tool", nil)
		}
		e.tool = tool
	}
	return nil
}

// ensureLoaded mounts name's executable form on demand if it has a
// factory and isn't loaded yet. Caller must not hold r.mu.
func (r *Registry) ensureLoaded(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byName[name]
	if !ok || e.tool != nil || e.factory == nil {
		return
	}
	if tool := e.factory(); tool != nil {
		e.tool = tool
	}
}

// get returns the catalog entry for name, or nil.
func (r *Registry) get(name string) *catalogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Available lists every registered tool's metadata, sorted by name,
// regardless of load state.
func (r *Registry) Available() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolDefinition, 0, len(r.byName))
	for _, e := range r.byName {
		out = append(out, e.meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ByCategory lists every registered tool's metadata in category, sorted
// by name.
func (r *Registry) ByCategory(cat Category) []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := append([]string(nil), r.byCategory[cat]...)
	sort.Strings(names)
	out := make([]ToolDefinition, 0, len(names))
	for _, n := range names {
		if e, ok := r.byName[n]; ok {
			out = append(out, e.meta)
		}
	}
	return out
}
