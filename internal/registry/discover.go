package registry

import (
	"encoding/json"
	"sort"
	"strings"
)

// DiscoverOptions configures Discover (spec §4.12).
type DiscoverOptions struct {
	// Query filters by case-insensitive substring match against name or
	// description. Empty matches everything.
	Query string
	// Category restricts to one category. Empty matches every category.
	Category Category
	// Load, when true, mounts the executable form for every tool the
	// query/category filter matches (so a caller can discover-then-call
	// in one round trip without a separate LoadByNames).
	Load bool
	// Format selects the rendering: "list" (metadata structs), "toon"
	// (compact tabular), or "toon-tabular" (padded tabular).
	Format Format
}

// DiscoverResult is Discover's output.
type DiscoverResult struct {
	Tools []ToolDefinition `json:"tools,omitempty"`
	TOON  string           `json:"toon,omitempty"`
}

// Discover lists the tool catalog, optionally filtered and loaded (spec
// §4.12: "The registry distinguishes available... from loaded...").
// Discover itself never returns a tool's Execute — only metadata, in
// whichever of the three output formats the caller asked for.
func (r *Registry) Discover(opts DiscoverOptions) DiscoverResult {
	matches := r.matching(opts.Query, opts.Category)

	if opts.Load {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		_ = r.LoadByNames(names...)
	}

	switch opts.Format {
	case FormatTOON:
		return DiscoverResult{TOON: encodeTOON(toonRows(matches), false)}
	case FormatTOONTabular:
		return DiscoverResult{TOON: encodeTOON(toonRows(matches), true)}
	default:
		return DiscoverResult{Tools: matches}
	}
}

func (r *Registry) matching(query string, category Category) []ToolDefinition {
	all := r.Available()
	if category != "" {
		filtered := all[:0:0]
		for _, t := range all {
			if t.Category == category {
				filtered = append(filtered, t)
			}
		}
		all = filtered
	}
	if query == "" {
		return all
	}
	q := strings.ToLower(query)
	filtered := all[:0:0]
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Description), q) {
			filtered = append(filtered, t)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })
	return filtered
}

func toonRows(defs []ToolDefinition) []map[string]string {
	rows := make([]map[string]string, len(defs))
	for i, d := range defs {
		propNames := make([]string, 0, len(d.Schema.Properties))
		for name := range d.Schema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)
		schemaJSON, _ := json.Marshal(propNames)
		rows[i] = map[string]string{
			"name":        d.Name,
			"description": d.Description,
			"category":    string(d.Category),
			"properties":  string(schemaJSON),
		}
	}
	return rows
}
