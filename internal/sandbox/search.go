package sandbox

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ctxengine/ctxengine/internal/astx"
	"github.com/ctxengine/ctxengine/internal/detect"
	"github.com/ctxengine/ctxengine/internal/hybrid"
	"github.com/ctxengine/ctxengine/internal/index"
)

// GrepMatch is one `search.grep` hit.
type GrepMatch struct {
	File string
	Line int
	Text string
}

// Search is the `search` namespace.
type Search struct{ sdk *SDK }

func (s *SDK) Search() Search { return Search{sdk: s} }

func (s Search) matchedFiles(glob string) ([]string, error) {
	pattern := glob
	if pattern == "" {
		pattern = "**/*"
	}
	if err := s.sdk.Paths.ValidateGlob(pattern); err != nil {
		return nil, err
	}
	return doublestar.Glob(os.DirFS(s.sdk.WorkingDir), pattern)
}

// Grep searches matched files for pattern, line by line.
func (s Search) Grep(pattern, glob string) ([]GrepMatch, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling grep pattern: %w", err)
	}
	files, err := s.matchedFiles(glob)
	if err != nil {
		return nil, err
	}

	var matches []GrepMatch
	for _, rel := range files {
		content, err := s.sdk.Files().Read(rel)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(string(content), "\n") {
			if re.MatchString(line) {
				matches = append(matches, GrepMatch{File: rel, Line: i + 1, Text: line})
			}
		}
	}
	return matches, nil
}

// Symbols searches for elements whose name matches q (exact, prefix,
// substring, then fuzzy) across files matching glob. Each matching file is
// parsed via C4 and its elements loaded into a fresh index.SymbolIndex —
// rebuilt per call rather than cached, per the single-invocation lifetime
// the sandbox gives every other namespace (spec §1 Non-goals: no
// persistence beyond one tool invocation besides the registry and the
// conversation-memory slot).
func (s Search) Symbols(ctx context.Context, q, glob string) ([]astx.ElementRef, error) {
	idx, err := s.buildSymbolIndex(ctx, glob)
	if err != nil {
		return nil, err
	}
	matches, err := idx.Search(ctx, q, 0)
	if err != nil {
		return nil, err
	}
	refs := make([]astx.ElementRef, len(matches))
	for i, m := range matches {
		refs[i] = astx.ElementRef{FilePath: m.FilePath, Element: m.Element}
	}
	return refs, nil
}

// buildSymbolIndex parses every file matching glob and loads its elements
// into a fresh index.SymbolIndex. A file that fails to read or parse is
// skipped rather than aborting the whole build.
func (s Search) buildSymbolIndex(ctx context.Context, glob string) (*index.SymbolIndex, error) {
	files, err := s.matchedFiles(glob)
	if err != nil {
		return nil, err
	}
	idx := index.New()
	for _, rel := range files {
		content, err := s.sdk.Files().Read(rel)
		if err != nil {
			continue
		}
		fs, err := s.sdk.Registry.Parse(ctx, content, rel, detect.FromPath(rel))
		if err != nil {
			continue
		}
		symbols := make([]*index.Symbol, 0, len(fs.AllElements()))
		for _, el := range fs.AllElements() {
			symbols = append(symbols, index.NewSymbol(rel, el))
		}
		// AddBatch rejects the whole file's batch on an in-file duplicate
		// (e.g. two shadowed same-name locals at the same line); that file
		// simply contributes nothing rather than failing the wider search.
		_ = idx.AddBatch(symbols)
	}
	return idx, nil
}

// Files lists repository-relative paths matching pattern.
func (s Search) Files(pattern string) ([]string, error) {
	return s.matchedFiles(pattern)
}

// References finds occurrences of sym across matched files and ranks
// them through the hybrid index: candidate lines come from a literal
// grep, ordering comes from BM25 relevance of each line against the
// symbol, so a call site outranks an incidental comment mention.
func (s Search) References(ctx context.Context, sym, glob string) ([]GrepMatch, error) {
	candidates, err := s.Grep(regexp.QuoteMeta(sym), glob)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	idx := hybrid.New(candidates, func(m GrepMatch) string { return m.Text }, nil)
	hits := idx.SearchBM25Only(sym)
	ranked := make([]GrepMatch, 0, len(candidates))
	seen := make(map[GrepMatch]bool, len(hits))
	for _, h := range hits {
		ranked = append(ranked, h.Item)
		seen[h.Item] = true
	}
	// Lines where sym only appears as a stopword-adjacent fragment still
	// matched the grep; keep them after the ranked hits.
	for _, c := range candidates {
		if !seen[c] {
			ranked = append(ranked, c)
		}
	}
	return ranked, nil
}
