package sandbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ctxengine/ctxengine/internal/astx"
	"github.com/ctxengine/ctxengine/internal/detect"
)

// Analyze is the `analyze` namespace.
type Analyze struct{ sdk *SDK }

func (s *SDK) Analyze() Analyze { return Analyze{sdk: s} }

// Dependencies returns the import targets named in file's CodeElement
// import list (spec §6 `analyze.dependencies`).
func (a Analyze) Dependencies(ctx context.Context, file string) ([]string, error) {
	content, err := a.sdk.Files().Read(file)
	if err != nil {
		return nil, err
	}
	fs, err := a.sdk.Registry.Parse(ctx, content, file, detect.FromPath(file))
	if err != nil {
		return nil, err
	}
	deps := make([]string, 0, len(fs.Imports))
	for _, imp := range fs.Imports {
		deps = append(deps, imp.Name)
	}
	return deps, nil
}

// Exports returns every exported element in file.
func (a Analyze) Exports(ctx context.Context, file string) ([]astx.CodeElement, error) {
	content, err := a.sdk.Files().Read(file)
	if err != nil {
		return nil, err
	}
	fs, err := a.sdk.Registry.Parse(ctx, content, file, detect.FromPath(file))
	if err != nil {
		return nil, err
	}
	var exported []astx.CodeElement
	for _, el := range fs.AllElements() {
		if el.IsExported {
			exported = append(exported, el)
		}
	}
	return exported, nil
}

// CallGraph finds fn's definition in file and reports the functions it
// calls by name, matched against fn's body lines. Returns an error if fn
// is not found (spec §6: `"Function '<name>' not found"`). depth is
// accepted for forward compatibility with multi-hop traversal but the
// reference implementation only expands one level.
func (a Analyze) CallGraph(ctx context.Context, fn, file string, depth int) ([]string, error) {
	content, err := a.sdk.Files().Read(file)
	if err != nil {
		return nil, err
	}
	language := detect.FromPath(file)
	result, ok := a.sdk.Registry.Extract(ctx, content, file, language, astx.ElementTarget{Kind: astx.KindFunction, Name: fn}, astx.ExtractOptions{})
	if !ok {
		return nil, fmt.Errorf("Function '%s' not found", fn)
	}

	fs, err := a.sdk.Registry.Parse(ctx, content, file, language)
	if err != nil {
		return nil, err
	}
	var called []string
	for _, el := range fs.AllElements() {
		if el.Kind != astx.KindFunction && el.Kind != astx.KindMethod {
			continue
		}
		if el.Name == fn {
			continue
		}
		if containsIdentifier(result.Content, el.Name) {
			called = append(called, el.Name)
		}
	}
	return called, nil
}

func containsIdentifier(body, name string) bool {
	if name == "" {
		return false
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
	return re.MatchString(body)
}

// Structure walks dir (relative to workingDir) up to depth levels and
// reports every file path encountered.
func (a Analyze) Structure(dir string, depth int) ([]string, error) {
	root := dir
	if root == "" {
		root = "."
	}
	resolved, err := a.sdk.Paths.ValidateFile(root)
	if err != nil {
		return nil, err
	}

	var paths []string
	rootDepth := len(splitPath(resolved))
	err = filepath.WalkDir(resolved, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if depth > 0 && len(splitPath(path))-rootDepth > depth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == resolved {
			return nil
		}
		rel, relErr := filepath.Rel(a.sdk.WorkingDir, path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, rel)
		return nil
	})
	return paths, err
}

func splitPath(p string) []string {
	return strings.Split(filepath.Clean(p), string(filepath.Separator))
}
