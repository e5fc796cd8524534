// Package sandbox evaluates untrusted snippets against the SDK surface
// (spec component C11): a two-stage gate (static analyzer, path
// validator) ahead of resource-limited execution.
package sandbox

import (
	"fmt"
	"regexp"
)

// Violation is a single blocked pattern match.
type Violation struct {
	Rule    string
	Snippet string
}

// Warning is a non-fatal static-analysis finding.
type Warning struct {
	Rule    string
	Snippet string
}

// StaticResult is the outcome of the static analyzer stage.
type StaticResult struct {
	Violations []Violation
	Warnings   []Warning
}

// Blocked reports whether the snippet must not execute.
func (r StaticResult) Blocked() bool { return len(r.Violations) > 0 }

type blockedRule struct {
	name string
	re   *regexp.Regexp
}

var blockedRules = []blockedRule{
	{"eval-call", regexp.MustCompile(`\beval\s*\(`)},
	{"function-constructor", regexp.MustCompile(`\bFunction\s*\(`)},
	{"new-function", regexp.MustCompile(`\bnew\s+Function\s*\(`)},
	{"require-call", regexp.MustCompile(`\brequire\s*\(`)},
	{"dynamic-import", regexp.MustCompile(`\bimport\s*\(`)},
	{"module-introspection", regexp.MustCompile(`\b(module\.exports|module\.children|module\.parent)\b`)},
	{"process-global", regexp.MustCompile(`\bprocess\b`)},
	{"global-object", regexp.MustCompile(`\bglobal\b`)},
	{"globalthis", regexp.MustCompile(`\bglobalThis\b`)},
	{"dirname", regexp.MustCompile(`__dirname\b`)},
	{"filename", regexp.MustCompile(`__filename\b`)},
	{"buffer-global", regexp.MustCompile(`\bBuffer\b`)},
	{"proto-pollution", regexp.MustCompile(`__proto__`)},
	{"constructor-index", regexp.MustCompile(`\.constructor\s*\[`)},
	{"prototype-index", regexp.MustCompile(`\.prototype\s*\[`)},
	{"reflect-construct", regexp.MustCompile(`\bReflect\s*\.\s*construct\b`)},
	{"reflect-apply", regexp.MustCompile(`\bReflect\s*\.\s*apply\b`)},
	{"timer-function", regexp.MustCompile(`\b(setTimeout|setInterval|setImmediate)\s*\(`)},
	{"file-scheme", regexp.MustCompile(`file://`)},
	{"path-traversal", regexp.MustCompile(`\.\./\.\./`)},
}

type warnRule struct {
	name string
	re   *regexp.Regexp
}

var warnRules = []warnRule{
	{"infinite-while", regexp.MustCompile(`\bwhile\s*\(\s*true\s*\)`)},
	{"infinite-for", regexp.MustCompile(`\bfor\s*\(\s*;\s*;\s*\)`)},
	{"large-string-repeat", regexp.MustCompile(`\.repeat\s*\(\s*([0-9]+)\s*\)`)},
}

// AnalyzeStatic runs the static gate over a snippet's source text.
func AnalyzeStatic(source string) StaticResult {
	var result StaticResult
	for _, rule := range blockedRules {
		if loc := rule.re.FindString(source); loc != "" {
			result.Violations = append(result.Violations, Violation{Rule: rule.name, Snippet: loc})
		}
	}
	for _, rule := range warnRules {
		matches := rule.re.FindAllStringSubmatch(source, -1)
		for _, m := range matches {
			if rule.name == "large-string-repeat" {
				if !repeatCountExceeds(m, 1e6) {
					continue
				}
			}
			result.Warnings = append(result.Warnings, Warning{Rule: rule.name, Snippet: m[0]})
		}
	}
	return result
}

func repeatCountExceeds(m []string, threshold float64) bool {
	if len(m) < 2 {
		return false
	}
	var n float64
	if _, err := fmt.Sscanf(m[1], "%f", &n); err != nil {
		return false
	}
	return n >= threshold
}
