package astx

import (
	"regexp"
	"strings"

	"github.com/ctxengine/ctxengine/internal/detect"
)

// quickScanPattern is one regex + the ElementKind it produces, applied
// line-by-line. This is the regex fallback spec §4.4 requires both as a
// first-class operation (QuickScan) and as the degrade path when a full
// parse fails or no grammar is wired for the language.
type quickScanPattern struct {
	kind ElementKind
	re   *regexp.Regexp
}

// quickScanPatterns covers the remaining closed-set languages (rust, java,
// c, cpp, csharp, swift, php, ruby) plus generic, and doubles as the
// degrade path for go/python/typescript/javascript.
var quickScanPatterns = map[detect.Language][]quickScanPattern{
	detect.LangRust: {
		{KindFunction, regexp.MustCompile(`^\s*(pub\s+)?(async\s+)?fn\s+(\w+)`)},
		{KindClass, regexp.MustCompile(`^\s*(pub\s+)?struct\s+(\w+)`)},
		{KindInterface, regexp.MustCompile(`^\s*(pub\s+)?trait\s+(\w+)`)},
		{KindType, regexp.MustCompile(`^\s*(pub\s+)?type\s+(\w+)`)},
		{KindImport, regexp.MustCompile(`^\s*use\s+([\w:]+)`)},
	},
	detect.LangJava: {
		{KindClass, regexp.MustCompile(`^\s*(public|private|protected)?\s*(static\s+)?(final\s+)?class\s+(\w+)`)},
		{KindInterface, regexp.MustCompile(`^\s*(public\s+)?interface\s+(\w+)`)},
		{KindMethod, regexp.MustCompile(`^\s*(public|private|protected)\s+[\w<>\[\]]+\s+(\w+)\s*\(`)},
		{KindImport, regexp.MustCompile(`^\s*import\s+([\w.]+);`)},
	},
	detect.LangC: {
		{KindFunction, regexp.MustCompile(`^\s*[\w\*]+\s+(\w+)\s*\([^;]*\)\s*\{?$`)},
		{KindType, regexp.MustCompile(`^\s*typedef\s+.*\s+(\w+);`)},
		{KindImport, regexp.MustCompile(`^\s*#include\s*[<"]([^>"]+)[>"]`)},
	},
	detect.LangCPP: {
		{KindClass, regexp.MustCompile(`^\s*class\s+(\w+)`)},
		{KindFunction, regexp.MustCompile(`^\s*[\w:<>\*&]+\s+(\w+)\s*\([^;]*\)\s*\{?$`)},
		{KindImport, regexp.MustCompile(`^\s*#include\s*[<"]([^>"]+)[>"]`)},
	},
	detect.LangCSharp: {
		{KindClass, regexp.MustCompile(`^\s*(public|private|internal)?\s*(sealed\s+|abstract\s+)?class\s+(\w+)`)},
		{KindInterface, regexp.MustCompile(`^\s*(public\s+)?interface\s+(\w+)`)},
		{KindMethod, regexp.MustCompile(`^\s*(public|private|protected)\s+[\w<>\[\]]+\s+(\w+)\s*\(`)},
		{KindImport, regexp.MustCompile(`^\s*using\s+([\w.]+);`)},
	},
	detect.LangSwift: {
		{KindClass, regexp.MustCompile(`^\s*(public\s+)?(final\s+)?class\s+(\w+)`)},
		{KindInterface, regexp.MustCompile(`^\s*(public\s+)?protocol\s+(\w+)`)},
		{KindFunction, regexp.MustCompile(`^\s*(public\s+)?func\s+(\w+)`)},
		{KindImport, regexp.MustCompile(`^\s*import\s+(\w+)`)},
	},
	detect.LangPHP: {
		{KindClass, regexp.MustCompile(`^\s*(abstract\s+|final\s+)?class\s+(\w+)`)},
		{KindInterface, regexp.MustCompile(`^\s*interface\s+(\w+)`)},
		{KindFunction, regexp.MustCompile(`^\s*(public\s+|private\s+|protected\s+|static\s+)*function\s+(\w+)`)},
		{KindImport, regexp.MustCompile(`^\s*(use|require|include|require_once|include_once)\s+['"]?([\w\\/.]+)`)},
	},
	detect.LangRuby: {
		{KindClass, regexp.MustCompile(`^\s*class\s+(\w+)`)},
		{KindInterface, regexp.MustCompile(`^\s*module\s+(\w+)`)},
		{KindFunction, regexp.MustCompile(`^\s*def\s+(self\.)?(\w+[?!]?)`)},
		{KindImport, regexp.MustCompile(`^\s*require(_relative)?\s+['"]([\w\-./]+)['"]`)},
	},
	detect.LangGo: {
		{KindFunction, regexp.MustCompile(`^\s*func\s+(\w+)\s*\(`)},
		{KindMethod, regexp.MustCompile(`^\s*func\s+\([^)]*\)\s*(\w+)\s*\(`)},
		{KindClass, regexp.MustCompile(`^\s*type\s+(\w+)\s+struct\b`)},
		{KindInterface, regexp.MustCompile(`^\s*type\s+(\w+)\s+interface\b`)},
		{KindImport, regexp.MustCompile(`^\s*"([\w./\-]+)"`)},
	},
	detect.LangPython: {
		{KindFunction, regexp.MustCompile(`^\s*def\s+(\w+)\s*\(`)},
		{KindClass, regexp.MustCompile(`^\s*class\s+(\w+)`)},
		{KindImport, regexp.MustCompile(`^\s*(import|from)\s+([\w.]+)`)},
	},
	detect.LangTypeScript: {
		{KindFunction, regexp.MustCompile(`^\s*(export\s+)?(async\s+)?function\s+(\w+)`)},
		{KindClass, regexp.MustCompile(`^\s*(export\s+)?class\s+(\w+)`)},
		{KindInterface, regexp.MustCompile(`^\s*(export\s+)?interface\s+(\w+)`)},
		{KindType, regexp.MustCompile(`^\s*(export\s+)?type\s+(\w+)\s*=`)},
		{KindImport, regexp.MustCompile(`^\s*import\s+.*from\s+['"]([^'"]+)['"]`)},
	},
	detect.LangJavaScript: {
		{KindFunction, regexp.MustCompile(`^\s*(export\s+)?(async\s+)?function\s+(\w+)`)},
		{KindClass, regexp.MustCompile(`^\s*(export\s+)?class\s+(\w+)`)},
		{KindImport, regexp.MustCompile(`^\s*import\s+.*from\s+['"]([^'"]+)['"]`)},
	},
}

// QuickScan produces a FileStructure via line-oriented regex matching,
// never a full AST walk. Per spec §4.4: EndLine == StartLine for every
// element, no Signature is populated, and QuickScan must never panic or
// return an error for any input (it is the degrade path of last resort).
func QuickScan(content []byte, language detect.Language) *FileStructure {
	text := string(content)
	lines := strings.Split(text, "\n")
	fs := &FileStructure{Language: language, TotalLines: countLines(content)}
	if len(content) == 0 {
		fs.TotalLines = 1
		return fs
	}

	patterns := quickScanPatterns[language]
	for i, line := range lines {
		lineNo := i + 1
		for _, qp := range patterns {
			m := qp.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := lastNonEmpty(m)
			if name == "" {
				continue
			}
			el := CodeElement{
				Kind:       qp.kind,
				Name:       name,
				StartLine:  lineNo,
				EndLine:    lineNo,
				IsExported: quickExported(language, qp.kind, name, line),
			}
			appendByKind(fs, el)
		}
	}
	return fs
}

func lastNonEmpty(groups []string) string {
	for i := len(groups) - 1; i >= 1; i-- {
		if groups[i] != "" && groups[i] != "self." {
			return groups[i]
		}
	}
	return ""
}

// visibilityKeywordRE matches the leading keyword that marks a declaration
// as exported in languages that use one.
var visibilityKeywordRE = regexp.MustCompile(`^\s*(export|public)\b`)

func quickExported(language detect.Language, kind ElementKind, name, line string) bool {
	switch language {
	case detect.LangGo:
		// isExportedGo tests the first rune with unicode.IsUpper, so
		// non-ASCII upper-case identifiers count as exported too.
		return isExportedGo(name)
	case detect.LangPython, detect.LangRuby:
		return pyExported(name)
	case detect.LangTypeScript, detect.LangJavaScript, detect.LangJava, detect.LangCSharp, detect.LangSwift:
		// The patterns accept the export/public keyword without requiring
		// it, so the line is checked for it here; imports count as exported.
		return kind == KindImport || visibilityKeywordRE.MatchString(line)
	default:
		// Rust, C, C++, PHP and generic: every match counts as exported;
		// neither keywords nor naming are consulted.
		return name != ""
	}
}

func appendByKind(fs *FileStructure, el CodeElement) {
	switch el.Kind {
	case KindFunction, KindMethod:
		fs.Functions = append(fs.Functions, el)
	case KindClass:
		fs.Classes = append(fs.Classes, el)
	case KindInterface:
		fs.Interfaces = append(fs.Interfaces, el)
	case KindType:
		fs.Types = append(fs.Types, el)
	case KindVariable:
		fs.Variables = append(fs.Variables, el)
	case KindImport:
		fs.Imports = append(fs.Imports, el)
	case KindExport:
		fs.Exports = append(fs.Exports, el)
	}
}
