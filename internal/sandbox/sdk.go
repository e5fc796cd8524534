package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ctxengine/ctxengine/internal/astx"
	"github.com/ctxengine/ctxengine/internal/conversation"
	"github.com/ctxengine/ctxengine/internal/detect"
	"github.com/ctxengine/ctxengine/internal/diffcompress"
	"github.com/ctxengine/ctxengine/internal/logs"
	"github.com/ctxengine/ctxengine/internal/platform/logging"
	"github.com/ctxengine/ctxengine/internal/semantic"
	"github.com/ctxengine/ctxengine/internal/tokens"
)

// SDK is the handle a sandboxed snippet receives, bound to the
// compress/code/files/git/search/analyze/utils/conversation namespaces
// (spec §6). Every file-touching operation is gated by a PathValidator
// rooted at WorkingDir.
type SDK struct {
	WorkingDir string
	Registry   *astx.Registry
	Paths      *PathValidator
	Memory     *conversation.Store
}

// processMemory is the single conversation-memory slot the whole process
// shares: every SDK instance reads and writes the same slot, whichever
// run last called createMemory/setMemory wins.
var processMemory = conversation.NewStore()

// NewSDK builds an SDK rooted at workingDir.
func NewSDK(workingDir string, registry *astx.Registry) (*SDK, error) {
	paths, err := NewPathValidator(workingDir)
	if err != nil {
		return nil, err
	}
	return &SDK{
		WorkingDir: workingDir,
		Registry:   registry,
		Paths:      paths,
		Memory:     processMemory,
	}, nil
}

// Compress is the `compress` namespace (spec §6).
type Compress struct{ sdk *SDK }

func (s *SDK) Compress() Compress { return Compress{sdk: s} }

func (c Compress) Auto(content string, hint string) (string, error) {
	result := detect.Analyze(content)
	if hint != "" {
		result.DetectedType = detect.ContentType(hint)
	}
	return semanticAutoRoute(content, result), nil
}

func semanticAutoRoute(content string, result detect.Result) string {
	switch result.DetectedType {
	case detect.TypeLogs:
		summary := logs.Summarize(content, logs.DetailNormal)
		b, err := json.Marshal(summary)
		if err != nil {
			return content
		}
		return string(b)
	case detect.TypeDiff:
		parsed, err := diffcompress.Parse(content)
		if err != nil {
			return content
		}
		return diffcompress.Compress(parsed, diffcompress.StrategyHunksOnly, diffcompress.CompressOptions{})
	default:
		return semantic.Compress(content, result.DetectedType, semantic.Options{}).Content
	}
}

func (c Compress) Logs(s string) logs.Summary {
	return logs.Summarize(s, logs.DetailNormal)
}

func (c Compress) Diff(s string) (string, error) {
	parsed, err := diffcompress.Parse(s)
	if err != nil {
		return "", err
	}
	return diffcompress.Compress(parsed, diffcompress.StrategyHunksOnly, diffcompress.CompressOptions{}), nil
}

func (c Compress) Semantic(s string, ratio float64) semantic.Result {
	result := detect.Analyze(s)
	return semantic.Compress(s, result.DetectedType, semantic.Options{TargetRatio: ratio})
}

// Code is the `code` namespace.
type Code struct{ sdk *SDK }

func (s *SDK) Code() Code { return Code{sdk: s} }

func (c Code) Parse(ctx context.Context, content []byte, lang string) (*astx.FileStructure, error) {
	return c.sdk.Registry.Parse(ctx, content, "", detect.Language(lang))
}

func (c Code) Extract(ctx context.Context, content []byte, lang string, target astx.ElementTarget) (*astx.ExtractResult, bool) {
	return c.sdk.Registry.Extract(ctx, content, "", detect.Language(lang), target, astx.ExtractOptions{})
}

// Skeleton renders a signatures-only view: every element's Signature
// line, grouped by kind, with bodies omitted.
func (c Code) Skeleton(ctx context.Context, content []byte, lang string) (string, error) {
	fs, err := c.sdk.Registry.Parse(ctx, content, "", detect.Language(lang))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, el := range fs.AllElements() {
		if el.Signature == "" {
			continue
		}
		b.WriteString(el.Signature)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Files is the `files` namespace. Every path is validated against the
// sandbox's workingDir before any I/O.
type Files struct{ sdk *SDK }

func (s *SDK) Files() Files { return Files{sdk: s} }

func (f Files) Read(path string) ([]byte, error) {
	resolved, err := f.sdk.Paths.ValidateFile(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(resolved)
	if err != nil {
		return nil, err
	}
	// The basename blocklist is the hard gate; entropy only enriches the
	// log so an operator can spot secret-looking reads that slipped the
	// filename patterns.
	scanner := NewSecretScanner()
	head := content[:min(len(content), 4096)]
	for _, tok := range strings.Fields(string(head)) {
		if len(tok) >= 24 && scanner.LooksLikeSecret(tok) {
			logging.Default().Warn("sandbox file read contains a high-entropy token", "path", path)
			break
		}
	}
	return content, nil
}

func (f Files) Exists(path string) bool {
	resolved, err := f.sdk.Paths.ValidateFile(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(resolved)
	return err == nil
}

func (f Files) Glob(pattern string) ([]string, error) {
	if err := f.sdk.Paths.ValidateGlob(pattern); err != nil {
		return nil, err
	}
	return doublestar.Glob(os.DirFS(f.sdk.WorkingDir), pattern)
}

// Git is the `git` namespace. Every operation shells out with a 5s
// timeout; a non-repository working dir reports "Not a git repository".
type Git struct{ sdk *SDK }

func (s *SDK) Git() Git { return Git{sdk: s} }

func (g Git) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.sdk.WorkingDir}, args...)...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "not a git repository") {
			return "", fmt.Errorf("Not a git repository")
		}
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return out.String(), nil
}

func (g Git) Diff(ctx context.Context, ref string) (string, error) {
	args := []string{"diff"}
	if ref != "" {
		args = append(args, ref)
	}
	return g.run(ctx, args...)
}

func (g Git) Log(ctx context.Context, limit int) (string, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return g.run(ctx, "log", fmt.Sprintf("-%d", limit), "--oneline")
}

func (g Git) Blame(ctx context.Context, file string, line int) (string, error) {
	resolved, err := g.sdk.Paths.ValidateFile(file)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(g.sdk.WorkingDir, resolved)
	if err != nil {
		return "", err
	}
	args := []string{"blame", rel}
	if line > 0 {
		args = append(args, "-L", fmt.Sprintf("%d,%d", line, line))
	}
	return g.run(ctx, args...)
}

func (g Git) Status(ctx context.Context) (string, error) {
	return g.run(ctx, "status", "--short")
}

func (g Git) Branch(ctx context.Context) (string, error) {
	return g.run(ctx, "branch", "--show-current")
}

// Utils is the `utils` namespace: pure C1/C2/C3 passthroughs.
type Utils struct{ sdk *SDK }

func (s *SDK) Utils() Utils { return Utils{sdk: s} }

func (u Utils) CountTokens(t string) uint32 { return tokens.Count(t) }

func (u Utils) DetectType(t string) detect.Result { return detect.Analyze(t) }

func (u Utils) DetectLanguage(path string) detect.Language { return detect.FromPath(path) }

// Conversation is the `conversation` namespace, backed by the single
// process-wide memory slot (spec §4.9).
type Conversation struct{ sdk *SDK }

func (s *SDK) Conversation() Conversation { return Conversation{sdk: s} }

func (c Conversation) Compress(messages []conversation.Message, opts conversation.Options) conversation.Result {
	return conversation.Compress(messages, opts)
}

func (c Conversation) CreateMemory(result conversation.Result) conversation.ConversationMemory {
	return c.sdk.Memory.Set(result)
}

func (c Conversation) ExtractDecisions(messages []conversation.Message) []string {
	return conversation.ExtractDecisions(messages)
}

func (c Conversation) ExtractCodeRefs(messages []conversation.Message) []string {
	return conversation.ExtractCodeRefs(messages)
}

func (c Conversation) Restore() (conversation.ConversationMemory, bool) {
	return c.sdk.Memory.Get()
}

func (c Conversation) GetMemory() (conversation.ConversationMemory, bool) {
	return c.sdk.Memory.Get()
}

func (c Conversation) SetMemory(result conversation.Result) conversation.ConversationMemory {
	return c.sdk.Memory.Set(result)
}

func (c Conversation) ClearMemory() {
	c.sdk.Memory.Clear()
}

func (c Conversation) HasMemory() bool {
	_, ok := c.sdk.Memory.Get()
	return ok
}

func (c Conversation) GetSummary() string {
	mem, ok := c.sdk.Memory.Get()
	if !ok {
		return ""
	}
	return mem.Result.Summary
}
