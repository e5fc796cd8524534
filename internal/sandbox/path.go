package sandbox

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var secretBasenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\.env$`),
	regexp.MustCompile(`\.pem$`),
	regexp.MustCompile(`\.key$`),
	regexp.MustCompile(`^id_rsa$`),
	regexp.MustCompile(`^id_ed25519$`),
	regexp.MustCompile(`credentials`),
	regexp.MustCompile(`^secrets\.`),
	regexp.MustCompile(`\.keystore$`),
	regexp.MustCompile(`\.jks$`),
	regexp.MustCompile(`password`),
	regexp.MustCompile(`^\.htpasswd$`),
	regexp.MustCompile(`^\.netrc$`),
	regexp.MustCompile(`^\.npmrc$`),
	regexp.MustCompile(`^\.pypirc$`),
}

// PathValidator resolves SDK file arguments against a fixed workingDir,
// rejecting escapes and secret-looking basenames.
type PathValidator struct {
	workingDir string
}

// NewPathValidator returns a validator rooted at workingDir. workingDir
// is resolved to its absolute, symlink-free form at construction.
func NewPathValidator(workingDir string) (*PathValidator, error) {
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return nil, fmt.Errorf("resolving working dir: %w", err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return &PathValidator{workingDir: abs}, nil
}

// ValidateFile resolves path against the working dir and rejects it if
// the resolved path escapes the dir or its basename matches a secret
// pattern.
func (v *PathValidator) ValidateFile(path string) (string, error) {
	joined := path
	if !filepath.IsAbs(joined) {
		joined = filepath.Join(v.workingDir, path)
	}
	resolved := filepath.Clean(joined)
	// Follow symlinks when the target exists, so a link pointing outside
	// the working dir cannot smuggle a read past the escape check.
	if real, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = real
	}

	rel, err := filepath.Rel(v.workingDir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes working directory", path)
	}

	base := filepath.Base(resolved)
	lowerBase := strings.ToLower(base)
	for _, pat := range secretBasenamePatterns {
		if pat.MatchString(lowerBase) {
			return "", fmt.Errorf("path %q matches a secret-file pattern", path)
		}
	}

	return resolved, nil
}

// ValidateGlob rejects glob patterns containing ".." path segments or
// absolute paths.
func (v *PathValidator) ValidateGlob(pattern string) error {
	if filepath.IsAbs(pattern) {
		return fmt.Errorf("glob pattern %q must not be absolute", pattern)
	}
	for _, part := range strings.Split(pattern, "/") {
		if part == ".." {
			return fmt.Errorf("glob pattern %q must not contain ..", pattern)
		}
	}
	return nil
}
