// Package config loads engine-wide tunables (sandbox limits, tool-dispatch
// timeouts, allow-listed roots) from defaults, functional options, and an
// optional YAML file — following Contextify's ".ai-context.yaml" merge
// precedence (CLI/caller-supplied values win over file values).
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables every component reads at construction time.
type Config struct {
	// SandboxTimeout bounds a single sandbox run. Default 5s, max 30s.
	SandboxTimeout time.Duration `yaml:"sandbox_timeout"`

	// SandboxMemoryBytes bounds sandbox memory usage. Default 128MB.
	SandboxMemoryBytes int64 `yaml:"sandbox_memory_bytes"`

	// MaxOutputTokens bounds serialized sandbox output. Default 4000.
	MaxOutputTokens int `yaml:"max_output_tokens"`

	// ToolTimeout bounds a single tool dispatch. Default 30s.
	ToolTimeout time.Duration `yaml:"tool_timeout"`

	// WorkingDir is the root every sandbox file path is resolved against.
	WorkingDir string `yaml:"working_dir"`

	// MaxFileSize bounds AST parser input size. Default 10MB.
	MaxFileSize int64 `yaml:"max_file_size"`
}

const (
	DefaultSandboxTimeout     = 5 * time.Second
	MaxSandboxTimeout         = 30 * time.Second
	DefaultSandboxMemoryBytes = 128 * 1024 * 1024
	DefaultMaxOutputTokens    = 4000
	DefaultToolTimeout        = 30 * time.Second
	DefaultMaxFileSize        = 10 * 1024 * 1024
)

// Default returns conservative defaults matching spec §4.11/§5.
func Default() Config {
	return Config{
		SandboxTimeout:     DefaultSandboxTimeout,
		SandboxMemoryBytes: DefaultSandboxMemoryBytes,
		MaxOutputTokens:    DefaultMaxOutputTokens,
		ToolTimeout:        DefaultToolTimeout,
		WorkingDir:         ".",
		MaxFileSize:        DefaultMaxFileSize,
	}
}

// Option mutates a Config being constructed, mirroring the teacher's
// GoParserOption pattern (ast.WithMaxFileSize, ast.WithParseOptions).
type Option func(*Config)

// WithSandboxTimeout overrides the sandbox wall-clock timeout, clamped to
// MaxSandboxTimeout.
func WithSandboxTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d <= 0 {
			return
		}
		if d > MaxSandboxTimeout {
			d = MaxSandboxTimeout
		}
		c.SandboxTimeout = d
	}
}

// WithWorkingDir overrides the sandbox path-confinement root.
func WithWorkingDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.WorkingDir = dir
		}
	}
}

// WithMaxOutputTokens overrides the sandbox output token cap.
func WithMaxOutputTokens(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxOutputTokens = n
		}
	}
}

// New builds a Config from defaults plus opts.
func New(opts ...Option) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LoadFile merges a YAML config file into cfg without overwriting fields
// the caller already set to a non-zero value — CLI/caller precedence,
// matching Contextify's loadConfigFile merge semantics.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	if cfg.SandboxTimeout == 0 && fileCfg.SandboxTimeout > 0 {
		cfg.SandboxTimeout = fileCfg.SandboxTimeout
	}
	if cfg.SandboxMemoryBytes == 0 && fileCfg.SandboxMemoryBytes > 0 {
		cfg.SandboxMemoryBytes = fileCfg.SandboxMemoryBytes
	}
	if cfg.MaxOutputTokens == 0 && fileCfg.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = fileCfg.MaxOutputTokens
	}
	if cfg.ToolTimeout == 0 && fileCfg.ToolTimeout > 0 {
		cfg.ToolTimeout = fileCfg.ToolTimeout
	}
	if cfg.WorkingDir == "" && fileCfg.WorkingDir != "" {
		cfg.WorkingDir = fileCfg.WorkingDir
	}
	if cfg.MaxFileSize == 0 && fileCfg.MaxFileSize > 0 {
		cfg.MaxFileSize = fileCfg.MaxFileSize
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadIfExists calls LoadFile only when path exists, returning nil otherwise
// (mirrors Contextify's fileExists guard before loadConfigFile).
func LoadIfExists(path string, cfg *Config) error {
	if !fileExists(path) {
		return nil
	}
	return LoadFile(path, cfg)
}
