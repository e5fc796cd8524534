// Command ctxengine is a local CLI front end for the context-compression
// engine: a command tree (root + serve/compress/discover) mirroring the
// teacher's cmd/codebuddy layout and Contextify's cobra usage, wired to
// the same registry/sandbox stack any embedding transport would use.
//
// Usage:
//
//	ctxengine discover
//	ctxengine compress --file build.log
//	ctxengine serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctxengine/ctxengine/internal/astx"
	"github.com/ctxengine/ctxengine/internal/platform/config"
	"github.com/ctxengine/ctxengine/internal/platform/logging"
	"github.com/ctxengine/ctxengine/internal/registry"
	"github.com/ctxengine/ctxengine/internal/sandbox"
	"github.com/ctxengine/ctxengine/internal/toolset"
)

const version = "0.1.0-ctxengine"

var (
	flagWorkingDir string
	flagConfigFile string
	flagLogLevel   string
	flagLogDir     string
)

var rootCmd = &cobra.Command{
	Use:     "ctxengine",
	Short:   "ctxengine — context-compression engine for LLM coding assistants",
	Long:    "ctxengine compresses source, logs, diffs, and conversation transcripts into drastically smaller, semantically equivalent payloads for LLM coding assistants.",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagWorkingDir, "working-dir", "w", ".", "Root directory every sandboxed file path is resolved against")
	rootCmd.PersistentFlags().StringVarP(&flagConfigFile, "config", "c", "", "Optional YAML config file (defaults to <working-dir>/.ctxengine.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&flagLogDir, "log-dir", "", "Optional directory for a JSON-lines log file alongside stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(discoverCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// engine is the fully wired process: the tool registry, the SDK it
// dispatches into, and the logger every command shares.
type engine struct {
	cfg      config.Config
	logger   *logging.Logger
	registry *registry.Registry
	sdk      *sandbox.SDK
}

// buildEngine loads config (CLI flags win over an optional YAML file),
// constructs the sandbox SDK rooted at the working directory, and mounts
// every toolset tool onto a fresh registry.
func buildEngine() (*engine, error) {
	cfg := config.New(config.WithWorkingDir(flagWorkingDir))
	configPath := flagConfigFile
	if configPath == "" {
		configPath = flagWorkingDir + "/.ctxengine.yaml"
	}
	if err := config.LoadIfExists(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}

	logger := logging.New(logging.Config{
		Level:   logging.Level(flagLogLevel),
		Service: "ctxengine",
		LogDir:  flagLogDir,
	})

	astReg := astx.NewRegistry(cfg.MaxFileSize)
	sdk, err := sandbox.NewSDK(cfg.WorkingDir, astReg)
	if err != nil {
		return nil, fmt.Errorf("building sandbox SDK: %w", err)
	}

	reg := registry.NewRegistry()
	reg.SetToolTimeout(cfg.ToolTimeout)
	reg.Use(&registry.RecoveryMiddleware{})
	toolset.RegisterAll(reg, sdk)

	return &engine{cfg: cfg, logger: logger, registry: reg, sdk: sdk}, nil
}
