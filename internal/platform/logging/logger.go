// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logging for the context-compression
// engine, built on log/slog with an optional file sink alongside stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level mirrors slog's level set under names that read well in config files.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) slogLevel() slog.Level {
	switch strings.ToLower(string(l)) {
	case string(LevelDebug):
		return slog.LevelDebug
	case string(LevelWarn):
		return slog.LevelWarn
	case string(LevelError):
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum level that will be emitted.
	Level Level

	// Service names the component emitting logs (e.g. "sandbox", "registry").
	Service string

	// LogDir, if set, additionally writes JSON lines to
	// <LogDir>/<Service>_<date>.log. "~" is expanded to the user home dir.
	LogDir string
}

// Logger wraps a slog.Logger and an optional file sink that can be closed.
//
// Thread Safety: Logger is safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	slog   *slog.Logger
	file   *os.File
	closed bool
}

var defaultOnce sync.Once
var defaultLogger *Logger

// Default returns a process-wide Logger writing to stderr at Info level.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(Config{Level: LevelInfo, Service: "ctxengine"})
	})
	return defaultLogger
}

// New builds a Logger per cfg. Writers default to stderr; LogDir adds a
// second JSON destination. Errors opening the log file degrade silently to
// stderr-only, matching the teacher's "logging must never fail the caller"
// stance.
func New(cfg Config) *Logger {
	var writers []io.Writer
	writers = append(writers, os.Stderr)

	var file *os.File
	if cfg.LogDir != "" {
		dir := expandHome(cfg.LogDir)
		if err := os.MkdirAll(dir, 0o755); err == nil {
			name := cfg.Service
			if name == "" {
				name = "ctxengine"
			}
			path := filepath.Join(dir, name+"_"+time.Now().UTC().Format("20060102")+".log")
			if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
				file = f
				writers = append(writers, f)
			}
		}
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: cfg.Level.slogLevel(),
	})
	base := slog.New(handler)
	if cfg.Service != "" {
		base = base.With(slog.String("service", cfg.Service))
	}

	return &Logger{slog: base, file: file}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a child Logger with the given attributes attached to every
// subsequent record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), file: l.file}
}

// Close flushes and closes the file sink, if any. Safe to call more than
// once and safe to call when no file sink was configured.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.file == nil {
		l.closed = true
		return nil
	}
	l.closed = true
	return l.file.Close()
}
