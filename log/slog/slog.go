// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package slog implements log.StructuredLogger on top of the standard log/slog package.
package slog

import (
	"context"
	"io"
	"log/slog"
	"os"

	flog "github.com/saucelabs/authproxy/log"
)

func Default() *Logger {
	return New(flog.DefaultConfig())
}

func Debug() *Logger {
	return New(&flog.Config{Level: flog.DebugLevel, Format: flog.TextFormat})
}

var _ flog.StructuredLogger = &Logger{}

type Option func(*Logger)

// Logger writes to stdout or to a rotatable log file if one is configured.
type Logger struct {
	log     *slog.Logger
	file    *flog.RotatableFile
	name    string
	onError func(name string)
}

func New(cfg *flog.Config, opts ...Option) *Logger {
	return newWithWriter(cfg, nil, opts...)
}

// NewWithWriter is like New but writes to w, cfg.File is ignored.
func NewWithWriter(cfg *flog.Config, w io.Writer, opts ...Option) *Logger {
	return newWithWriter(cfg, w, opts...)
}

func newWithWriter(cfg *flog.Config, w io.Writer, opts ...Option) *Logger {
	var f *flog.RotatableFile
	if w == nil {
		w = os.Stdout
		if cfg.File != nil {
			f = flog.NewRotatableFile(cfg.File)
			w = f
		}
	}

	hops := &slog.HandlerOptions{Level: toSlogLevel(cfg.Level), ReplaceAttr: replaceAttr}
	var h slog.Handler
	if cfg.Format == flog.JSONFormat {
		h = slog.NewJSONHandler(w, hops)
	} else {
		h = slog.NewTextHandler(w, hops)
	}

	l := &Logger{
		log:  slog.New(h),
		file: f,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *Logger) Handler() slog.Handler {
	return l.log.Handler()
}

func (l *Logger) Error(msg string, args ...any) {
	l.errorHook()
	l.log.Error(msg, args...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.errorHook()
	l.log.ErrorContext(ctx, msg, args...)
}

func (l *Logger) errorHook() {
	if l.onError != nil {
		l.onError(l.name)
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log.Warn(msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log.WarnContext(ctx, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log.InfoContext(ctx, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log.DebugContext(ctx, msg, args...)
}

func (l *Logger) With(args ...any) flog.StructuredLogger {
	c := *l
	c.log = c.log.With(args...)
	return &c
}

// Named returns a copy of the logger with the name attribute set.
// The name is also passed to the on error callback.
func (l *Logger) Named(name string) *Logger {
	c := *l
	c.name = name
	c.log = c.log.With("name", name)
	return &c
}

func (l *Logger) Reopen() error {
	if l.file == nil {
		return nil
	}
	return l.file.Reopen()
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func toSlogLevel(level flog.Level) slog.Level {
	switch level {
	case flog.ErrorLevel:
		return slog.LevelError
	case flog.WarnLevel:
		return slog.LevelWarn
	case flog.InfoLevel:
		return slog.LevelInfo
	case flog.DebugLevel:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}
