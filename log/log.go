// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package log defines the logging interfaces used across authproxy.
package log

import (
	"context"
	"os"
)

// Logger is a printf style logger.
type Logger interface {
	Errorf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

// StructuredLogger is the preferred logging interface.
// Arguments are alternating keys and values as in log/slog.
type StructuredLogger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)

	ErrorContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	DebugContext(ctx context.Context, msg string, args ...any)

	With(args ...any) StructuredLogger
}

var (
	DefaultFileFlags = os.O_CREATE | os.O_APPEND | os.O_WRONLY

	DefaultFileMode os.FileMode = 0o600
	DefaultDirMode  os.FileMode = 0o700
)

// NopLogger is a logger that does nothing.
var NopLogger = nopLogger{} //nolint:gochecknoglobals // nop implementation

var (
	_ Logger           = nopLogger{}
	_ StructuredLogger = nopLogger{}
)

type nopLogger struct{}

func (nopLogger) Errorf(_ string, _ ...any) {}
func (nopLogger) Infof(_ string, _ ...any)  {}
func (nopLogger) Debugf(_ string, _ ...any) {}

func (nopLogger) Error(_ string, _ ...any) {}
func (nopLogger) Warn(_ string, _ ...any)  {}
func (nopLogger) Info(_ string, _ ...any)  {}
func (nopLogger) Debug(_ string, _ ...any) {}

func (nopLogger) ErrorContext(_ context.Context, _ string, _ ...any) {}
func (nopLogger) WarnContext(_ context.Context, _ string, _ ...any)  {}
func (nopLogger) InfoContext(_ context.Context, _ string, _ ...any)  {}
func (nopLogger) DebugContext(_ context.Context, _ string, _ ...any) {}

func (l nopLogger) With(_ ...any) StructuredLogger { return l }
