// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"context"
	"fmt"
	"strings"
)

// NewStructuredLoggerAdapter exposes a printf style Logger as a StructuredLogger.
// Warnings are logged at info level with a [WARN] prefix.
func NewStructuredLoggerAdapter(log Logger) *StructuredLoggerAdapter {
	return &StructuredLoggerAdapter{log: log}
}

type StructuredLoggerAdapter struct {
	log  Logger
	args []any
}

var _ StructuredLogger = (*StructuredLoggerAdapter)(nil)

func (l *StructuredLoggerAdapter) Error(msg string, args ...any) {
	l.log.Errorf("%s", l.format(msg, args))
}

func (l *StructuredLoggerAdapter) Warn(msg string, args ...any) {
	l.log.Infof("[WARN] %s", l.format(msg, args))
}

func (l *StructuredLoggerAdapter) Info(msg string, args ...any) {
	l.log.Infof("%s", l.format(msg, args))
}

func (l *StructuredLoggerAdapter) Debug(msg string, args ...any) {
	l.log.Debugf("%s", l.format(msg, args))
}

func (l *StructuredLoggerAdapter) ErrorContext(_ context.Context, msg string, args ...any) {
	l.Error(msg, args...)
}

func (l *StructuredLoggerAdapter) WarnContext(_ context.Context, msg string, args ...any) {
	l.Warn(msg, args...)
}

func (l *StructuredLoggerAdapter) InfoContext(_ context.Context, msg string, args ...any) {
	l.Info(msg, args...)
}

func (l *StructuredLoggerAdapter) DebugContext(_ context.Context, msg string, args ...any) {
	l.Debug(msg, args...)
}

func (l *StructuredLoggerAdapter) With(args ...any) StructuredLogger {
	c := make([]any, 0, len(l.args)+len(args))
	c = append(c, l.args...)
	c = append(c, args...)
	return &StructuredLoggerAdapter{
		log:  l.log,
		args: c,
	}
}

func (l *StructuredLoggerAdapter) format(msg string, args []any) string {
	all := make([]any, 0, len(l.args)+len(args))
	all = append(all, l.args...)
	all = append(all, args...)
	return formatMessage(msg, all...)
}

// formatMessage renders msg and key-value pairs as "[id] msg k1=v1 k2=v2".
// The "id" key is moved to the front to keep connection logs easy to grep.
func formatMessage(msg string, args ...any) string {
	var (
		id string
		sb strings.Builder
	)
	sb.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			fmt.Fprintf(&sb, " %v", args[i])
			break
		}
		if args[i] == "id" {
			id = fmt.Sprintf("[%v] ", args[i+1])
			continue
		}
		fmt.Fprintf(&sb, " %v=%v", args[i], args[i+1])
	}
	return id + sb.String()
}
