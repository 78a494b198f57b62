// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"testing"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Errorf(format string, args ...any) {
	r.lines = append(r.lines, "E "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Infof(format string, args ...any) {
	r.lines = append(r.lines, "I "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Debugf(format string, args ...any) {
	r.lines = append(r.lines, "D "+fmt.Sprintf(format, args...))
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		msg  string
		args []any
		want string
	}{
		{"hello", nil, "hello"},
		{"hello", []any{"a", 1, "b", "x"}, "hello a=1 b=x"},
		{"hello", []any{"id", 7, "peer", "127.0.0.1:1"}, "[7] hello peer=127.0.0.1:1"},
		{"hello", []any{"dangling"}, "hello dangling"},
	}

	for _, tc := range tests {
		if got := formatMessage(tc.msg, tc.args...); got != tc.want {
			t.Errorf("formatMessage(%q, %v): got %q, want %q", tc.msg, tc.args, got, tc.want)
		}
	}
}

func TestStructuredLoggerAdapterWith(t *testing.T) {
	r := &recordingLogger{}
	l := NewStructuredLoggerAdapter(r).With("id", 1)
	l.Info("accepted", "peer", "x")
	l.With("stage", "read").Error("failed")
	l.Warn("slow")
	l.Debug("bytes", "n", 3)

	want := []string{
		"I [1] accepted peer=x",
		"E [1] failed stage=read",
		"I [WARN] [1] slow",
		"D [1] bytes n=3",
	}
	if len(r.lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(r.lines), len(want), r.lines)
	}
	for i := range want {
		if r.lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, r.lines[i], want[i])
		}
	}
}
