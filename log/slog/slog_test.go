// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package slog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	flog "github.com/saucelabs/authproxy/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerJSONKeys(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&flog.Config{Level: flog.InfoLevel, Format: flog.JSONFormat}, &buf)
	l.Named("proxy").With("id", 1).Info("accepted", "peer", "127.0.0.1:1234")

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))

	assert.Equal(t, "accepted", m["message"])
	assert.Equal(t, "INFO", m["severity"])
	assert.Equal(t, "proxy", m["name"])
	assert.Equal(t, "127.0.0.1:1234", m["peer"])
	assert.Contains(t, m, "timestamp")
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&flog.Config{Level: flog.ErrorLevel, Format: flog.TextFormat}, &buf)
	l.Info("hidden")
	l.Debug("hidden")
	l.Error("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 1, strings.Count(out, "visible"))
}

func TestLoggerOnError(t *testing.T) {
	var names []string
	l := NewWithWriter(flog.DefaultConfig(), &bytes.Buffer{}, WithOnError(func(name string) {
		names = append(names, name)
	}))

	l.Named("proxy").Error("boom")
	l.Named("api").With("k", "v").Error("boom")
	l.Info("ignored")

	assert.Equal(t, []string{"proxy", "api"}, names)
}
