// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestNewCredential(t *testing.T) {
	tests := []struct {
		user, password string
		token          string
	}{
		{"alice", "secret", "YWxpY2U6c2VjcmV0"},
		{"", "", "Og=="},
		{"user", "p@ss:word", "dXNlcjpwQHNzOndvcmQ="},
	}

	for _, tc := range tests {
		c := NewCredential(tc.user, tc.password)
		if c.Token() != tc.token {
			t.Errorf("NewCredential(%q, %q): got %q, want %q", tc.user, tc.password, c.Token(), tc.token)
		}
		if c != NewCredential(tc.user, tc.password) {
			t.Errorf("NewCredential(%q, %q) is not deterministic", tc.user, tc.password)
		}
		if want := "Basic " + tc.token; c.HeaderValue() != want {
			t.Errorf("HeaderValue: got %q, want %q", c.HeaderValue(), want)
		}
	}
}

func TestCredentialRedacted(t *testing.T) {
	c := NewCredential("alice", "secret")

	for _, s := range []string{
		c.String(),
		fmt.Sprintf("%v", c),
		fmt.Sprintf("%+v", c),
		fmt.Sprintf("%#v", c),
	} {
		if strings.Contains(s, c.Token()) {
			t.Errorf("credential leaked: %s", s)
		}
	}

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("x", "credential", c)
	if strings.Contains(buf.String(), c.Token()) {
		t.Errorf("credential leaked to slog: %s", buf.String())
	}
}
