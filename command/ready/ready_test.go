// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ready

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runReady(t *testing.T, h http.HandlerFunc) (stderr string, err error) {
	t.Helper()

	s := httptest.NewServer(h)
	defer s.Close()

	cmd := Command()
	var buf bytes.Buffer
	cmd.SetOut(io.Discard)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--api-address", strings.TrimPrefix(s.URL, "http://")})

	err = cmd.Execute()
	return buf.String(), err
}

func TestReady(t *testing.T) {
	var path string
	_, err := runReady(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	if err != nil {
		t.Fatal(err)
	}
	if path != "/readyz" {
		t.Fatalf("got path %q, want /readyz", path)
	}
}

func TestNotReady(t *testing.T) {
	stderr, err := runReady(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "not ready")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(stderr, "not ready") {
		t.Fatalf("response not dumped to stderr: %q", stderr)
	}
}
