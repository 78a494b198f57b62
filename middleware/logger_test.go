// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoggerWrap(t *testing.T) {
	var got []LogEntry
	l := Logger(func(e LogEntry) {
		got = append(got, e)
	})

	h := l.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/teapot" {
			w.WriteHeader(http.StatusTeapot)
			w.WriteHeader(http.StatusOK)
			return
		}
		io.WriteString(w, "hello")
	}))

	for _, path := range []string{"/hello", "/teapot"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, http.NoBody))
	}

	type entry struct {
		Path    string
		Status  int
		Written int64
	}
	var entries []entry
	for _, e := range got {
		entries = append(entries, entry{e.Request.URL.Path, e.Status, e.Written})
	}

	want := []entry{
		{"/hello", http.StatusOK, 5},
		{"/teapot", http.StatusTeapot, 0},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("unexpected log entries (-want +got):\n%s", diff)
	}
}

func TestLoggerAndPrometheusShareDelegator(t *testing.T) {
	var status int
	l := Logger(func(e LogEntry) {
		status = e.Status
	})
	p := NewPrometheus(nil, "test")

	h := p.Wrap(l.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(delegator); !ok {
			t.Error("handler did not get delegator")
		}
		w.WriteHeader(http.StatusAccepted)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if status != http.StatusAccepted {
		t.Fatalf("got status %d, want %d", status, http.StatusAccepted)
	}
}
