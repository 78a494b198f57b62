// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/saucelabs/authproxy/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticServer string

func (s staticServer) Addr() string {
	return string(s)
}

func TestAPIHandler(t *testing.T) {
	r := prometheus.NewRegistry()
	m := newProxyMetrics(r, "test")
	m.request(tunnelRequest)

	h := NewAPIHandler(r, staticServer("127.0.0.1:8118"), []byte("proxy-host=squid\n"))

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/healthz", http.StatusOK, "text/plain", "OK"},
		{"/readyz", http.StatusOK, "text/plain", "OK"},
		{"/configz", http.StatusOK, "text/plain", "proxy-host=squid"},
		{"/version", http.StatusOK, "application/json", `"go_version"`},
		{"/metrics", http.StatusOK, "text/plain", `test_requests_total{kind="tunnel"} 1`},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))

			assert.Equal(t, tc.status, rec.Code)
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), tc.contentType), rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tc.contains)
		})
	}
}

func TestAPIHandlerMetricsExposition(t *testing.T) {
	r := prometheus.NewRegistry()
	m := newProxyMetrics(r, "test")
	m.tunneled(10, 20)
	m.forwarded(5)

	h := NewAPIHandler(r, staticServer("127.0.0.1:8118"), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var p expfmt.TextParser
	mfs, err := p.TextToMetricFamilies(rec.Body)
	require.NoError(t, err)

	tb, ok := mfs["test_tunnel_bytes_total"]
	require.True(t, ok, "missing test_tunnel_bytes_total")
	assert.Equal(t, dto.MetricType_COUNTER, tb.GetType())

	got := make(map[string]float64)
	for _, m := range tb.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "direction" {
				got[l.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, map[string]float64{"upstream": 10, "client": 20}, got)

	fb, ok := mfs["test_forward_response_bytes_total"]
	require.True(t, ok, "missing test_forward_response_bytes_total")
	require.Len(t, fb.GetMetric(), 1)
	assert.Equal(t, 5.0, fb.GetMetric()[0].GetCounter().GetValue())
}

func TestAPIHandlerNotReady(t *testing.T) {
	h := NewAPIHandler(prometheus.NewRegistry(), staticServer(""), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIHandlerVersion(t *testing.T) {
	h := NewAPIHandler(prometheus.NewRegistry(), nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", http.NoBody))

	var v map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	for _, k := range []string{"version", "time", "commit", "go_arch", "go_os", "go_version"} {
		assert.Contains(t, v, k)
	}
}

func TestHTTPServerRun(t *testing.T) {
	r := prometheus.NewRegistry()
	cfg := DefaultHTTPServerConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.Paths = APIEndpoints
	cfg.PromRegistry = r
	cfg.PromNamespace = "api"

	hs, err := NewHTTPServer(cfg, NewAPIHandler(prometheus.NewRegistry(), staticServer("x"), nil), log.NopLogger)
	require.NoError(t, err)
	defer hs.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.Run(ctx)
	}()

	c := http.Client{Timeout: 5 * time.Second}
	resp, err := c.Get("http://" + hs.Addr() + "/healthz")
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "OK", string(b))

	n, err := testutil.GatherAndCount(r, "api_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cancel()
	require.NoError(t, <-errCh)
}
