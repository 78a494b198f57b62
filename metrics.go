// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"net"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type dialerMetrics struct {
	errors *prometheus.CounterVec
	dialed *prometheus.CounterVec
	active *prometheus.GaugeVec
}

func newDialerMetrics(r prometheus.Registerer, namespace string) *dialerMetrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)
	l := []string{"host"}

	return &dialerMetrics{
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "dialer_errors_total",
			Namespace: namespace,
			Help:      "Number of errors dialing the upstream proxy",
		}, l),
		dialed: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "dialer_cx_total",
			Namespace: namespace,
			Help:      "Number of connections dialed to the upstream proxy",
		}, l),
		active: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:      "dialer_cx_active",
			Namespace: namespace,
			Help:      "Number of active connections to the upstream proxy",
		}, l),
	}
}

func (m *dialerMetrics) error(addr string) {
	m.errors.WithLabelValues(addr2Host(addr)).Inc()
}

func (m *dialerMetrics) dial(addr string) {
	host := addr2Host(addr)
	m.dialed.WithLabelValues(host).Inc()
	m.active.WithLabelValues(host).Inc()
}

func (m *dialerMetrics) close(addr string) {
	m.active.WithLabelValues(addr2Host(addr)).Dec()
}

func addr2Host(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "unknown"
	}

	if slices.Contains([]string{"localhost", "127.0.0.1", "::1", "::"}, host) {
		return "localhost"
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsUnspecified()) {
		return "localhost"
	}

	return host
}

type listenerMetrics struct {
	accepted prometheus.Counter
	errors   prometheus.Counter
	closed   prometheus.Counter
}

func newListenerMetrics(r prometheus.Registerer, namespace string) *listenerMetrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	return &listenerMetrics{
		accepted: f.NewCounter(prometheus.CounterOpts{
			Name:      "listener_accepted_total",
			Namespace: namespace,
			Help:      "Number of accepted connections",
		}),
		errors: f.NewCounter(prometheus.CounterOpts{
			Name:      "listener_errors_total",
			Namespace: namespace,
			Help:      "Number of listener errors when accepting connections",
		}),
		closed: f.NewCounter(prometheus.CounterOpts{
			Name:      "listener_closed_total",
			Namespace: namespace,
			Help:      "Number of closed connections",
		}),
	}
}

func (m *listenerMetrics) accept() {
	m.accepted.Inc()
}

func (m *listenerMetrics) error() {
	m.errors.Inc()
}

func (m *listenerMetrics) close() {
	m.closed.Inc()
}

type proxyMetrics struct {
	requests    *prometheus.CounterVec
	errors      *prometheus.CounterVec
	tunnelBytes *prometheus.CounterVec
	fwdBytes    prometheus.Counter
	inFlight    prometheus.Gauge
}

func newProxyMetrics(r prometheus.Registerer, namespace string) *proxyMetrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	return &proxyMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "requests_total",
			Namespace: namespace,
			Help:      "Number of requests by kind",
		}, []string{"kind"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "connection_errors_total",
			Namespace: namespace,
			Help:      "Number of connections that ended with an error by reason",
		}, []string{"reason"}),
		tunnelBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "tunnel_bytes_total",
			Namespace: namespace,
			Help:      "Number of bytes relayed through CONNECT tunnels by direction",
		}, []string{"direction"}),
		fwdBytes: f.NewCounter(prometheus.CounterOpts{
			Name:      "forward_response_bytes_total",
			Namespace: namespace,
			Help:      "Number of response bytes relayed for forwarded requests",
		}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name:      "connections_in_flight",
			Namespace: namespace,
			Help:      "Number of connections being handled",
		}),
	}
}

func (m *proxyMetrics) request(k requestKind) {
	m.requests.WithLabelValues(k.String()).Inc()
}

func (m *proxyMetrics) error(err error) {
	m.errors.WithLabelValues(errorLabel(err)).Inc()
}

func (m *proxyMetrics) tunneled(sent, received int64) {
	m.tunnelBytes.WithLabelValues("upstream").Add(float64(sent))
	m.tunnelBytes.WithLabelValues("client").Add(float64(received))
}

func (m *proxyMetrics) forwarded(n int64) {
	m.fwdBytes.Add(float64(n))
}
