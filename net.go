// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"context"
	"net"
	"syscall"
	"time"

	"github.com/saucelabs/authproxy/conntrack"
	"github.com/saucelabs/authproxy/ratelimit"
)

type dialer struct {
	nd      net.Dialer
	metrics *dialerMetrics
}

func newDialer(cfg *DialConfig, m *dialerMetrics) *dialer {
	nd := net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: -1,
	}

	if cfg.KeepAlive {
		nd.Control = func(network, address string, c syscall.RawConn) error {
			return c.Control(enableTCPKeepAlive)
		}
	}

	return &dialer{
		nd:      nd,
		metrics: m,
	}
}

func (d *dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	c, err := d.nd.DialContext(ctx, network, address)
	if err != nil {
		d.metrics.error(address)
		return nil, err
	}

	d.metrics.dial(address)
	return conntrack.Builder{
		OnClose: func() { d.metrics.close(address) },
	}.Build(c), nil
}

func defaultListenConfig() *net.ListenConfig {
	return &net.ListenConfig{
		KeepAlive: -1,
		Control: func(network, address string, c syscall.RawConn) error {
			return c.Control(enableTCPKeepAlive)
		},
	}
}

// Listen creates a listener for the provided network and address and configures OS-specific keep-alive parameters.
// See net.Listen for more information.
func Listen(network, address string) (net.Listener, error) {
	// The context cancellation does not close the listener.
	return defaultListenConfig().Listen(context.Background(), network, address)
}

type deadlineListener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// listener accepts client connections, it supports accept deadlines so that
// the accept loop can wake up periodically.
type listener struct {
	deadlineListener
	metrics *listenerMetrics
}

func listen(cfg *ProxyConfig, m *listenerMetrics) (*listener, error) {
	ll, err := Listen("tcp", cfg.LocalAddr())
	if err != nil {
		return nil, err
	}

	dl, ok := ll.(deadlineListener)
	if !ok {
		ll.Close()
		return nil, &net.OpError{Op: "listen", Net: "tcp", Err: syscall.EINVAL}
	}

	if rl, wl := cfg.ReadLimit, cfg.WriteLimit; rl > 0 || wl > 0 {
		// The ReadLimit is the limit of reading from the proxy, this is
		// writing to the client connection, the reverse is true for WriteLimit.
		dl = ratelimit.NewListener(dl, wl, rl)
	}

	return &listener{
		deadlineListener: dl,
		metrics:          m,
	}, nil
}

func (l *listener) Accept() (net.Conn, error) {
	c, err := l.deadlineListener.Accept()
	if err != nil {
		if !isTimeout(err) {
			l.metrics.error()
		}
		return nil, err
	}

	l.metrics.accept()
	return conntrack.Builder{
		TrackTraffic: true,
		OnClose:      l.metrics.close,
	}.Build(c), nil
}
