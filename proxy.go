// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saucelabs/authproxy/conntrack"
	"github.com/saucelabs/authproxy/log"
)

// connHandler serves a classified request, it must not close conn.
type connHandler interface {
	handle(ctx context.Context, conn net.Conn, raw []byte, log log.StructuredLogger) error
}

// Proxy accepts client connections and relays them to the upstream proxy
// with the configured credentials.
type Proxy struct {
	config   ProxyConfig
	log      log.StructuredLogger
	listener *listener
	handlers [2]connHandler
	metrics  *proxyMetrics

	connID    atomic.Uint64
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// NewProxy binds the listening socket, failure to bind is reported as ErrBind.
func NewProxy(cfg *ProxyConfig, log log.StructuredLogger) (*Proxy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Proxy{
		config:  *cfg,
		log:     log,
		metrics: newProxyMetrics(cfg.PromRegistry, cfg.PromNamespace),
	}

	up := &upstream{
		addr:            cfg.UpstreamAddr(),
		credential:      NewCredential(cfg.ProxyUser, cfg.ProxyPassword),
		dial:            newDialer(&p.config.DialConfig, newDialerMetrics(cfg.PromRegistry, cfg.PromNamespace)).DialContext,
		responseTimeout: cfg.UpstreamResponseTimeout,
	}
	p.handlers[forwardRequest] = &forwardHandler{
		upstream:      up,
		settleTimeout: cfg.ForwardSettleTimeout,
		metrics:       p.metrics,
	}
	p.handlers[tunnelRequest] = &tunnelHandler{
		upstream: up,
		metrics:  p.metrics,
	}

	l, err := listen(&p.config, newListenerMetrics(cfg.PromRegistry, cfg.PromNamespace))
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %w", ErrBind, cfg.LocalAddr(), err)
	}
	p.listener = l

	return p, nil
}

// Addr returns the address the proxy is listening on.
func (p *Proxy) Addr() string {
	return p.listener.Addr().String()
}

// Run accepts connections until ctx is canceled or the proxy is closed.
// Then it stops accepting and waits up to ShutdownGracePeriod for in-flight
// connections. Connections still running after that are not interrupted.
func (p *Proxy) Run(ctx context.Context) error {
	auth := "without auth"
	if p.config.HasCredentials() {
		auth = "with auth"
	}
	p.log.Info("proxy started "+auth, "address", p.Addr(), "upstream", p.config.UpstreamAddr())

	for ctx.Err() == nil {
		if err := p.listener.SetDeadline(time.Now().Add(p.config.AcceptPollInterval)); err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			return fmt.Errorf("set accept deadline: %w", err)
		}

		conn, err := p.listener.Accept()
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			p.log.Error("failed to accept connection", "error", err)
			p.backoff(ctx)
			continue
		}

		id := p.connID.Add(1)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.serveConn(context.WithoutCancel(ctx), conn, id)
		}()
	}

	if err := p.Close(); err != nil {
		p.log.Error("failed to close listener", "error", err)
	}

	p.log.Info("waiting for connections to finish", "grace_period", p.config.ShutdownGracePeriod)
	if !p.wait(p.config.ShutdownGracePeriod) {
		p.log.Warn("connections still running after grace period")
	}
	p.log.Info("proxy stopped", "connections", p.connID.Load())

	return nil
}

func (p *Proxy) backoff(ctx context.Context) {
	t := time.NewTimer(p.config.AcceptErrorBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// wait reports whether all connections finished within d.
func (p *Proxy) wait(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}

func (p *Proxy) serveConn(ctx context.Context, conn net.Conn, id uint64) {
	log := p.log.With("id", id, "peer", conn.RemoteAddr().String())

	p.metrics.inFlight.Inc()
	defer p.metrics.inFlight.Dec()
	defer func() {
		closeConn(conn, "client", log)
		if o := conntrack.ObserverFromConn(conn); o != nil {
			log.Debug("connection closed", "rx", o.Rx(), "tx", o.Tx())
		}
	}()

	log.Debug("accepted connection")

	raw, err := readRequest(conn, p.config.ClientReadTimeout)
	if err == nil && raw == nil {
		log.Debug("client closed connection without sending a request")
		return
	}
	if err == nil {
		req := classify(raw)
		p.metrics.request(req.kind)
		log.Debug("received request", "kind", req.kind.String(), "bytes", len(raw), "request_line", firstLine(raw))
		err = p.handlers[req.kind].handle(ctx, conn, req.raw, log)
	}
	if err != nil {
		p.metrics.error(err)
		log.Error("connection failed", "stage", errorStage(err), "error", err)
	}
}

// Close stops accepting new connections, it does not interrupt in-flight ones.
func (p *Proxy) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.listener.Close()
	})
	return p.closeErr
}
