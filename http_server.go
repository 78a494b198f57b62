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
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/saucelabs/authproxy/log"
	"github.com/saucelabs/authproxy/middleware"
	"go.uber.org/multierr"
)

type HTTPServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	// Paths lists the endpoints that get their own metric label.
	Paths []string

	PromNamespace string
	PromRegistry  prometheus.Registerer
}

func DefaultHTTPServerConfig() *HTTPServerConfig {
	return &HTTPServerConfig{
		Addr:              "localhost:10000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// HTTPServer is a plain HTTP server, it is used to serve the API.
type HTTPServer struct {
	config   HTTPServerConfig
	log      log.StructuredLogger
	srv      *http.Server
	listener net.Listener
}

// NewHTTPServer binds the listening socket and returns the server.
func NewHTTPServer(cfg *HTTPServerConfig, h http.Handler, log log.StructuredLogger) (*HTTPServer, error) {
	l, err := Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open listener on address %s: %w", cfg.Addr, err)
	}

	p := middleware.NewPrometheus(cfg.PromRegistry, cfg.PromNamespace,
		middleware.WithCustomLabeler("path", middleware.PathLabeler(cfg.Paths...)))
	h = p.Wrap(middleware.Logger(func(e middleware.LogEntry) {
		log.Debug("HTTP request",
			"method", e.Request.Method,
			"path", e.Request.URL.Path,
			"peer", e.Request.RemoteAddr,
			"status", e.Status,
			"written", e.Written,
			"duration", e.Duration,
		)
	}).Wrap(h))

	return &HTTPServer{
		config: *cfg,
		log:    log,
		srv: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		listener: l,
	}, nil
}

func (hs *HTTPServer) Run(ctx context.Context) error {
	hs.log.Info("HTTP server listening", "address", hs.Addr())

	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), hs.config.ShutdownTimeout)
		defer cancel()
		errCh <- hs.srv.Shutdown(sctx)
	}()

	if err := hs.srv.Serve(hs.listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-errCh; err != nil {
		hs.log.Error("failed to shutdown server", "error", err)
	}
	hs.log.Debug("server was shutdown gracefully")

	return nil
}

// Addr returns the address the server is listening on.
func (hs *HTTPServer) Addr() string {
	return hs.listener.Addr().String()
}

func (hs *HTTPServer) Close() error {
	err := hs.srv.Close()
	if lerr := hs.listener.Close(); lerr != nil && !errors.Is(lerr, net.ErrClosed) {
		err = multierr.Append(err, lerr)
	}
	return err
}
