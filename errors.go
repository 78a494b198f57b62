// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// ErrBind is fatal, all other errors are contained to a single connection.
var (
	ErrBind                = errors.New("bind failed")
	ErrReadTimeout         = errors.New("timeout reading from client")
	ErrClientRead          = errors.New("error reading from client")
	ErrMalformedRequest    = errors.New("malformed request")
	ErrEmptyRequest        = errors.New("empty request")
	ErrUpstreamUnreachable = errors.New("upstream proxy unreachable")
	ErrUpstreamWrite       = errors.New("error writing to upstream proxy")
	ErrUpstreamClosed      = errors.New("upstream proxy closed connection")
	ErrUpstreamRejected    = errors.New("upstream proxy returned error")
	ErrUpstreamRead        = errors.New("error reading from upstream proxy")
	ErrClientWrite         = errors.New("error writing to client")
)

var errorLabels = []struct {
	kind  error
	label string
}{
	{ErrBind, "bind"},
	{ErrReadTimeout, "read_timeout"},
	{ErrClientRead, "client_read"},
	{ErrMalformedRequest, "malformed_request"},
	{ErrEmptyRequest, "empty_request"},
	{ErrUpstreamUnreachable, "upstream_unreachable"},
	{ErrUpstreamWrite, "upstream_write"},
	{ErrUpstreamClosed, "upstream_closed"},
	{ErrUpstreamRejected, "upstream_rejected"},
	{ErrUpstreamRead, "upstream_read"},
	{ErrClientWrite, "client_write"},
}

// errorLabel returns the metric label for the kind of err.
func errorLabel(err error) string {
	for _, l := range errorLabels {
		if errors.Is(err, l.kind) {
			return l.label
		}
	}
	return "unexpected_error"
}

// connError is a per-connection failure annotated with the handling stage.
type connError struct {
	stage string
	kind  error
	err   error
}

func newConnError(stage string, kind, err error) error {
	return &connError{stage: stage, kind: kind, err: err}
}

func (e *connError) Error() string {
	if e.err == nil {
		return e.stage + ": " + e.kind.Error()
	}
	return fmt.Sprintf("%s: %v: %v", e.stage, e.kind, e.err)
}

func (e *connError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// errorStage returns the stage of a connError or "unknown".
func errorStage(err error) string {
	var ce *connError
	if errors.As(err, &ce) {
		return ce.stage
	}
	return "unknown"
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// isClosedConnError reports errors caused by the peer or by us closing the connection.
func isClosedConnError(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
