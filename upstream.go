// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"context"
	"net"
	"time"

	"github.com/saucelabs/authproxy/dialvia"
	"github.com/saucelabs/authproxy/log"
)

// upstream is the authenticating proxy all requests are relayed to.
// It is shared read-only by all connection handlers.
type upstream struct {
	addr            string
	credential      Credential
	dial            dialvia.ContextDialerFunc
	responseTimeout time.Duration
}

// connect opens a new connection to the upstream proxy, the caller owns it.
func (u *upstream) connect(ctx context.Context, log log.StructuredLogger) (net.Conn, error) {
	c, err := u.dial(ctx, "tcp", u.addr)
	if err != nil {
		return nil, newConnError("dial upstream", ErrUpstreamUnreachable, err)
	}
	log.Info("connected to upstream proxy", "upstream", u.addr)
	return c, nil
}

// readTimeout does a single read bounded by d, zero d means no limit.
// The read deadline is cleared before returning.
func readTimeout(c net.Conn, buf []byte, d time.Duration) (int, error) {
	if d > 0 {
		if err := c.SetReadDeadline(time.Now().Add(d)); err != nil {
			return 0, err
		}
		defer c.SetReadDeadline(time.Time{}) //nolint:errcheck // best effort
	}
	return c.Read(buf)
}

// closeConn closes c and logs unexpected errors.
func closeConn(c net.Conn, name string, log log.StructuredLogger) {
	if err := c.Close(); err != nil && !isClosedConnError(err) {
		log.Debug("failed to close connection", "conn", name, "error", err)
	}
}
