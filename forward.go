// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/saucelabs/authproxy/log"
)

const (
	forwardBufferSize = 8192

	proxyAuthorizationHeader = "Proxy-Authorization"
)

// forwardHandler relays a single plain HTTP request and its response.
//
// The response has no framing, it is relayed until the upstream closes the
// connection or a read that follows a short read does not complete within
// settleTimeout. This may truncate slow responses.
type forwardHandler struct {
	upstream      *upstream
	settleTimeout time.Duration
	metrics       *proxyMetrics
}

func (h *forwardHandler) handle(ctx context.Context, conn net.Conn, raw []byte, log log.StructuredLogger) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return newConnError("parse request", ErrEmptyRequest, nil)
	}
	line := firstLine(raw)
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return newConnError("parse request", ErrMalformedRequest, fmt.Errorf("invalid request line %q", line))
	}
	log.Info("HTTP request", "method", parts[0], "uri", parts[1])

	up, err := h.upstream.connect(ctx, log)
	if err != nil {
		return err
	}
	defer closeConn(up, "upstream", log)

	req := InjectProxyAuthorization(raw, h.upstream.credential)
	log.Debug("sending modified request to upstream", "bytes", len(req))
	if _, err := up.Write(req); err != nil {
		return newConnError("write request", ErrUpstreamWrite, err)
	}

	n, err := h.relayResponse(conn, up)
	h.metrics.forwarded(n)
	if err != nil {
		return err
	}
	log.Info("HTTP request completed", "bytes", n)

	return nil
}

func (h *forwardHandler) relayResponse(client, up net.Conn) (int64, error) {
	var (
		buf      = make([]byte, forwardBufferSize)
		total    int64
		settling bool
	)
	for {
		timeout := h.upstream.responseTimeout
		if settling {
			timeout = h.settleTimeout
		}

		n, err := readTimeout(up, buf, timeout)
		if n > 0 {
			if _, werr := client.Write(buf[:n]); werr != nil {
				return total, newConnError("write response", ErrClientWrite, werr)
			}
			total += int64(n)
		}
		switch {
		case err == nil && n == 0, errors.Is(err, io.EOF):
			return total, nil
		case settling && isTimeout(err):
			return total, nil
		case err != nil:
			return total, newConnError("read response", ErrUpstreamRead, err)
		}

		settling = n < len(buf)
	}
}

// InjectProxyAuthorization returns the request with exactly one
// Proxy-Authorization header carrying the credential.
// Client supplied Proxy-Authorization headers are replaced, the header is
// matched case-insensitively. If there is none the header is added at the
// end of the header block. Header lines are rewritten with CRLF endings,
// the body, if any, is copied verbatim.
//
// The function is idempotent.
func InjectProxyAuthorization(raw []byte, c Credential) []byte {
	head, body, complete := splitHead(raw)
	authLine := proxyAuthorizationHeader + ": " + c.HeaderValue()

	var b bytes.Buffer
	b.Grow(len(raw) + len(authLine) + 4)

	injected := false
	for i, l := range splitLines(string(head)) {
		if i > 0 && isProxyAuthorizationLine(l) {
			if !injected {
				b.WriteString(authLine)
				b.WriteString("\r\n")
				injected = true
			}
			continue
		}
		b.WriteString(l)
		b.WriteString("\r\n")
	}
	if !injected {
		b.WriteString(authLine)
		b.WriteString("\r\n")
	}
	if complete {
		b.WriteString("\r\n")
		b.Write(body)
	}

	return b.Bytes()
}

func isProxyAuthorizationLine(l string) bool {
	n := len(proxyAuthorizationHeader)
	return len(l) > n && l[n] == ':' && strings.EqualFold(l[:n], proxyAuthorizationHeader)
}
