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
	"sync"
	"time"

	"github.com/saucelabs/authproxy/log"
)

const connectEstablished = "HTTP/1.1 200 Connection established\r\n\r\n"

// tunnelHandler handles CONNECT requests, it asks the upstream proxy for
// a tunnel to the same target and splices the two connections.
//
// The upstream reply is taken from a single read. If the upstream splits its
// response head across writes, the part that arrives later is relayed into
// the tunnel as data.
type tunnelHandler struct {
	upstream *upstream
	metrics  *proxyMetrics
}

func connectRequest(target string, c Credential) string {
	return "CONNECT " + target + " HTTP/1.1\r\n" +
		"Host: " + target + "\r\n" +
		proxyAuthorizationHeader + ": " + c.HeaderValue() + "\r\n" +
		"Proxy-Connection: Keep-Alive\r\n" +
		"\r\n"
}

func (h *tunnelHandler) handle(ctx context.Context, conn net.Conn, raw []byte, log log.StructuredLogger) error {
	line := firstLine(raw)
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return newConnError("parse request", ErrMalformedRequest, fmt.Errorf("invalid CONNECT request %q", line))
	}
	target := parts[1]
	log.Info("CONNECT request", "target", target)

	up, err := h.upstream.connect(ctx, log)
	if err != nil {
		return err
	}
	defer closeConn(up, "upstream", log)

	if _, err := io.WriteString(up, connectRequest(target, h.upstream.credential)); err != nil {
		return newConnError("write CONNECT", ErrUpstreamWrite, err)
	}
	log.Debug("sent CONNECT request to upstream proxy", "target", target)

	buf := make([]byte, requestBufferSize)
	n, err := readTimeout(up, buf, h.upstream.responseTimeout)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return newConnError("read CONNECT response", ErrUpstreamClosed, nil)
		}
		return newConnError("read CONNECT response", ErrUpstreamRead, err)
	}
	resp := buf[:n]
	status := firstLine(resp)
	log.Debug("upstream proxy response", "status", status)

	if !bytes.Contains(resp, []byte("200")) {
		if _, err := conn.Write(resp); err != nil {
			return newConnError("write CONNECT response", ErrClientWrite, err)
		}
		return newConnError("read CONNECT response", ErrUpstreamRejected, fmt.Errorf("%s", status))
	}

	if _, err := io.WriteString(conn, connectEstablished); err != nil {
		return newConnError("write CONNECT response", ErrClientWrite, err)
	}
	log.Info("tunnel established", "target", target)

	var sent, received int64

	// Bytes that arrived together with the handshakes belong to the tunnel.
	if _, rest, ok := splitHead(resp); ok && len(rest) > 0 {
		if _, err := conn.Write(rest); err != nil {
			return newConnError("tunnel", ErrClientWrite, err)
		}
		received += int64(len(rest))
	}
	if _, rest, ok := splitHead(raw); ok && len(rest) > 0 {
		if _, err := up.Write(rest); err != nil {
			return newConnError("tunnel", ErrUpstreamWrite, err)
		}
		sent += int64(len(rest))
	}

	s, r, err := relay(conn, up)
	sent += s
	received += r
	h.metrics.tunneled(sent, received)
	log.Info("tunnel closed", "target", target, "sent", sent, "received", received)

	return err
}

var copyBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 32*1024)
		return &b
	},
}

// aLongTimeAgo is a non-zero time far in the past, used to unblock
// pending reads and writes.
var aLongTimeAgo = time.Unix(1, 0)

// relay copies data in both directions until one of them is done,
// the other direction is then stopped by expiring the deadlines of both
// connections. It returns the number of bytes sent to and received from
// the upstream. Connections are not closed.
func relay(client, up net.Conn) (sent, received int64, err error) {
	type result struct {
		n   int64
		err error
	}
	upCh := make(chan result, 1)
	downCh := make(chan result, 1)

	go func() {
		n, err := pipe(up, client, ErrUpstreamWrite, ErrClientRead)
		upCh <- result{n, err}
	}()
	go func() {
		n, err := pipe(client, up, ErrClientWrite, ErrUpstreamRead)
		downCh <- result{n, err}
	}()

	var errs [2]error
	for i := 0; i < 2; i++ {
		select {
		case r := <-upCh:
			sent, errs[0] = r.n, r.err
		case r := <-downCh:
			received, errs[1] = r.n, r.err
		}
		if i == 0 {
			client.SetDeadline(aLongTimeAgo) //nolint:errcheck // best effort
			up.SetDeadline(aLongTimeAgo)     //nolint:errcheck // best effort
		}
	}

	for _, e := range errs {
		if e != nil && !isTimeout(e) && !isClosedConnError(e) {
			return sent, received, e
		}
	}

	return sent, received, nil
}

func pipe(dst io.Writer, src io.Reader, writeKind, readKind error) (int64, error) {
	bufp := copyBufPool.Get().(*[]byte) //nolint:forcetypeassert // pool of *[]byte
	defer copyBufPool.Put(bufp)
	buf := *bufp

	var written int64
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr == nil && nw != nr {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return written, newConnError("tunnel", writeKind, werr)
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return written, nil
			}
			return written, newConnError("tunnel", readKind, rerr)
		}
	}
}
