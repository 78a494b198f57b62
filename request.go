// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

// requestBufferSize caps the first read from a client and from the upstream CONNECT reply.
const requestBufferSize = 1024

type requestKind int

const (
	forwardRequest requestKind = iota
	tunnelRequest
)

func (k requestKind) String() string {
	switch k {
	case forwardRequest:
		return "forward"
	case tunnelRequest:
		return "tunnel"
	default:
		return "unknown"
	}
}

// request is the raw head of a client connection tagged with the handler it needs.
type request struct {
	kind requestKind
	raw  []byte
}

var connectPrefix = []byte("CONNECT")

// classify does a prefix check only, handlers parse the request themselves.
func classify(raw []byte) request {
	kind := forwardRequest
	if bytes.HasPrefix(raw, connectPrefix) {
		kind = tunnelRequest
	}
	return request{kind: kind, raw: raw}
}

// readRequest does a single read of up to requestBufferSize bytes bounded by timeout.
// It returns nil, nil if the client closed the connection without sending anything.
func readRequest(conn net.Conn, timeout time.Duration) ([]byte, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, newConnError("read request", ErrClientRead, err)
	}
	defer conn.SetReadDeadline(time.Time{}) //nolint:errcheck // best effort

	buf := make([]byte, requestBufferSize)
	n, err := conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil, nil
	case isTimeout(err):
		return nil, newConnError("read request", ErrReadTimeout, nil)
	default:
		return nil, newConnError("read request", ErrClientRead, err)
	}
}

// splitLines splits s on LF and trims a trailing CR from each line.
// A trailing line terminator does not produce an empty last line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// firstLine returns the request line of raw without the line terminator.
func firstLine(raw []byte) string {
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSuffix(string(raw), "\r")
}

// splitHead splits raw at the first empty line.
// The returned head excludes the empty line, body is nil if there is no empty line.
func splitHead(raw []byte) (head, body []byte, ok bool) {
	for i := 0; i < len(raw); {
		j := bytes.IndexByte(raw[i:], '\n')
		if j < 0 {
			break
		}
		line := raw[i : i+j]
		if len(line) == 0 || (len(line) == 1 && line[0] == '\r') {
			return raw[:i], raw[i+j+1:], true
		}
		i += j + 1
	}
	return raw, nil, false
}
