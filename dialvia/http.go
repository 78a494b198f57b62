// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dialvia

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
)

type HTTPProxyDialer struct {
	dial     ContextDialerFunc
	proxyURL *url.URL

	// ConnectHeader is added to every CONNECT request.
	ConnectHeader http.Header
}

// HTTPProxy returns a dialer that tunnels through the proxy at proxyURL.
// If proxyURL has user info it is sent as Proxy-Authorization.
func HTTPProxy(dial ContextDialerFunc, proxyURL *url.URL) *HTTPProxyDialer {
	if dial == nil {
		panic("dial is required")
	}
	if proxyURL == nil {
		panic("proxy URL is required")
	}
	if proxyURL.Scheme != "http" {
		panic("proxy URL scheme must be http")
	}

	return &HTTPProxyDialer{
		dial:     dial,
		proxyURL: proxyURL,
	}
}

func (d *HTTPProxyDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	res, conn, err := d.DialContextR(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		b, err := httputil.DumpResponse(res, true)
		if err != nil {
			b = []byte(fmt.Sprintf("error dumping response: %s", err))
		}

		conn.Close()
		return nil, fmt.Errorf("proxy connection failed status=%d\n\n%s", res.StatusCode, string(b))
	}

	return conn, nil
}

// DialContextR is like DialContext but returns the HTTP response as well.
// The connection is returned regardless of the status code.
// The caller is responsible for closing the response body.
func (d *HTTPProxyDialer) DialContextR(ctx context.Context, network, addr string) (*http.Response, net.Conn, error) {
	if network != "tcp" && network != "tcp4" && network != "tcp6" {
		return nil, nil, fmt.Errorf("unsupported network: %s", network)
	}

	conn, err := d.dial(ctx, "tcp", d.proxyURL.Host)
	if err != nil {
		return nil, nil, err
	}

	req := http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Host: addr},
		Host:   addr,
		Header: http.Header{},
	}
	for k, v := range d.ConnectHeader {
		req.Header[k] = v
	}

	// Don't send the default Go HTTP client User-Agent.
	req.Header.Set("User-Agent", "")
	if u := d.proxyURL.User; u != nil {
		pass, _ := u.Password()
		auth := u.Username() + ":" + pass
		req.Header.Set("Proxy-Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth)))
	}

	pbw := bufio.NewWriterSize(conn, 1024)
	if err := req.Write(pbw); err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := pbw.Flush(); err != nil {
		conn.Close()
		return nil, nil, err
	}

	type result struct {
		res *http.Response
		err error
	}
	resCh := make(chan result, 1)
	pbr := bufio.NewReaderSize(conn, 1024)

	go func() {
		res, err := http.ReadResponse(pbr, &req) //nolint:bodyclose // caller is responsible for closing the response body
		resCh <- result{res, err}
	}()

	select {
	case <-ctx.Done():
		conn.Close()
		<-resCh
		return nil, nil, ctx.Err()
	case r := <-resCh:
		if r.err != nil {
			conn.Close()
			return nil, nil, r.err
		}
		if pbr.Buffered() > 0 {
			conn = &bufferedConn{Conn: conn, r: pbr}
		}
		return r.res, conn, nil
	}
}

// bufferedConn returns bytes read past the CONNECT response before reading from the connection.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	if c.r.Buffered() > 0 {
		return c.r.Read(p)
	}
	return c.Conn.Read(p)
}
