// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package conntrack wraps connections to count traffic and observe close.
package conntrack

import (
	"net"
	"sync"
	"sync/atomic"
)

// Observer allows to observe the number of bytes read and written from a connection.
type Observer struct {
	rx atomic.Uint64
	tx atomic.Uint64
}

// Rx returns the number of bytes read from the connection.
// It requires TrackTraffic to be set to true, otherwise it returns 0.
func (o *Observer) Rx() uint64 {
	return o.rx.Load()
}

// Tx returns the number of bytes written to the connection.
// It requires TrackTraffic to be set to true, otherwise it returns 0.
func (o *Observer) Tx() uint64 {
	return o.tx.Load()
}

// Conn is a net.Conn that optionally counts traffic and runs a hook on close.
type Conn struct {
	net.Conn

	track   bool
	o       Observer
	once    sync.Once
	onClose func()
}

func (c *Conn) Read(p []byte) (n int, err error) {
	n, err = c.Conn.Read(p)
	if c.track && n > 0 {
		c.o.rx.Add(uint64(n))
	}
	return
}

func (c *Conn) Write(p []byte) (n int, err error) {
	n, err = c.Conn.Write(p)
	if c.track && n > 0 {
		c.o.tx.Add(uint64(n))
	}
	return
}

// Close closes the underlying connection, OnClose is called at most once.
func (c *Conn) Close() error {
	err := c.Conn.Close()
	if c.onClose != nil {
		c.once.Do(c.onClose)
	}
	return err
}

// Observer returns the traffic observer, it is nil unless TrackTraffic is set.
func (c *Conn) Observer() *Observer {
	if !c.track {
		return nil
	}
	return &c.o
}

type Builder struct {
	// TrackTraffic enables counting of bytes read and written by the connection.
	// Use Rx and Tx to get the number of bytes read and written.
	TrackTraffic bool

	// OnClose is called after the underlying connection is closed and before the Close method returns.
	// OnClose is called at most once.
	OnClose func()
}

func (b Builder) Build(c net.Conn) *Conn {
	return &Conn{
		Conn:    c,
		track:   b.TrackTraffic,
		onClose: b.OnClose,
	}
}

// ObserverFromConn returns the observer of a tracked connection or nil.
func ObserverFromConn(c net.Conn) *Observer {
	if tc, ok := c.(*Conn); ok {
		return tc.Observer()
	}
	return nil
}
