// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package conntrack

import (
	"io"
	"net"
	"testing"
)

func TestTrackTraffic(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()

	wc := Builder{TrackTraffic: true}.Build(a)
	defer wc.Close()

	go func() {
		buf := make([]byte, 5)
		io.ReadFull(b, buf)
		b.Write([]byte("pong"))
	}()

	if _, err := wc.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	if _, err := io.ReadFull(wc, buf); err != nil {
		t.Fatal(err)
	}

	o := ObserverFromConn(wc)
	if o == nil {
		t.Fatal("Expected a connection observer")
	}
	if o.Tx() != 5 {
		t.Errorf("Tx = %d, want 5", o.Tx())
	}
	if o.Rx() != 4 {
		t.Errorf("Rx = %d, want 4", o.Rx())
	}
}

func TestNoObserverWithoutTracking(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()

	wc := Builder{}.Build(a)
	defer wc.Close()

	if ObserverFromConn(wc) != nil {
		t.Error("Unexpected connection observer")
	}
	if ObserverFromConn(a) != nil {
		t.Error("Unexpected connection observer for a plain conn")
	}
}

func TestOnCloseCalledOnce(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()

	calls := 0
	wc := Builder{OnClose: func() { calls++ }}.Build(a)

	if err := wc.Close(); err != nil {
		t.Fatal(err)
	}
	wc.Close()

	if calls != 1 {
		t.Errorf("OnClose called %d times, want 1", calls)
	}
}
