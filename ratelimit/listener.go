// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ratelimit

import (
	"errors"
	"net"
	"time"

	"golang.org/x/time/rate"
)

// Listener limits the bandwidth of all accepted connections together.
type Listener struct {
	net.Listener
	rxLimiter *rate.Limiter
	txLimiter *rate.Limiter
}

// NewListener wraps l, non-positive bandwidth means no limit for that direction.
func NewListener(l net.Listener, rxBandwidth, txBandwidth int64) *Listener {
	var rxLimiter, txLimiter *rate.Limiter
	if rxBandwidth > 0 {
		rxLimiter = newRateLimiter(rxBandwidth)
	}
	if txBandwidth > 0 {
		txLimiter = newRateLimiter(txBandwidth)
	}

	return &Listener{
		Listener:  l,
		rxLimiter: rxLimiter,
		txLimiter: txLimiter,
	}
}

func (l *Listener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	return &Conn{
		Conn:      c,
		rxLimiter: l.rxLimiter,
		txLimiter: l.txLimiter,
	}, nil
}

// SetDeadline sets the accept deadline if the underlying listener supports it.
func (l *Listener) SetDeadline(t time.Time) error {
	dl, ok := l.Listener.(interface{ SetDeadline(time.Time) error })
	if !ok {
		return errors.New("ratelimit: listener does not support deadlines")
	}
	return dl.SetDeadline(t)
}
