// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// oldFileCloseDelay gives in-flight writes to the previous file time to complete.
const oldFileCloseDelay = 5 * time.Second

// RotatableFile is a log file writer that reopens the file by name on SIGHUP,
// this allows logrotate to move the file away.
type RotatableFile struct {
	f     atomic.Pointer[os.File]
	sigCh chan os.Signal
	done  chan struct{}
	once  sync.Once
}

func NewRotatableFile(f *os.File) *RotatableFile {
	w := &RotatableFile{
		sigCh: make(chan os.Signal, 1),
		done:  make(chan struct{}),
	}
	w.f.Store(f)
	signal.Notify(w.sigCh, syscall.SIGHUP)
	go w.watch()
	return w
}

func (w *RotatableFile) Write(p []byte) (n int, err error) {
	return w.f.Load().Write(p)
}

func (w *RotatableFile) Close() error {
	w.once.Do(func() {
		signal.Stop(w.sigCh)
		close(w.done)
	})
	return w.f.Load().Close()
}

// Reopen opens the file by name and swaps it with the current one.
func (w *RotatableFile) Reopen() error {
	nf, err := os.OpenFile(w.f.Load().Name(), DefaultFileFlags, DefaultFileMode)
	if err != nil {
		return err
	}
	old := w.f.Swap(nf)

	time.AfterFunc(oldFileCloseDelay, func() {
		if err := old.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close old log file: %v\n", err)
		}
	})

	return nil
}

func (w *RotatableFile) watch() {
	for {
		select {
		case <-w.done:
			return
		case <-w.sigCh:
			if err := w.Reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to rotate log file: %v\n", err)
			}
		}
	}
}
