// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	Version, Commit, Time = "v1.2.3", "1223423321234sdf", "2026-01-21T12:49:39Z"
	t.Cleanup(func() {
		Version, Commit, Time = "devel", "none", "unknown"
	})

	s := String()
	for _, want := range []string{"v1.2.3", "1223423321234sdf", "2026-01-21T12:49:39Z", runtime.Version()} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
