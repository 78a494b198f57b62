// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	r, err := Metrics()
	require.NoError(t, err)

	mfs, err := r.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	for _, name := range []string{
		"authproxy_listener_accepted_total",
		"authproxy_listener_errors_total",
		"authproxy_listener_closed_total",
		"authproxy_forward_response_bytes_total",
		"authproxy_connections_in_flight",
		"authproxy_version",
		"go_env_gomaxprocs",
		"go_goroutines",
	} {
		assert.True(t, names[name], "missing metric %s", name)
	}
}

func TestCommandFlags(t *testing.T) {
	cmd := Command()
	fs := cmd.Flags()

	for _, name := range []string{
		"local-host",
		"local-port",
		"proxy-host",
		"proxy-port",
		"proxy-user",
		"proxy-password",
		"api-address",
		"log-level",
	} {
		assert.NotNil(t, fs.Lookup(name), "missing flag %s", name)
	}

	assert.True(t, fs.Lookup("goleak").Hidden)
}
