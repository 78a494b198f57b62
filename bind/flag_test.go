// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/saucelabs/authproxy"
	"github.com/saucelabs/authproxy/log"
	"github.com/spf13/pflag"
)

func TestProxyConfig(t *testing.T) {
	cfg := authproxy.DefaultProxyConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	ProxyConfig(fs, cfg)

	err := fs.Parse([]string{
		"--local-host", "127.0.0.1",
		"--local-port", "9000",
		"--proxy-host", "proxy.internal",
		"--proxy-port", "3129",
		"--proxy-user", "alice",
		"--proxy-password", "secret",
		"--upstream-response-timeout", "0s",
		"--read-limit", "1024",
	})
	if err != nil {
		t.Fatal(err)
	}

	want := authproxy.DefaultProxyConfig()
	want.LocalHost = "127.0.0.1"
	want.LocalPort = 9000
	want.ProxyHost = "proxy.internal"
	want.ProxyPort = 3129
	want.ProxyUser = "alice"
	want.ProxyPassword = "secret"
	want.UpstreamResponseTimeout = 0
	want.ReadLimit = 1024

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}

	if got := fs.Lookup("proxy-password").Value.String(); got != "xxxxx" {
		t.Fatalf("proxy-password is not redacted: %q", got)
	}
}

func TestProxyConfigInvalidPort(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	ProxyConfig(fs, authproxy.DefaultProxyConfig())

	if err := fs.Parse([]string{"--proxy-port", "70000"}); err == nil {
		t.Fatal("expected error for port out of range")
	}
}

func TestLogConfig(t *testing.T) {
	cfg := log.DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	LogConfig(fs, cfg)

	p := filepath.Join(t.TempDir(), "logs", "authproxy.log")
	if err := fs.Parse([]string{"--log-level", "debug", "--log-format", "json", "--log-file", p}); err != nil {
		t.Fatal(err)
	}
	defer cfg.File.Close()

	if cfg.Level != log.DebugLevel {
		t.Errorf("got level %s, want debug", cfg.Level)
	}
	if cfg.Format != log.JSONFormat {
		t.Errorf("got format %s, want json", cfg.Format)
	}
	if cfg.File == nil || cfg.File.Name() != p {
		t.Errorf("log file not opened at %s", p)
	}
	if got := fs.Lookup("log-file").Value.String(); got != p {
		t.Errorf("got log-file %q, want %q", got, p)
	}

	if err := fs.Set("log-level", "trace"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestHTTPServerConfig(t *testing.T) {
	cfg := authproxy.DefaultHTTPServerConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	HTTPServerConfig(fs, cfg, "api")

	if err := fs.Parse([]string{"--api-address", "", "--api-read-header-timeout", "1s"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "" || cfg.ReadHeaderTimeout != time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
