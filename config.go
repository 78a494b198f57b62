// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config is the connection level configuration of the proxy.
// It is read-only once the proxy is created.
type Config struct {
	LocalHost     string
	LocalPort     uint16
	ProxyHost     string
	ProxyPort     uint16
	ProxyUser     string
	ProxyPassword string
}

func DefaultConfig() *Config {
	return &Config{
		LocalHost: "0.0.0.0",
		LocalPort: 8118,
		ProxyHost: "squid",
		ProxyPort: 3128,
	}
}

// LocalAddr returns the host:port the proxy listens on.
func (c *Config) LocalAddr() string {
	return net.JoinHostPort(c.LocalHost, strconv.Itoa(int(c.LocalPort)))
}

// UpstreamAddr returns the host:port of the upstream proxy.
func (c *Config) UpstreamAddr() string {
	return net.JoinHostPort(c.ProxyHost, strconv.Itoa(int(c.ProxyPort)))
}

// HasCredentials reports whether upstream username or password is set.
// Proxy-Authorization is sent upstream regardless.
func (c *Config) HasCredentials() bool {
	return c.ProxyUser != "" || c.ProxyPassword != ""
}

func (c *Config) Validate() error {
	if c.ProxyHost == "" {
		return errors.New("proxy_host: cannot be empty")
	}
	if c.ProxyPort == 0 {
		return errors.New("proxy_port: cannot be 0")
	}
	return nil
}

type DialConfig struct {
	// DialTimeout is the maximum amount of time a dial will wait for
	// connect to complete.
	//
	// With or without a timeout, the operating system may impose
	// its own earlier timeout. For instance, TCP timeouts are
	// often around 3 minutes.
	DialTimeout time.Duration

	// KeepAlive enables TCP keep-alive messages for an active network connection.
	KeepAlive bool
}

func DefaultDialConfig() *DialConfig {
	return &DialConfig{
		DialTimeout: 10 * time.Second,
		KeepAlive:   true,
	}
}

type ProxyConfig struct {
	Config
	DialConfig

	// ClientReadTimeout bounds the first read from a newly accepted connection.
	ClientReadTimeout time.Duration

	// AcceptPollInterval is how long the accept loop waits for a connection
	// before checking if it should shut down.
	AcceptPollInterval time.Duration

	// AcceptErrorBackoff is the pause after a failed accept.
	AcceptErrorBackoff time.Duration

	// ShutdownGracePeriod is the maximum time to wait for in-flight
	// connections after the proxy stops accepting. Connections still running
	// after that are not interrupted.
	ShutdownGracePeriod time.Duration

	// UpstreamResponseTimeout bounds every read of the upstream response,
	// both the CONNECT reply and the forwarded response. Zero means no limit.
	UpstreamResponseTimeout time.Duration

	// ForwardSettleTimeout bounds the follow-up read after a short read of
	// a forwarded response. If it expires the response is considered complete.
	ForwardSettleTimeout time.Duration

	// ReadLimit and WriteLimit limit the bandwidth of client connections
	// in bytes per second. Zero means no limit.
	ReadLimit  int64
	WriteLimit int64

	PromNamespace string
	PromRegistry  prometheus.Registerer
}

func DefaultProxyConfig() *ProxyConfig {
	return &ProxyConfig{
		Config:                  *DefaultConfig(),
		DialConfig:              *DefaultDialConfig(),
		ClientReadTimeout:       10 * time.Second,
		AcceptPollInterval:      1 * time.Second,
		AcceptErrorBackoff:      100 * time.Millisecond,
		ShutdownGracePeriod:     2 * time.Second,
		UpstreamResponseTimeout: 30 * time.Second,
		ForwardSettleTimeout:    100 * time.Millisecond,
	}
}

func (c *ProxyConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.ClientReadTimeout <= 0 {
		return errors.New("client_read_timeout: must be positive")
	}
	if c.AcceptPollInterval <= 0 {
		return errors.New("accept_poll_interval: must be positive")
	}
	if c.ForwardSettleTimeout <= 0 {
		return errors.New("forward_settle_timeout: must be positive")
	}
	if c.UpstreamResponseTimeout < 0 {
		return fmt.Errorf("upstream_response_timeout: negative value %s", c.UpstreamResponseTimeout)
	}
	if c.ReadLimit < 0 || c.WriteLimit < 0 {
		return errors.New("read_limit, write_limit: cannot be negative")
	}
	return nil
}
