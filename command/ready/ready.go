// Copyright 2022-2024 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ready

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/spf13/cobra"
)

type Config struct {
	APIAddress string
	Endpoint   string
	Timeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		APIAddress: "localhost:10000",
		Endpoint:   "/readyz",
		Timeout:    2 * time.Second,
	}
}

type command struct {
	Config
}

func (c *command) runE(cmd *cobra.Command, _ []string) error {
	host, port, err := net.SplitHostPort(c.APIAddress)
	if err != nil {
		return err
	}
	if host == "" {
		host = "localhost"
	}
	addr := net.JoinHostPort(host, port)

	ctx, cancel := context.WithTimeout(cmd.Context(), c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet, fmt.Sprintf("http://%s%s", addr, c.Endpoint), http.NoBody)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, err := httputil.DumpResponse(resp, true)
		if err != nil {
			return err
		}
		if _, err := cmd.ErrOrStderr().Write(b); err != nil {
			return err
		}

		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

func Command() *cobra.Command {
	return CommandWithConfig(DefaultConfig())
}

func CommandWithConfig(cfg Config) *cobra.Command {
	c := command{
		Config: cfg,
	}

	cmd := &cobra.Command{
		Use:   "ready [--api-address <host:port>] [flags]",
		Short: "Check that the authproxy is ready",
		Long:  long,
		RunE:  c.runE,
	}

	fs := cmd.Flags()
	bindAPIAddr(fs, &c.APIAddress)
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "The maximum amount of time to wait for the response. ")

	return cmd
}

const long = `This is equivalent to calling /readyz endpoint on the authproxy API server.
The command exits with a non-zero status unless the proxy is listening.`
