// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package run

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/saucelabs/authproxy"
	"github.com/saucelabs/authproxy/bind"
	"github.com/saucelabs/authproxy/internal/version"
	"github.com/saucelabs/authproxy/log"
	"github.com/saucelabs/authproxy/log/slog"
	"github.com/saucelabs/authproxy/runctx"
	"github.com/saucelabs/authproxy/utils/cobrautil"
	"github.com/spf13/cobra"
	"go.uber.org/goleak"
	"go.uber.org/multierr"
)

type command struct {
	promReg         *prometheus.Registry
	proxyConfig     *authproxy.ProxyConfig
	apiServerConfig *authproxy.HTTPServerConfig
	logConfig       *log.Config

	dryRun bool
	goleak bool
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	if f := c.logConfig.File; f != nil {
		defer f.Close()
	}
	onError, err := c.registerErrorsMetric()
	if err != nil {
		return fmt.Errorf("register errors metric: %w", err)
	}
	logger := slog.New(c.logConfig, slog.WithOnError(onError))

	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "close logger: %s\n", err)
		}
	}()

	defer func() {
		if cmdErr != nil {
			logger.Error("fatal error exiting", "error", cmdErr)
			cmd.SilenceErrors = true
		}
	}()

	logger.Info("authproxy starting", "version", version.Version, "commit", version.Commit)
	logger.Debug("resource limits", "gomaxprocs", runtime.GOMAXPROCS(0), "gomemlimit", os.Getenv("GOMEMLIMIT"))

	var cfg []byte
	{
		changed, err := cobrautil.FlagsDescriber{
			Format:          cobrautil.Plain,
			ShowChangedOnly: true,
			ShowHidden:      true,
		}.DescribeFlags(cmd.Flags())
		if err != nil {
			return err
		}
		if changed != "" {
			logger.Info("configuration\n" + changed)
		} else {
			logger.Info("using default configuration")
		}

		all, err := cobrautil.FlagsDescriber{
			Format:          cobrautil.Plain,
			ShowChangedOnly: false,
			ShowHidden:      true,
		}.DescribeFlags(cmd.Flags())
		if err != nil {
			return err
		}
		logger.Debug("all configuration\n" + all)
		cfg = []byte(all)
	}

	g := runctx.NewGroup()

	p, err := authproxy.NewProxy(c.proxyConfig, logger.Named("proxy"))
	if err != nil {
		return err
	}
	defer p.Close()
	g.Add(p.Run)

	{
		if err := c.registerGoMaxProcsMetric(); err != nil {
			return fmt.Errorf("register GOMAXPROCS metrics: %w", err)
		}
		if err := c.registerProcMetrics(); err != nil {
			return fmt.Errorf("register process metrics: %w", err)
		}
		if err := c.registerVersionMetric(); err != nil {
			return fmt.Errorf("register version metric: %w", err)
		}

		if c.apiServerConfig.Addr != "" {
			h := authproxy.NewAPIHandler(c.promReg, p, cfg)
			a, err := authproxy.NewHTTPServer(c.apiServerConfig, h, logger.Named("api"))
			if err != nil {
				return err
			}
			defer a.Close()
			g.Add(a.Run)
		}
	}

	if c.goleak {
		defer func() {
			if err := goleak.Find(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "goleak: %s", err)
				os.Exit(1)
			}
		}()
	}

	if c.dryRun {
		return nil
	}

	return g.Run()
}

func (c *command) registerErrorsMetric() (func(name string), error) {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.proxyConfig.PromNamespace,
		Name:      "errors_total",
		Help:      "Number of errors logged",
	}, []string{"name"})

	if err := c.promReg.Register(m); err != nil {
		return nil, err
	}

	return func(name string) {
		m.WithLabelValues(name).Inc()
	}, nil
}

func (c *command) registerGoMaxProcsMetric() error {
	return c.promReg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "go_env",
		Name:      "gomaxprocs",
		Help:      "Number of maximum goroutines that can be executed simultaneously",
	}, func() float64 {
		return float64(runtime.GOMAXPROCS(0))
	}))
}

func (c *command) registerProcMetrics() error {
	return multierr.Combine(
		// Note that ProcessCollector is only available in Linux and Windows.
		c.promReg.Register(collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{Namespace: c.proxyConfig.PromNamespace})),
		c.promReg.Register(collectors.NewGoCollector()),
	)
}

func (c *command) registerVersionMetric() error {
	return c.promReg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: c.proxyConfig.PromNamespace,
		Name:      "version",
		Help:      "authproxy version, value is always 1",
		ConstLabels: prometheus.Labels{
			"version": version.Version,
			"commit":  version.Commit,
			"time":    version.Time,
		},
	}, func() float64 {
		return 1
	}))
}

const promNs = "authproxy"

func Command() *cobra.Command {
	c := makeCommand()

	cmd := &cobra.Command{
		Use:     "run [--local-port <port>] [--proxy-host <host>] [--proxy-user <username>] [flags]",
		Short:   "Start the proxy that authenticates to the upstream proxy",
		Long:    long,
		Example: example,
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	bind.ProxyConfig(fs, c.proxyConfig)
	bind.HTTPServerConfig(fs, c.apiServerConfig, "api")
	bind.LogConfig(fs, c.logConfig)
	bind.AutoMarkFlagFilename(cmd)

	fs.BoolVar(&c.goleak, "goleak", false, "enable goleak")

	bind.MarkFlagHidden(cmd,
		"goleak",
	)

	return cmd
}

// Metrics returns the registry with all metrics registered by the run command.
func Metrics() (*prometheus.Registry, error) {
	c := makeCommand()
	c.logConfig = &log.Config{
		Level:  log.ErrorLevel,
		Format: log.TextFormat,
	}
	c.apiServerConfig.Addr = ""
	c.proxyConfig.LocalHost = "localhost"
	c.proxyConfig.LocalPort = 0
	c.dryRun = true

	cmd := &cobra.Command{
		Use:                "run",
		RunE:               c.runE,
		DisableFlagParsing: true,
	}
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err != nil {
		return nil, err
	}

	return c.promReg, nil
}

func makeCommand() command {
	c := command{
		promReg:         prometheus.NewRegistry(),
		proxyConfig:     authproxy.DefaultProxyConfig(),
		apiServerConfig: authproxy.DefaultHTTPServerConfig(),
		logConfig:       log.DefaultConfig(),
	}
	c.proxyConfig.PromRegistry = c.promReg
	c.proxyConfig.PromNamespace = promNs
	c.apiServerConfig.Paths = authproxy.APIEndpoints
	c.apiServerConfig.PromRegistry = c.promReg
	c.apiServerConfig.PromNamespace = promNs + "_api"

	return c
}

const long = `Every request accepted on --local-host:--local-port is forwarded to the upstream proxy --proxy-host:--proxy-port
with a Proxy-Authorization header carrying --proxy-user and --proxy-password as Basic credentials.
CONNECT requests are tunneled, other requests are forwarded verbatim with the header injected.
`

const example = `  # Listen on port 8118 and forward to squid:3128
  authproxy run --proxy-user alice --proxy-password secret

  # Configure with environment variables
  LOCAL_PORT=3128 PROXY_HOST=proxy.internal PROXY_USER=alice PROXY_PASSWORD=secret authproxy run

  # Load options from a config file and disable the API server
  authproxy run -c /etc/authproxy.yaml --api-address ""
`
