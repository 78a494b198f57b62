// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package bind binds configuration structs to command line flags.
package bind

import (
	"strings"

	"github.com/mmatczuk/anyflag"
	"github.com/saucelabs/authproxy"
	"github.com/saucelabs/authproxy/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func ConfigFile(fs *pflag.FlagSet, configFile *string) {
	fs.StringVarP(configFile,
		"config-file", "c", *configFile, "<path>"+
			"Configuration file to load options from. "+
			"The supported formats are: JSON, YAML, TOML, HCL, and Java properties. "+
			"The file format is determined by the file extension, if not specified the default format is YAML. "+
			"The following precedence order of configuration sources is used: command flags, environment variables, config file, default values. ")
}

// Config binds the local listener and the upstream proxy settings.
// The flag names match the environment variables LOCAL_HOST, LOCAL_PORT,
// PROXY_HOST, PROXY_PORT, PROXY_USER and PROXY_PASSWORD.
func Config(fs *pflag.FlagSet, cfg *authproxy.Config) {
	fs.StringVar(&cfg.LocalHost,
		"local-host", cfg.LocalHost, "<host>"+
			"Address to listen on. ")

	fs.Uint16Var(&cfg.LocalPort,
		"local-port", cfg.LocalPort, "<port>"+
			"Port to listen on. ")

	fs.StringVar(&cfg.ProxyHost,
		"proxy-host", cfg.ProxyHost, "<host>"+
			"Upstream proxy host. ")

	fs.Uint16Var(&cfg.ProxyPort,
		"proxy-port", cfg.ProxyPort, "<port>"+
			"Upstream proxy port. ")

	fs.StringVar(&cfg.ProxyUser,
		"proxy-user", cfg.ProxyUser, "<username>"+
			"Upstream proxy username. ")

	fs.Var(anyflag.NewValueWithRedact[string](cfg.ProxyPassword, &cfg.ProxyPassword, parseString, RedactPassword),
		"proxy-password", "<password>"+
			"Upstream proxy password. "+
			"Username and password are sent to the upstream proxy in the Proxy-Authorization header of every request, "+
			"if both are empty the header is still sent. ")
}

func DialConfig(fs *pflag.FlagSet, cfg *authproxy.DialConfig) {
	fs.DurationVar(&cfg.DialTimeout,
		"dial-timeout", cfg.DialTimeout,
		"The maximum amount of time a dial to the upstream proxy will wait for a connect to complete. "+
			"With or without a timeout, the operating system may impose its own earlier timeout. For instance, TCP timeouts are often around 3 minutes. ")

	fs.BoolVar(&cfg.KeepAlive,
		"keep-alive", cfg.KeepAlive,
		"Enable TCP keep-alive on connections to the upstream proxy. ")
}

func ProxyConfig(fs *pflag.FlagSet, cfg *authproxy.ProxyConfig) {
	Config(fs, &cfg.Config)
	DialConfig(fs, &cfg.DialConfig)

	fs.DurationVar(&cfg.ClientReadTimeout,
		"client-read-timeout", cfg.ClientReadTimeout,
		"The maximum amount of time to wait for the request after accepting a connection. ")

	fs.DurationVar(&cfg.UpstreamResponseTimeout,
		"upstream-response-timeout", cfg.UpstreamResponseTimeout,
		"The maximum amount of time to wait for each read of the upstream proxy response. "+
			"Zero means no limit. ")

	fs.DurationVar(&cfg.ForwardSettleTimeout,
		"forward-settle-timeout", cfg.ForwardSettleTimeout,
		"The amount of time to wait for more response data after a short read. "+
			"If no data arrives within that time, the response is considered complete. ")

	fs.DurationVar(&cfg.ShutdownGracePeriod,
		"shutdown-grace-period", cfg.ShutdownGracePeriod,
		"The maximum amount of time to wait for in-flight connections on shutdown. ")

	fs.Int64Var(&cfg.ReadLimit,
		"read-limit", cfg.ReadLimit, "<bytes/s>"+
			"Global read rate limit in bytes per second i.e. how many bytes per second you can receive from the proxy. "+
			"Zero means no limit. ")

	fs.Int64Var(&cfg.WriteLimit,
		"write-limit", cfg.WriteLimit, "<bytes/s>"+
			"Global write rate limit in bytes per second i.e. how many bytes per second you can send to the proxy. "+
			"Zero means no limit. ")
}

func HTTPServerConfig(fs *pflag.FlagSet, cfg *authproxy.HTTPServerConfig, prefix string) {
	namePrefix := prefix
	if namePrefix != "" {
		namePrefix += "-"
	}

	fs.StringVar(&cfg.Addr,
		namePrefix+"address", cfg.Addr, "<host:port>"+
			"The server address to listen on. "+
			"If the host is empty, the server will listen on all available interfaces. "+
			"If empty, the server is disabled. ")

	fs.DurationVar(&cfg.ReadHeaderTimeout,
		namePrefix+"read-header-timeout", cfg.ReadHeaderTimeout,
		"The amount of time allowed to read request headers. ")
}

func LogConfig(fs *pflag.FlagSet, cfg *log.Config) {
	fs.Var(NewFileFlag(&cfg.File, OpenFileParser(log.DefaultFileFlags, log.DefaultFileMode, log.DefaultDirMode)),
		"log-file", "<path>"+
			"Path to the log file, if empty, logs to stdout. "+
			"The file is reopened on SIGHUP to support log rotation. ")

	fs.Var(anyflag.NewValue[log.Level](cfg.Level, &cfg.Level, anyflag.EnumParser[log.Level](log.Levels...)),
		"log-level", "<error|warn|info|debug>"+
			"Log level. ")

	fs.Var(anyflag.NewValue[log.Format](cfg.Format, &cfg.Format, anyflag.EnumParser[log.Format](log.Formats...)),
		"log-format", "<text|json>"+
			"Log format. ")
}

func parseString(val string) (string, error) {
	return val, nil
}

func MarkFlagHidden(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.Flags().MarkHidden(name); err != nil {
			panic(err)
		}
	}
}

func AutoMarkFlagFilename(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.HasPrefix(f.Usage, "<path") ||
			strings.HasSuffix(f.Name, "-file") ||
			strings.HasSuffix(f.Name, "-dir") {
			MarkFlagFilename(cmd, f.Name)
		}
	})
}

func MarkFlagFilename(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagFilename(name); err != nil {
			panic(err)
		}
	}
}
