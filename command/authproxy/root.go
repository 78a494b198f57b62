// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"github.com/saucelabs/authproxy/bind"
	"github.com/saucelabs/authproxy/command/ready"
	"github.com/saucelabs/authproxy/command/run"
	"github.com/saucelabs/authproxy/command/version"
	"github.com/saucelabs/authproxy/utils/cobrautil"
	"github.com/spf13/cobra"
)

const (
	// EnvPrefix is empty so that flags map to LOCAL_HOST, PROXY_USER etc.
	EnvPrefix          = ""
	ConfigFileFlagName = "config-file"
)

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authproxy",
		Short: "HTTP proxy that adds upstream proxy credentials to every request",
		Long:  long,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cobrautil.BindAll(cmd, EnvPrefix, ConfigFileFlagName)
		},
		SilenceUsage: true,
	}
	bind.ConfigFile(cmd.PersistentFlags(), new(string))

	cmd.AddCommand(
		run.Command(),
		ready.Command(),
		version.Command(),
	)

	for _, c := range cmd.Commands() {
		cobrautil.AppendEnvToUsage(c, EnvPrefix)
		cobrautil.DefaultLong(c)
	}
	cobrautil.NoHelpSubcommand(cmd)

	return cmd
}

const long = `Clients that cannot authenticate to a proxy point at authproxy instead.
It forwards their requests to the upstream proxy adding the Proxy-Authorization header.`
