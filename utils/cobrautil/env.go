// Copyright 2023 Sauce Labs Inc. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// AppendEnvToUsage appends the environment variable name to the usage string of each flag.
func AppendEnvToUsage(cmd *cobra.Command, envPrefix string) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" {
			return
		}
		f.Usage += " (env " + EnvName(envPrefix, f.Name) + ")"
	})
}

// EnvName returns the environment variable BindAll reads for the flag.
func EnvName(envPrefix, flagName string) string {
	name := strings.ToUpper(envReplacer.Replace(flagName))
	if envPrefix == "" {
		return name
	}
	return strings.ToUpper(envReplacer.Replace(envPrefix)) + "_" + name
}
