// Copyright 2023 Sauce Labs Inc. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var envReplacer = strings.NewReplacer(".", "_", "-", "_") //nolint:gochecknoglobals // false positive

// BindAll updates the command flags that were not set on the command line
// with values from the environment and the config file.
//
// Environment variable names are the upper-cased flag names with dashes replaced by underscores,
// prefixed with envPrefix and an underscore if envPrefix is not empty.
// The config file format is determined by its extension, YAML is used if there is none.
// Precedence: command flags, environment variables, config file, default values.
func BindAll(cmd *cobra.Command, envPrefix, configFileFlagName string) error {
	v := viper.New()

	if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	v.SetEnvKeyReplacer(envReplacer)
	if envPrefix != "" {
		v.SetEnvPrefix(envReplacer.Replace(strings.ToUpper(envPrefix)))
	}
	v.AutomaticEnv()

	if configFileFlagName != "" {
		if f := v.GetString(configFileFlagName); f != "" {
			if filepath.Ext(f) == "" {
				v.SetConfigType("yaml")
			}
			v.SetConfigFile(f)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config file %s: %w", f, err)
			}
		}
	}

	var errs []string
	update := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed || !v.IsSet(f.Name) {
				return
			}
			if err := fs.Set(f.Name, flagValue(f, v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Sprintf("--%s: %v", f.Name, err))
			}
		})
	}
	update(cmd.PersistentFlags())
	update(cmd.Flags())

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	return nil
}

// flagValue renders a viper value in the form accepted by the flag.
// Slices from config files are joined with commas,
// slices from environment variables may be separated with spaces.
func flagValue(f *pflag.Flag, val any) string {
	if _, ok := f.Value.(sliceValue); !ok {
		return fmt.Sprintf("%v", val)
	}

	switch vv := val.(type) {
	case []any:
		s := make([]string, len(vv))
		for i := range vv {
			s[i] = fmt.Sprintf("%v", vv[i])
		}
		return strings.Join(s, ",")
	case []string:
		return strings.Join(vv, ",")
	default:
		s := fmt.Sprintf("%v", val)
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
		return strings.NewReplacer(", ", ",", " ", ",").Replace(s)
	}
}
