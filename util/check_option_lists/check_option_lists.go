// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// check_option_lists checks that the saved list of configuration options
// matches the configuration headers, or updates it.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/buildtree"
	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/configmacros"
	"github.com/Mbed-TLS/framework-tools/src/logger"
)

const (
	cfgUpdate       = "update"
	cfgAlwaysUpdate = "always-update"
)

func main() {
	a := cli.NewApp("check_option_lists",
		"Check that "+configmacros.ShadowFile+" is up to date, or update it")
	f := a.Flags()
	f.BoolP(cfgUpdate, "u", false, "update target files if needed")
	f.BoolP(cfgAlwaysUpdate, "U", false, "update target files unconditionally (overrides --update)")
	a.Root.Args = cobra.NoArgs
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		root, err := buildtree.GuessProjectRoot(".")
		if err != nil {
			return err
		}
		m, err := configmacros.Current(root, "")
		if err != nil {
			return err
		}
		always := a.Viper.GetBool(cfgAlwaysUpdate)
		if always || a.Viper.GetBool(cfgUpdate) {
			written, err := m.UpdateShadow(root, always)
			if err != nil {
				return err
			}
			if written {
				logger.L().Infof("Wrote %s", configmacros.ShadowPath(root))
			}
			return nil
		}
		if !m.IsShadowUpToDate(root) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s is out of date\n", configmacros.ShadowPath(root))
			fmt.Fprintln(out, "After adding or removing a config option, you need to run")
			fmt.Fprintf(out, "%s -u and commit the result.\n", cmd.CommandPath())
			return cli.ErrOutdated
		}
		return nil
	}
	cli.Main(a)
}
