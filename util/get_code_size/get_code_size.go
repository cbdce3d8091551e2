// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// get_code_size cross-builds the crypto library, then measures and prints
// its code size.
package main

import (
	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/buildtree"
	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/codesize"
	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/runner"
)

const (
	cfgM55           = "m55"
	cfgSizeCmd       = "size-cmd"
	cfgToolchainFile = "toolchain-file"
	cfgConfigName    = "config-name"
	cfgTable         = "table"
)

func main() {
	a := cli.NewApp("get_code_size", "Build the library for a bare-metal target and measure its code size")
	f := a.Flags()
	f.Bool(cfgM55, false, "build the default configuration for Cortex-M55 without a named configuration")
	f.StringP(cfgSizeCmd, "s", codesize.DefaultSizeCmd, "size command to use")
	f.StringP(cfgToolchainFile, "t", codesize.DefaultToolchain, "CMake toolchain file to use for building")
	f.StringP(cfgConfigName, "c", codesize.DefaultConfigName, "named configuration to use for size measurement")
	f.Bool(cfgTable, false, "draw a bordered table")
	a.Root.Args = cobra.NoArgs
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		root, err := buildtree.ChdirToRoot()
		if err != nil {
			return err
		}
		o := codesize.BuildOptions{
			Root:       root,
			BuildDir:   codesize.DefaultBuildDir,
			Toolchain:  a.Viper.GetString(cfgToolchainFile),
			ConfigName: a.Viper.GetString(cfgConfigName),
		}
		if a.Viper.GetBool(cfgM55) {
			o.BuildDir = codesize.M55BuildDir
			o.ConfigName = ""
		}
		r := runner.Exec{}
		if err := codesize.Build(cmd.Context(), r, o); err != nil {
			return err
		}
		rep, err := codesize.Measure(cmd.Context(), r, a.Viper.GetString(cfgSizeCmd), o.Library(), root)
		if err != nil {
			return err
		}
		if err := rep.WriteFile(o.ReportFile()); err != nil {
			return err
		}
		logger.L().Infof("Wrote %s", o.ReportFile())
		return codesize.Show(cmd.OutOrStdout(), rep, a.Viper.GetBool(cfgTable))
	}
	cli.Main(a)
}
