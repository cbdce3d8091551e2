// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// show_code_size prints a JSON code size report in human readable form.
package main

import (
	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/codesize"
)

const cfgTable = "table"

func main() {
	a := cli.NewApp("show_code_size FILE", "Display a code size report in a human-readable format")
	a.Flags().Bool(cfgTable, false, "draw a bordered table")
	a.Root.Args = cobra.ExactArgs(1)
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		rep, err := codesize.LoadReport(args[0])
		if err != nil {
			return err
		}
		return codesize.Show(cmd.OutOrStdout(), rep, a.Viper.GetBool(cfgTable))
	}
	cli.Main(a)
}
