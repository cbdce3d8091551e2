// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// search_outcomes_config lists the test configurations of an outcome file
// in which all the given settings were observed.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/outcomes"
)

const cfgOutcomeFile = "outcome-file"

func main() {
	a := cli.NewApp("search_outcomes_config SETTING...",
		`Search test configurations where all the given settings hold (e.g. "MBEDTLS_RSA_C" or "!PSA_WANT_ALG_SHA256")`)
	a.Flags().StringP(cfgOutcomeFile, "f", outcomes.DefaultFile, "outcome file to read")
	a.Root.Args = cobra.MinimumNArgs(1)
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		found, err := outcomes.SearchConfigOutcomes(a.Viper.GetString(cfgOutcomeFile), args)
		if err != nil {
			return err
		}
		for _, name := range found {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}
	cli.Main(a)
}
