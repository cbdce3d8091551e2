// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// acvp_parser converts ACVP test vectors (internalProjection.json) into
// .data test cases.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/acvp"
	"github.com/Mbed-TLS/framework-tools/src/cli"
)

const (
	cfgDescription    = "description"
	cfgDependencies   = "dependencies"
	cfgCall           = "call"
	cfgCheck          = "check"
	cfgDropMismatches = "drop-mismatches"
	cfgGroups         = "groups"
	cfgSort           = "sort"
)

func main() {
	a := cli.NewApp("acvp_parser FILE|DIR...", "Convert ACVP test vectors to .data test cases")
	f := a.Flags()
	f.String(cfgDescription, "ACVP tgId={tgId} tcId={tcId}", "test case description template")
	f.String(cfgDependencies, "", "dependencies of every test case, ':'-separated")
	f.String(cfgCall, "", "test function call template, e.g. \"sha3:{msg}:{md}\"")
	f.String(cfgCheck, "", fmt.Sprintf("verify the expected results with a reference implementation (%s)",
		strings.Join(acvp.Checkers(), ", ")))
	f.Bool(cfgDropMismatches, false, "drop test cases failing --check instead of failing")
	f.IntSlice(cfgGroups, nil, "only keep the test cases of these test groups")
	f.Bool(cfgSort, false, "sort the test cases by group and test case id")
	a.Root.Args = cobra.MinimumNArgs(1)
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		call := a.Viper.GetString(cfgCall)
		if call == "" {
			return fmt.Errorf("--%s is required", cfgCall)
		}
		data, err := acvp.FromFiles(args...)
		if err != nil {
			return err
		}
		if groups := a.Viper.GetIntSlice(cfgGroups); len(groups) > 0 {
			keep := make(map[int]bool)
			for _, g := range groups {
				keep[g] = true
			}
			data = data.Select(func(tc *acvp.TestCase) bool { return keep[tc.Group] })
		}
		if name := a.Viper.GetString(cfgCheck); name != "" {
			check, err := acvp.LookupChecker(name)
			if err != nil {
				return err
			}
			if err := data.Verify(check, a.Viper.GetBool(cfgDropMismatches)); err != nil {
				return err
			}
		}
		if a.Viper.GetBool(cfgSort) {
			data.Sort(func(x, y *acvp.TestCase) bool {
				if x.Group != y.Group {
					return x.Group < y.Group
				}
				return x.TcID < y.TcID
			})
		}
		return data.Print(cmd.OutOrStdout(),
			a.Viper.GetString(cfgDescription),
			a.Viper.GetString(cfgDependencies),
			call)
	}
	cli.Main(a)
}
