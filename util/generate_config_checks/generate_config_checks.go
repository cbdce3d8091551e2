// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// generate_config_checks writes the headers that reject removed or moved
// configuration options at compile time.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/buildtree"
	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/configchecks"
)

const (
	caller = "framework/util/generate_config_checks"

	cfgList      = "list"
	cfgCheck     = "check"
	cfgDirectory = "directory"
)

func main() {
	a := cli.NewApp("generate_config_checks", "Generate C preprocessor code to check for bad configurations")
	f := a.Flags()
	f.Bool(cfgList, false, "list generated files and exit")
	f.Bool(cfgCheck, false, "check that the generated files are up to date instead of writing them")
	f.String(cfgDirectory, "", "output directory (default: the project root)")
	a.Root.Args = cobra.NoArgs
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		dir := a.Viper.GetString(cfgDirectory)
		if dir != "" {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			dir = abs
		}
		root, err := buildtree.ChdirToRoot()
		if err != nil {
			return err
		}
		g := &configchecks.Generator{
			Caller:    caller,
			Directory: dir,
			Load:      func() (*configchecks.BranchData, error) { return configchecks.MbedTLSChecks(root) },
		}
		out := cmd.OutOrStdout()
		switch {
		case a.Viper.GetBool(cfgList):
			files := g.Files()
			if len(files) == 0 {
				return fmt.Errorf("no configuration checks for %s", root)
			}
			for _, file := range files {
				fmt.Fprintln(out, file)
			}
			return nil
		case a.Viper.GetBool(cfgCheck):
			outdated, err := g.Outdated()
			if err != nil {
				return err
			}
			for _, file := range outdated {
				fmt.Fprintf(out, "%s is out of date\n", file)
			}
			if len(outdated) > 0 {
				return cli.ErrOutdated
			}
			return nil
		}
		return g.Update()
	}
	cli.Main(a)
}
