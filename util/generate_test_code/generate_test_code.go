// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// generate_test_code writes the C source and the intermediate data file of
// a test suite from its .function and .data files.
package main

import (
	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/testcode"
)

const (
	cfgFunctionsFile = "functions-file"
	cfgDataFile      = "data-file"
	cfgTemplateFile  = "template-file"
	cfgSuitesDir     = "suites-dir"
	cfgHelpFile      = "help-file"
	cfgPlatformFile  = "platform-file"
	cfgOutDir        = "out-dir"
)

func main() {
	a := cli.NewApp("generate_test_code", "Generate the C code of a test suite")
	f := a.Flags()
	f.StringP(cfgFunctionsFile, "f", "", "functions file")
	f.StringP(cfgDataFile, "d", "", "data file")
	f.StringP(cfgTemplateFile, "t", "", "template file")
	f.StringP(cfgSuitesDir, "s", "", "suites dir")
	f.String(cfgHelpFile, "", "helper functions file")
	f.StringP(cfgPlatformFile, "p", "", "platform code file")
	f.StringP(cfgOutDir, "o", "", "directory where the generated code and data are written")
	for _, name := range []string{
		cfgFunctionsFile, cfgDataFile, cfgTemplateFile, cfgSuitesDir, cfgHelpFile, cfgPlatformFile, cfgOutDir,
	} {
		_ = a.Root.MarkFlagRequired(name)
	}
	a.Root.Args = cobra.NoArgs
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		return testcode.Generate(testcode.Options{
			FunctionsFile: a.Viper.GetString(cfgFunctionsFile),
			DataFile:      a.Viper.GetString(cfgDataFile),
			TemplateFile:  a.Viper.GetString(cfgTemplateFile),
			PlatformFile:  a.Viper.GetString(cfgPlatformFile),
			HelpersFile:   a.Viper.GetString(cfgHelpFile),
			SuitesDir:     a.Viper.GetString(cfgSuitesDir),
			OutDir:        a.Viper.GetString(cfgOutDir),
		})
	}
	cli.Main(a)
}
