// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// prepare_release runs the steps of the release process of Mbed TLS or
// TF-PSA-Crypto, or a contiguous segment of them.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/release"
	"github.com/Mbed-TLS/framework-tools/src/runner"
)

const (
	cfgDirectory         = "directory"
	cfgArtifactDirectory = "artifact-directory"
	cfgFrom              = "from"
	cfgTo                = "to"
	cfgListSteps         = "list-steps"
)

func main() {
	a := cli.NewApp("prepare_release [VERSION]", "Prepare a release of Mbed TLS or TF-PSA-Crypto")
	f := a.Flags()
	f.String(cfgDirectory, ".", "product toplevel directory")
	f.StringP(cfgArtifactDirectory, "a", "..", "directory where release artifacts will be placed")
	f.String(cfgFrom, "", "first step to run (default: run all steps)")
	f.String(cfgTo, "", "last step to run (default: run all steps)")
	f.Bool(cfgListSteps, false, "list release steps and exit")
	a.Root.Args = cobra.MaximumNArgs(1)
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		if a.Viper.GetBool(cfgListSteps) {
			for _, s := range release.StepNames {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		}
		artifacts, err := filepath.Abs(a.Viper.GetString(cfgArtifactDirectory))
		if err != nil {
			return err
		}
		topDir, err := filepath.Abs(a.Viper.GetString(cfgDirectory))
		if err != nil {
			return err
		}
		opts := release.Options{ArtifactDir: artifacts}
		if len(args) > 0 {
			opts.Version = args[0]
		}
		return release.Run(cmd.Context(), runner.Exec{}, topDir, opts,
			a.Viper.GetString(cfgFrom), a.Viper.GetString(cfgTo))
	}
	cli.Main(a)
}
