// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// generate_tls_handshake_tests writes the ssl-opt test cases for handshake
// message defragmentation.
package main

import (
	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/tlstest"
	"github.com/Mbed-TLS/framework-tools/src/utils"
)

const (
	caller    = "framework/util/generate_tls_handshake_tests"
	cfgOutput = "output"
)

func main() {
	a := cli.NewApp("generate_tls_handshake_tests", "Generate TLS handshake tests")
	a.Flags().StringP(cfgOutput, "o", tlstest.DefaultOutput, "output file")
	a.Root.Args = cobra.NoArgs
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		output := a.Viper.GetString(cfgOutput)
		written, err := utils.WriteIfChanged(output, tlstest.Render(caller), false)
		if err != nil {
			return err
		}
		if written {
			logger.L().Infof("Wrote %s", output)
		} else {
			logger.L().Debugf("%s is up to date", output)
		}
		return nil
	}
	cli.Main(a)
}
