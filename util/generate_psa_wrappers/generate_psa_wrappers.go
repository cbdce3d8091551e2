// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// generate_psa_wrappers writes the test wrappers of the PSA crypto API
// functions.
package main

import (
	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/buildtree"
	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/psawrapper"
	"github.com/Mbed-TLS/framework-tools/src/utils"
)

const (
	caller = "framework/util/generate_psa_wrappers"

	cfgLog     = "log"
	cfgOutputC = "output-c"
	cfgOutputH = "output-h"
	cfgConfig  = "config"
)

func loadConfig(name string) (psawrapper.Config, error) {
	if name == "" {
		return psawrapper.DefaultConfig(), nil
	}
	var cfg psawrapper.Config
	if err := utils.LoadConfig("", name, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	a := cli.NewApp("generate_psa_wrappers", "Generate wrappers for PSA crypto functions")
	f := a.Flags()
	f.String(cfgLog, "", "stream to log to (default: no logging code)")
	f.String(cfgOutputC, psawrapper.DefaultOutputC, "output .c file path (skip .c output if empty)")
	f.String(cfgOutputH, psawrapper.DefaultOutputH, "output .h file path (skip .h output if empty)")
	f.String(cfgConfig, "", "YAML file overriding the wrapped function selection")
	a.Root.Args = cobra.NoArgs
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(a.Viper.GetString(cfgConfig))
		if err != nil {
			return err
		}
		if _, err := buildtree.ChdirToRoot(); err != nil {
			return err
		}
		g := psawrapper.New(caller, cfg, a.Viper.GetString(cfgLog))
		g.OutputC = a.Viper.GetString(cfgOutputC)
		g.OutputH = a.Viper.GetString(cfgOutputH)
		if err := g.ReadHeaders("."); err != nil {
			return err
		}
		for _, file := range g.Files() {
			data, err := g.RenderFile(file)
			if err != nil {
				return err
			}
			written, err := utils.WriteIfChanged(file, data, false)
			if err != nil {
				return err
			}
			if written {
				logger.L().Infof("Wrote %s", file)
			}
		}
		return nil
	}
	cli.Main(a)
}
