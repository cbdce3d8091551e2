// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// generate_code_size_report measures a static library with a size tool and
// writes a JSON code size report, optionally recording it in a history
// database.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/codesize"
	"github.com/Mbed-TLS/framework-tools/src/codesize/store/db"
	"github.com/Mbed-TLS/framework-tools/src/codesize/store/filedb"
	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/runner"
)

const (
	cfgOutputFile  = "output-file"
	cfgSizeCmd     = "size-cmd"
	cfgLibraryFile = "library-file"
	cfgRecordDB    = "record-db"
	cfgConfigName  = "config-name"
	cfgRevision    = "revision"
)

func main() {
	a := cli.NewApp("generate_code_size_report", "Generate a code size report in JSON format")
	f := a.Flags()
	f.StringP(cfgOutputFile, "o", "code_size.json", "filename of the report to generate")
	f.StringP(cfgSizeCmd, "s", "", "size command to use (e.g. arm-none-eabi-size)")
	f.StringP(cfgLibraryFile, "l", "", "library file to generate report from")
	f.String(cfgRecordDB, "", "also record the report in this SQLite database")
	f.String(cfgConfigName, codesize.DefaultConfigName, "configuration name the report is recorded under")
	f.String(cfgRevision, "", "revision the report is recorded under")
	_ = a.Root.MarkFlagRequired(cfgSizeCmd)
	_ = a.Root.MarkFlagRequired(cfgLibraryFile)
	a.Root.Args = cobra.NoArgs
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		dbPath := a.Viper.GetString(cfgRecordDB)
		revision := a.Viper.GetString(cfgRevision)
		if dbPath != "" && revision == "" {
			return fmt.Errorf("--%s requires --%s", cfgRecordDB, cfgRevision)
		}

		rep, err := codesize.Measure(cmd.Context(), runner.Exec{},
			a.Viper.GetString(cfgSizeCmd), a.Viper.GetString(cfgLibraryFile), "")
		if err != nil {
			return err
		}
		out := a.Viper.GetString(cfgOutputFile)
		if err := rep.WriteFile(out); err != nil {
			return err
		}
		logger.L().Infof("Wrote %s (%d objects)", out, rep.Len())

		if dbPath == "" {
			return nil
		}
		c, err := filedb.New(dbPath)
		if err != nil {
			return err
		}
		config := a.Viper.GetString(cfgConfigName)
		if err := db.New(c).Record(cmd.Context(), config, revision, rep); err != nil {
			return err
		}
		logger.L().Infof("Recorded %s@%s in %s", config, revision, dbPath)
		return nil
	}
	cli.Main(a)
}
