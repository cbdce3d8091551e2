// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// diff_code_size compares two code size reports. Each report is either a
// JSON file or, with --db, a recorded report named db:<config>@<revision>.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/codesize"
	"github.com/Mbed-TLS/framework-tools/src/codesize/store/db"
	"github.com/Mbed-TLS/framework-tools/src/codesize/store/filedb"
)

const (
	cfgTable = "table"
	cfgDB    = "db"

	dbRefPrefix = "db:"
)

type loader struct {
	dbPath string
	sizes  *db.SizeDB
}

func (l *loader) load(ctx context.Context, ref string) (*codesize.Report, error) {
	if !strings.HasPrefix(ref, dbRefPrefix) {
		return codesize.LoadReport(ref)
	}
	if l.dbPath == "" {
		return nil, fmt.Errorf("%s: --%s is required to read recorded reports", ref, cfgDB)
	}
	config, revision, err := db.ParseRef(strings.TrimPrefix(ref, dbRefPrefix))
	if err != nil {
		return nil, err
	}
	if l.sizes == nil {
		c, err := filedb.New(l.dbPath)
		if err != nil {
			return nil, err
		}
		l.sizes = db.New(c)
	}
	return l.sizes.Get(ctx, config, revision)
}

func main() {
	a := cli.NewApp("diff_code_size A B", "Examine two code size reports and print the difference between them")
	f := a.Flags()
	f.Bool(cfgTable, false, "draw a bordered table")
	f.String(cfgDB, "", "SQLite database holding recorded reports")
	a.Root.Args = cobra.ExactArgs(2)
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		l := &loader{dbPath: a.Viper.GetString(cfgDB)}
		var reports [2]*codesize.Report
		for i, ref := range args {
			rep, err := l.load(cmd.Context(), ref)
			if err != nil {
				return err
			}
			reports[i] = rep
		}
		rows := codesize.Diff(reports[0], reports[1])
		return codesize.ShowDiff(cmd.OutOrStdout(), rows, a.Viper.GetBool(cfgTable))
	}
	cli.Main(a)
}
