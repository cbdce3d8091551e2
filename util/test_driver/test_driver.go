// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// test_driver clones part of the built-in driver tree, rewrites the header
// inclusions and prefixes the exposed C identifiers, producing a test
// driver that can be linked together with the library.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/buildtree"
	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/runner"
	"github.com/Mbed-TLS/framework-tools/src/testdriver"
)

const (
	cfgDriver          = "driver"
	cfgSourceRoot      = "source-root"
	cfgDirs            = "dirs"
	cfgExclude         = "exclude"
	cfgTagsFile        = "tags-file"
	cfgCtags           = "ctags"
	cfgConfig          = "config"
	cfgJobs            = "jobs"
	cfgListIdentifiers = "list-identifiers"
)

func loadConfig(name string) (testdriver.Config, error) {
	if name == "" {
		return testdriver.DefaultConfig()
	}
	return testdriver.LoadConfig(name)
}

func main() {
	a := cli.NewApp("test_driver DST_DIR",
		"Clone partially the builtin tree, rewrite header inclusions and prefix exposed C identifiers")
	f := a.Flags()
	f.String(cfgDriver, "", fmt.Sprintf("test driver name (default %s)", testdriver.DefaultDriver))
	f.String(cfgSourceRoot, "", "tree to copy from (default: the crypto tree of the repository)")
	f.StringSlice(cfgDirs, nil, "directories to copy, relative to the source root")
	f.StringSlice(cfgExclude, nil, "globs of files not to copy")
	f.String(cfgTagsFile, "", "read identifiers from this \"ctags -x\" listing")
	f.String(cfgCtags, "", "ctags program")
	f.String(cfgConfig, "", "YAML configuration file")
	f.Int(cfgJobs, 0, "number of files processed in parallel")
	f.Bool(cfgListIdentifiers, false, "print the prefixed identifiers")
	a.Root.Args = cobra.ExactArgs(1)
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(a.Viper.GetString(cfgConfig))
		if err != nil {
			return err
		}
		if v := a.Viper.GetString(cfgDriver); v != "" {
			cfg.Driver = v
		}
		if v := a.Viper.GetStringSlice(cfgDirs); len(v) > 0 {
			cfg.Dirs = v
		}
		if v := a.Viper.GetStringSlice(cfgExclude); len(v) > 0 {
			cfg.Exclude = append(cfg.Exclude, v...)
		}
		if v := a.Viper.GetString(cfgTagsFile); v != "" {
			cfg.TagsFile = v
		}
		if v := a.Viper.GetString(cfgCtags); v != "" {
			cfg.Ctags = v
		}
		if v := a.Viper.GetInt(cfgJobs); v > 0 {
			cfg.Jobs = v
		}

		root, err := buildtree.GuessProjectRoot(".")
		if err != nil {
			return err
		}
		src := a.Viper.GetString(cfgSourceRoot)
		if src == "" {
			src = buildtree.CryptoRoot(root)
		}
		dst := args[0]
		if !filepath.IsAbs(dst) {
			dst = filepath.Join(root, dst)
		}
		if cfg.TagsFile != "" {
			if cfg.TagsFile, err = filepath.Abs(cfg.TagsFile); err != nil {
				return err
			}
		}

		g, err := testdriver.New(src, dst, cfg, runner.Exec{})
		if err != nil {
			return err
		}
		ids, err := g.Run(cmd.Context())
		if err != nil {
			return err
		}
		if a.Viper.GetBool(cfgListIdentifiers) {
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
		}
		return nil
	}
	cli.Main(a)
}
