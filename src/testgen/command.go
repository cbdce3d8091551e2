// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package testgen

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/buildtree"
	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/logger"
)

const (
	cfgList         = "list"
	cfgListForCMake = "list-for-cmake"
	cfgListOutdated = "list-outdated"
	cfgDirectory    = "directory"
)

// Options selects what Run does.
type Options struct {
	List         bool
	ListForCMake bool
	ListOutdated bool
	Directory    string
	// Targets to generate. Nil means all targets; "-" entries are ignored.
	Targets []string
}

// Run executes one invocation of a generator command.
func Run(g *Generator, opts Options, stdout io.Writer) error {
	if opts.Directory != "" {
		g.Directory = opts.Directory
	}
	switch {
	case opts.List:
		for _, f := range g.Files() {
			fmt.Fprintln(stdout, f)
		}
		return nil
	case opts.ListForCMake:
		fmt.Fprint(stdout, strings.Join(g.Files(), ";"))
		return nil
	case opts.ListOutdated:
		outdated, err := g.Outdated()
		if err != nil {
			return err
		}
		for _, name := range outdated {
			fmt.Fprintln(stdout, g.FilenameFor(name))
		}
		return nil
	}

	targets := opts.Targets
	if targets == nil {
		targets = g.TargetNames()
	}
	for _, t := range targets {
		if t == "-" {
			continue
		}
		name := strings.TrimSuffix(path.Base(t), ".data")
		logger.L().Debugf("Generating %s", g.FilenameFor(name))
		if err := g.GenerateTarget(name); err != nil {
			return err
		}
	}
	return nil
}

// NewApp returns the command line tool for a generator.
func NewApp(use, short string, g *Generator) *cli.App {
	a := cli.NewApp(use+" [TARGET...]", short)
	f := a.Flags()
	f.Bool(cfgList, false, "list available targets and exit")
	f.Bool(cfgListForCMake, false, "print ';'-separated list of available targets and exit")
	f.Bool(cfgListOutdated, false, "list the targets that are missing or not up to date and exit")
	f.String(cfgDirectory, DefaultDirectory, "output directory")
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		if _, err := buildtree.ChdirToRoot(); err != nil {
			return err
		}
		opts := Options{
			List:         a.Viper.GetBool(cfgList),
			ListForCMake: a.Viper.GetBool(cfgListForCMake),
			ListOutdated: a.Viper.GetBool(cfgListOutdated),
			Directory:    a.Viper.GetString(cfgDirectory),
		}
		if len(args) > 0 {
			opts.Targets = args
		}
		return Run(g, opts, cmd.OutOrStdout())
	}
	return a
}
