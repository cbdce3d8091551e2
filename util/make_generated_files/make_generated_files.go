// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// make_generated_files checks or regenerates the configuration independent
// generated files of an Mbed TLS or TF-PSA-Crypto tree.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/bignum"
	"github.com/Mbed-TLS/framework-tools/src/buildtree"
	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/configchecks"
	"github.com/Mbed-TLS/framework-tools/src/generatedfiles"
	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/psawrapper"
	"github.com/Mbed-TLS/framework-tools/src/runner"
	"github.com/Mbed-TLS/framework-tools/src/tlstest"
)

const (
	cfgList         = "list"
	cfgListNames    = "list-names"
	cfgListTargets  = "list-targets"
	cfgUpdate       = "update"
	cfgAlwaysUpdate = "always-update"
	cfgManifest     = "manifest"
	cfgJobs         = "jobs"
)

// builtins returns the generators of the project at root that run in
// process.
func builtins(root string) []generatedfiles.Generator {
	if buildtree.LooksLikeTFPSACryptoRoot(root) {
		return []generatedfiles.Generator{
			generatedfiles.NewInProcess(bignum.NewGenerator("framework/util/generate_bignum_tests"), root),
			generatedfiles.NewInProcess(bignum.NewECPGenerator("framework/util/generate_ecp_tests"), root),
		}
	}
	return []generatedfiles.Generator{
		generatedfiles.NewInProcess(&configchecks.Generator{
			Caller: "framework/util/generate_config_checks",
			Load:   func() (*configchecks.BranchData, error) { return configchecks.MbedTLSChecks(root) },
		}, root),
		generatedfiles.NewInProcess(&tlstest.Generator{
			Caller: "framework/util/generate_tls_handshake_tests",
			Output: tlstest.DefaultOutput,
		}, root),
		generatedfiles.NewInProcess(
			psawrapper.New("framework/util/generate_psa_wrappers", psawrapper.DefaultConfig(), ""), root),
	}
}

func assemble(ctx context.Context, root, manifest string) (*generatedfiles.Set, error) {
	var (
		m   *generatedfiles.Manifest
		err error
	)
	if manifest != "" {
		m, err = generatedfiles.LoadManifest(manifest)
	} else {
		m, err = generatedfiles.DefaultManifest(root)
	}
	if err != nil {
		return nil, err
	}
	gens := append(builtins(root), m.Generators(root, runner.Exec{})...)
	return generatedfiles.Assemble(ctx, gens...)
}

func main() {
	a := cli.NewApp("make_generated_files [NAME|TARGET...]",
		"Check or update the configuration independent generated files")
	f := a.Flags()
	f.Bool(cfgList, false, "list generator names and targets and exit")
	f.Bool(cfgListNames, false, "list generator names and exit")
	f.Bool(cfgListTargets, false, "list generator targets and exit")
	f.BoolP(cfgUpdate, "u", false, "update target files if needed")
	f.BoolP(cfgAlwaysUpdate, "U", false, "update target files unconditionally (overrides --update)")
	f.String(cfgManifest, "", "YAML file listing the generation scripts (default: built-in list for the project)")
	f.Int(cfgJobs, 0, "number of generators checked in parallel (default: unlimited)")
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		stderr := cmd.ErrOrStderr()
		manifest := a.Viper.GetString(cfgManifest)
		root, err := buildtree.ChdirToRoot()
		if err != nil {
			return err
		}
		set, err := assemble(ctx, root, manifest)
		if err != nil {
			return err
		}

		listNames := a.Viper.GetBool(cfgList) || a.Viper.GetBool(cfgListNames)
		listTargets := a.Viper.GetBool(cfgList) || a.Viper.GetBool(cfgListTargets)
		if listNames {
			for _, name := range set.ListNames() {
				fmt.Fprintln(out, name)
			}
		}
		if listTargets {
			for _, target := range set.ListTargets() {
				fmt.Fprintln(out, target)
			}
		}
		if listNames || listTargets {
			return nil
		}

		wanted, err := set.Select(args)
		if err != nil {
			return err
		}
		always := a.Viper.GetBool(cfgAlwaysUpdate)
		if always || a.Viper.GetBool(cfgUpdate) {
			for _, g := range wanted {
				logger.L().Debugf("Running generator %s", g.Name())
			}
			return generatedfiles.Update(ctx, wanted, always)
		}

		results, err := generatedfiles.Check(ctx, wanted, a.Viper.GetInt(cfgJobs))
		if err != nil {
			return err
		}
		var outdated []string
		for _, res := range results {
			outdated = append(outdated, res.Outdated...)
			if len(res.Outdated) == 0 || !a.Viper.GetBool(cli.CfgVerbose) {
				continue
			}
			if d, ok := res.Generator.(generatedfiles.Differ); ok {
				diff, err := d.Diff(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(stderr, diff)
			}
		}
		if len(outdated) == 0 {
			return nil
		}
		fmt.Fprintln(stderr, "Some targets are missing or out of date.")
		for _, target := range outdated {
			fmt.Fprintln(out, target)
		}
		fmt.Fprintf(stderr, "Run %s -u and commit the result.\n", cmd.CommandPath())
		return cli.ErrOutdated
	}
	cli.Main(a)
}
