// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the command line plumbing shared by the tools under
// util/: a cobra root command, flag binding through viper, logger setup and
// the mapping from errors to process exit codes.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/runner"
	"github.com/Mbed-TLS/framework-tools/src/version/buildver"
)

const (
	CfgVerbose = "verbose"
	CfgLogFile = "log-file"

	// EnvPrefix is prepended to flag names to form environment overrides,
	// e.g. MBEDTLS_DEV_DIRECTORY for --directory.
	EnvPrefix = "MBEDTLS_DEV"
)

var (
	// ErrOutdated reports generated files that are not up to date. The
	// details have already been printed.
	ErrOutdated = errors.New("generated files are out of date")
	// ErrCheckFailed reports a failed consistency check whose details have
	// already been printed.
	ErrCheckFailed = errors.New("check failed")
)

// App is one command line tool.
type App struct {
	Root  *cobra.Command
	Viper *viper.Viper
}

// NewApp creates a tool with the common --verbose and --log-file flags.
func NewApp(use, short string) *App {
	a := &App{Viper: viper.New()}
	a.Viper.SetEnvPrefix(EnvPrefix)
	a.Viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.Viper.AutomaticEnv()

	a.Root = &cobra.Command{
		Use:           use,
		Short:         short,
		Version:       buildver.FormattedStr(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Viper.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("failed to bind flags: %v", err)
			}
			return a.setupLogger()
		},
	}
	pf := a.Root.PersistentFlags()
	pf.BoolP(CfgVerbose, "v", false, "verbose output")
	pf.String(CfgLogFile, "", "also write log messages to this file")
	_ = a.Viper.BindPFlags(pf)
	return a
}

func (a *App) setupLogger() error {
	level := logger.LogLevelInfo
	if a.Viper.GetBool(CfgVerbose) {
		level = logger.LogLevelDebug
	}
	l, err := logger.NewLogger(a.Viper.GetString(CfgLogFile), level)
	if err != nil {
		return err
	}
	logger.SetDefault(l)
	return nil
}

// Flags returns the flag set of the root command.
func (a *App) Flags() *flag.FlagSet {
	return a.Root.Flags()
}

// Execute runs the tool with the given arguments and returns the process
// exit status.
func (a *App) Execute(args []string, stderr io.Writer) int {
	a.Root.SetArgs(args)
	err := a.Root.Execute()
	if l := logger.L(); l != nil {
		defer l.Close()
	}
	return ExitStatus(err, stderr)
}

// ExitStatus maps an error to an exit status, printing it when the details
// have not been reported yet.
func ExitStatus(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrOutdated), errors.Is(err, ErrCheckFailed):
		return 1
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if code := runner.ExitCode(err); code > 0 {
		return code
	}
	return 1
}

// Main runs the tool with the process arguments and exits.
func Main(a *App) {
	os.Exit(a.Execute(os.Args[1:], os.Stderr))
}
