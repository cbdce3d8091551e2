// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package codesize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/runner"
)

const (
	DefaultSizeCmd    = "arm-none-eabi-size"
	DefaultToolchain  = "framework/platform/arm-gcc-m55.cmake"
	DefaultConfigName = "baremetal_size"
	DefaultBuildDir   = "build-code-size"
	M55BuildDir       = "build-code-size-m55"

	configFileName = "code_size_crypto_config.h"
	reportFileName = "code_size.json"
)

// BuildOptions describes a cross build of the crypto library.
type BuildOptions struct {
	// Root is the TF-PSA-Crypto source tree. Relative paths below are
	// relative to it.
	Root      string
	BuildDir  string
	Toolchain string
	// ConfigName is a named configuration of scripts/config.py. Empty
	// means the default configuration is built unchanged.
	ConfigName string
	Jobs       int
}

// Library is the path of the static library produced by the build.
func (o BuildOptions) Library() string {
	return filepath.Join(o.BuildDir, "core", "libtfpsacrypto.a")
}

// ReportFile is where the JSON report of the build is written.
func (o BuildOptions) ReportFile() string {
	return filepath.Join(o.BuildDir, reportFileName)
}

func copyFile(dst, src string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// Build configures and builds the library with cmake.
func Build(ctx context.Context, r runner.Runner, o BuildOptions) error {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	buildDir := o.BuildDir
	if !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(o.Root, buildDir)
	}
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return fmt.Errorf("failed to create build directory: %v", err)
	}
	configure := []string{".", "-B" + o.BuildDir,
		"-DCMAKE_TOOLCHAIN_FILE=" + o.Toolchain,
		"-DENABLE_PROGRAMS=NO",
	}
	if o.ConfigName != "" {
		cfg := filepath.Join(o.BuildDir, configFileName)
		src := filepath.Join(o.Root, "include", "psa", "crypto_config.h")
		if err := copyFile(filepath.Join(buildDir, configFileName), src); err != nil {
			return fmt.Errorf("failed to copy configuration: %v", err)
		}
		if err := r.Run(ctx, runner.Cmd{
			Name: "scripts/config.py",
			Args: []string{"-f", cfg, o.ConfigName},
			Dir:  o.Root,
		}); err != nil {
			return err
		}
		configure = append(configure, "-DTF_PSA_CRYPTO_CONFIG_FILE="+cfg)
	}
	logger.L().Infof("Building %s in %s", o.ConfigName, o.BuildDir)
	if err := r.Run(ctx, runner.Cmd{Name: "cmake", Args: configure, Dir: o.Root}); err != nil {
		return err
	}
	return r.Run(ctx, runner.Cmd{
		Name: "cmake",
		Args: []string{"--build", o.BuildDir, fmt.Sprintf("-j%d", jobs)},
		Dir:  o.Root,
	})
}

// Measure runs the size tool on a library and parses its output.
func Measure(ctx context.Context, r runner.Runner, sizeCmd, library, dir string) (*Report, error) {
	out, err := r.Output(ctx, runner.Cmd{Name: sizeCmd, Args: []string{library}, Dir: dir})
	if err != nil {
		return nil, err
	}
	rep, err := ParseSizeOutput(string(out))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s output: %v", sizeCmd, err)
	}
	return rep, nil
}
