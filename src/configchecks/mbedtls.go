// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package configchecks

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/Mbed-TLS/framework-tools/src/buildtree"
	"github.com/Mbed-TLS/framework-tools/src/configmacros"
	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/utils"
)

// Options that were removed in 4.0 because they are now always on.
var alwaysEnabledSince40 = map[string]bool{
	"MBEDTLS_PSA_CRYPTO_CONFIG": true,
	"MBEDTLS_USE_PSA_CRYPTO":    true,
}

// RemovedOptionCheckers returns a checker for every option of the previous
// major version that is no longer an option: options that moved to the
// crypto configuration, options that became crypto internal macros, and
// options that are gone.
func RemovedOptionCheckers(previous, current, crypto *configmacros.Macros) []Checker {
	var out []Checker
	for _, opt := range previous.Options() {
		if current.IsOption(opt) || alwaysEnabledSince40[opt] {
			continue
		}
		switch {
		case crypto.IsOption(opt):
			out = append(out, Moved{Option: opt, Header: "psa/crypto_config.h"})
		case crypto.IsInternal(opt):
			out = append(out, Internal{Option: opt, Subproject: "TF-PSA-Crypto"})
		default:
			out = append(out, Removed{Option: opt, Version: "Mbed TLS 4.0"})
		}
	}
	return out
}

// MbedTLSChecks returns the checks of the Mbed TLS tree at root.
func MbedTLSChecks(root string) (*BranchData, error) {
	previous, err := configmacros.History(buildtree.FrameworkRoot(root), "mbedtls", "3.6")
	if err != nil {
		return nil, err
	}
	current, err := configmacros.Current(root, "")
	if err != nil {
		return nil, err
	}
	crypto, err := configmacros.Current(root, "tf-psa-crypto")
	if err != nil {
		return nil, err
	}
	return &BranchData{
		HeaderDirectory:  "library",
		HeaderPrefix:     "mbedtls_",
		ProjectCPPPrefix: "MBEDTLS",
		Checkers:         RemovedOptionCheckers(previous, current, crypto),
	}, nil
}

// Generator writes the check headers.
type Generator struct {
	Caller string
	// Output root. Empty means the project root.
	Directory string
	// Load computes the checks on first use.
	Load func() (*BranchData, error)

	data *BranchData
}

func (g *Generator) branch() (*BranchData, error) {
	if g.data == nil {
		data, err := g.Load()
		if err != nil {
			return nil, err
		}
		g.data = data
	}
	return g.data, nil
}

func (g *Generator) Name() string {
	return g.Caller
}

// Files lists the generated headers.
func (g *Generator) Files() []string {
	data, err := g.branch()
	if err != nil {
		logger.L().Errorf("%v", err)
		return nil
	}
	var out []string
	for _, f := range data.Filenames() {
		out = append(out, path.Join(filepath.ToSlash(g.Directory), f))
	}
	return out
}

func (g *Generator) RenderFile(file string) ([]byte, error) {
	data, err := g.branch()
	if err != nil {
		return nil, err
	}
	for _, pos := range Positions {
		if path.Join(filepath.ToSlash(g.Directory), data.Filename(pos)) == file {
			return data.Render(pos, g.Caller), nil
		}
	}
	return nil, fmt.Errorf("%s is not generated by %s", file, g.Caller)
}

func (g *Generator) Stable(string) bool {
	return true
}

// Outdated returns the headers that are missing or differ from what would
// be generated.
func (g *Generator) Outdated() ([]string, error) {
	var out []string
	for _, f := range g.Files() {
		data, err := g.RenderFile(f)
		if err != nil {
			return nil, err
		}
		if !utils.UpToDate(filepath.FromSlash(f), data) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Update writes the headers that changed.
func (g *Generator) Update() error {
	for _, f := range g.Files() {
		data, err := g.RenderFile(f)
		if err != nil {
			return err
		}
		written, err := utils.WriteIfChanged(filepath.FromSlash(f), data, false)
		if err != nil {
			return err
		}
		if written {
			logger.L().Infof("Wrote %s", f)
		}
	}
	return nil
}
