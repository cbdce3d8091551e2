// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package generatedfiles

import (
	"fmt"
	"path/filepath"

	"github.com/Mbed-TLS/framework-tools/src/buildtree"
	"github.com/Mbed-TLS/framework-tools/src/runner"
	"github.com/Mbed-TLS/framework-tools/src/utils"
)

// ScriptSpec declares an external generator.
type ScriptSpec struct {
	Script string `yaml:"script"`
	// Files may be omitted for scripts that support --list.
	Files        []string `yaml:"files"`
	ListOutdated bool     `yaml:"list_outdated"`
}

// Manifest lists the external generators of a project.
type Manifest struct {
	Scripts []ScriptSpec `yaml:"scripts"`
}

// LoadManifest reads a manifest from a YAML file.
func LoadManifest(name string) (*Manifest, error) {
	var m Manifest
	if err := utils.LoadConfig(filepath.Dir(name), filepath.Base(name), &m); err != nil {
		return nil, err
	}
	for i, s := range m.Scripts {
		if s.Script == "" {
			return nil, fmt.Errorf("%s: script %d has no path", name, i)
		}
	}
	return &m, nil
}

// Generators instantiates the scripts of the manifest.
func (m *Manifest) Generators(root string, r runner.Runner) []Generator {
	var gens []Generator
	for _, s := range m.Scripts {
		gens = append(gens, &ScriptGenerator{
			Script:       s.Script,
			Files:        s.Files,
			ListOutdated: s.ListOutdated,
			Root:         root,
			Runner:       r,
		})
	}
	return gens
}

// TFPSACryptoManifest is the set of generation scripts of TF-PSA-Crypto.
// The bignum and ecp test generators are not listed: they run in process.
var TFPSACryptoManifest = Manifest{
	Scripts: []ScriptSpec{
		{
			Script: "scripts/generate_driver_wrappers.py",
			Files: []string{
				"core/psa_crypto_driver_wrappers.h",
				"core/psa_crypto_driver_wrappers_no_static.c",
			},
		},
		{
			Script: "framework/scripts/generate_test_keys.py",
			Files:  []string{"tests/include/test/test_keys.h"},
		},
		{
			Script: "scripts/generate_psa_constants.py",
			Files:  []string{"programs/psa/psa_constant_names_generated.c"},
		},
		{Script: "framework/scripts/generate_config_tests.py", ListOutdated: true},
		{Script: "framework/scripts/generate_psa_tests.py", ListOutdated: true},
	},
}

// MbedTLSManifest is the set of generation scripts of Mbed TLS 4.x. The
// configuration checks and the TLS handshake tests run in process.
var MbedTLSManifest = Manifest{
	Scripts: []ScriptSpec{
		{Script: "scripts/generate_errors.pl", Files: []string{"library/error.c"}},
		{Script: "scripts/generate_features.pl", Files: []string{"library/version_features.c"}},
		{
			Script: "framework/scripts/generate_ssl_debug_helpers.py",
			Files:  []string{"library/ssl_debug_helpers_generated.c"},
		},
		{
			Script: "framework/scripts/generate_test_keys.py",
			Files:  []string{"tests/include/test/test_keys.h"},
		},
		{
			Script: "framework/scripts/generate_test_cert_macros.py",
			Files:  []string{"tests/include/test/test_certs.h"},
		},
		{Script: "scripts/generate_query_config.pl", Files: []string{"programs/test/query_config.c"}},
		{Script: "framework/scripts/generate_config_tests.py", ListOutdated: true},
		{
			Script: "framework/scripts/generate_tls13_compat_tests.py",
			Files:  []string{"tests/opt-testcases/tls13-compat.sh"},
		},
		{Script: "scripts/generate_visualc_files.pl"},
	},
}

// DefaultManifest picks the scripts for the project at root.
func DefaultManifest(root string) (*Manifest, error) {
	switch {
	case buildtree.LooksLikeTFPSACryptoRoot(root):
		return &TFPSACryptoManifest, nil
	case buildtree.IsMbedTLS36(root):
		return nil, fmt.Errorf("no support for Mbed TLS 3.6")
	case buildtree.LooksLikeMbedTLSRoot(root):
		return &MbedTLSManifest, nil
	}
	return nil, fmt.Errorf("%s is not an Mbed TLS or TF-PSA-Crypto root", root)
}
