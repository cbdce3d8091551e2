// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package psawrapper

import (
	"fmt"
	"strings"
)

// Config selects which functions get wrapped and how.
type Config struct {
	// Headers under include/psa to read declarations from.
	InputHeaders []string `yaml:"input_headers"`
	// Macros guarding the whole generated file. A leading '!' negates.
	DefineGuards []string `yaml:"define_guards"`
	// Functions that are never wrapped.
	SkipList []string `yaml:"skip_list"`
	// Parameter types that cannot be logged yet.
	NotImplemented []string `yaml:"not_implemented"`
	// Preprocessor condition for individual functions.
	FunctionGuards map[string]string `yaml:"function_guards"`
}

const pakeGuard = "defined(PSA_WANT_ALG_SOME_PAKE)"

// DefaultConfig returns the configuration used for the test wrappers.
func DefaultConfig() Config {
	cfg := Config{
		InputHeaders: []string{"crypto.h", "crypto_extra.h"},
		DefineGuards: []string{
			"MBEDTLS_PSA_CRYPTO_C",
			"MBEDTLS_TEST_HOOKS",
			"!RECORD_PSA_STATUS_COVERAGE_LOG",
		},
		SkipList: []string{
			"mbedtls_psa_external_get_random", // not a library function
			"psa_get_key_domain_parameters",   // client-side function
			"psa_get_key_slot_number",         // client-side function
			"psa_key_derivation_verify_bytes", // not implemented yet
			"psa_key_derivation_verify_key",   // not implemented yet
			"psa_set_key_domain_parameters",   // client-side function
		},
		// PAKE
		NotImplemented: []string{
			"psa_crypto_driver_pake_inputs_t *",
			"psa_pake_cipher_suite_t *",
		},
		FunctionGuards: map[string]string{
			"mbedtls_psa_register_se_key":          "defined(MBEDTLS_PSA_CRYPTO_SE_C)",
			"mbedtls_psa_inject_entropy":           "defined(MBEDTLS_PSA_INJECT_ENTROPY)",
			"mbedtls_psa_external_get_random":      "defined(MBEDTLS_PSA_CRYPTO_EXTERNAL_RNG)",
			"mbedtls_psa_platform_get_builtin_key": "defined(MBEDTLS_PSA_CRYPTO_BUILTIN_KEYS)",
		},
	}
	for _, f := range []string{
		"psa_crypto_driver_pake_get_cipher_suite",
		"psa_crypto_driver_pake_get_password",
		"psa_crypto_driver_pake_get_password_len",
		"psa_crypto_driver_pake_get_peer",
		"psa_crypto_driver_pake_get_peer_len",
		"psa_crypto_driver_pake_get_user",
		"psa_crypto_driver_pake_get_user_len",
		"psa_pake_abort",
		"psa_pake_get_implicit_key",
		"psa_pake_input",
		"psa_pake_output",
		"psa_pake_set_password_key",
		"psa_pake_set_peer",
		"psa_pake_set_role",
		"psa_pake_set_user",
		"psa_pake_setup",
	} {
		cfg.FunctionGuards[f] = pakeGuard
	}
	return cfg
}

// DefineGuards renders a guard list as a C condition, two conditions per
// line: ["A", "!B", "C"] gives
//
//	defined(A) && !defined(B) && \
//	    defined(C)
func DefineGuards(guards []string) string {
	conds := make([]string, len(guards))
	for i, g := range guards {
		if strings.HasPrefix(g, "!") {
			conds[i] = fmt.Sprintf("!defined(%s)", g[1:])
		} else {
			conds[i] = fmt.Sprintf("defined(%s)", g)
		}
	}
	var b strings.Builder
	for i := 0; i < len(conds); i += 2 {
		switch {
		case i+2 < len(conds):
			fmt.Fprintf(&b, "%s && %s && \\\n    ", conds[i], conds[i+1])
		case i+2 == len(conds):
			fmt.Fprintf(&b, "%s && %s", conds[i], conds[i+1])
		default:
			b.WriteString(conds[i])
		}
	}
	return b.String()
}
