// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package configchecks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Mbed-TLS/framework-tools/src/configmacros"
)

func TestCheckers(t *testing.T) {
	tests := []struct {
		name    string
		checker Checker
		want    map[Position]string
	}{
		{
			name:    "removed",
			checker: Removed{Option: "MBEDTLS_X", Version: "Mbed TLS 4.0"},
			want: map[Position]string{
				User: "#if defined(MBEDTLS_X)\n#error \"MBEDTLS_X was removed in Mbed TLS 4.0.\"\n#endif\n",
			},
		},
		{
			name:    "internal",
			checker: Internal{Option: "MBEDTLS_Y", Subproject: "TF-PSA-Crypto"},
			want: map[Position]string{
				Before: "#if defined(MBEDTLS_Y)\n#define MBEDTLS_CONFIG_CHECK_BEFORE_MBEDTLS_Y\n#endif\n",
				User: "#if defined(MBEDTLS_Y) && !defined(MBEDTLS_CONFIG_CHECK_BEFORE_MBEDTLS_Y)\n" +
					"#error \"MBEDTLS_Y is an internal macro of TF-PSA-Crypto and may not be configured.\"\n#endif\n",
				Final: "#undef MBEDTLS_CONFIG_CHECK_BEFORE_MBEDTLS_Y\n",
			},
		},
		{
			name:    "moved",
			checker: Moved{Option: "MBEDTLS_Z", Header: "psa/crypto_config.h"},
			want: map[Position]string{
				User: "#if defined(MBEDTLS_Z)\n#error \"MBEDTLS_Z must be configured in psa/crypto_config.h.\"\n#endif\n",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, pos := range Positions {
				if got := tt.checker.Check(pos, "MBEDTLS"); got != tt.want[pos] {
					t.Errorf("Check(%s) = %q, want %q", pos, got, tt.want[pos])
				}
			}
		})
	}
}

func TestRemovedOptionCheckers(t *testing.T) {
	previous := configmacros.New([]string{
		"MBEDTLS_AES_C", "MBEDTLS_GONE", "MBEDTLS_MOVED", "MBEDTLS_NOW_INTERNAL",
		"MBEDTLS_SSL_KEPT", "MBEDTLS_USE_PSA_CRYPTO",
	}, nil)
	current := configmacros.New([]string{"MBEDTLS_SSL_KEPT"}, nil)
	crypto := configmacros.New([]string{"MBEDTLS_AES_C", "MBEDTLS_MOVED"}, []string{"MBEDTLS_NOW_INTERNAL"})

	got := RemovedOptionCheckers(previous, current, crypto)
	want := []Checker{
		Moved{Option: "MBEDTLS_AES_C", Header: "psa/crypto_config.h"},
		Removed{Option: "MBEDTLS_GONE", Version: "Mbed TLS 4.0"},
		Moved{Option: "MBEDTLS_MOVED", Header: "psa/crypto_config.h"},
		Internal{Option: "MBEDTLS_NOW_INTERNAL", Subproject: "TF-PSA-Crypto"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RemovedOptionCheckers() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	b := &BranchData{
		HeaderDirectory:  "library",
		HeaderPrefix:     "mbedtls_",
		ProjectCPPPrefix: "MBEDTLS",
		Checkers:         []Checker{Removed{Option: "MBEDTLS_X", Version: "4.0"}},
	}
	require.Equal(t, []string{
		"library/mbedtls_config_check_before.h",
		"library/mbedtls_config_check_user.h",
		"library/mbedtls_config_check_final.h",
	}, b.Filenames())

	got := string(b.Render(User, "generate_config_checks"))
	for _, want := range []string{
		"/* mbedtls_config_check_user.h: checks just after reading the user configuration.\n",
		"Automatically generated by generate_config_checks. Do not edit!",
		"#ifndef MBEDTLS_CONFIG_CHECK_USER_H\n#define MBEDTLS_CONFIG_CHECK_USER_H\n",
		"\n#if defined(MBEDTLS_X)\n",
		"\n#endif /* MBEDTLS_CONFIG_CHECK_USER_H */\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(string(b.Render(Before, "g")), "MBEDTLS_X") {
		t.Errorf("Render(Before) contains a check for a removed option")
	}
}

func TestGeneratorUpdate(t *testing.T) {
	dir := t.TempDir()
	loads := 0
	g := &Generator{
		Caller:    "generate_config_checks",
		Directory: dir,
		Load: func() (*BranchData, error) {
			loads++
			return &BranchData{
				HeaderDirectory:  "library",
				HeaderPrefix:     "mbedtls_",
				ProjectCPPPrefix: "MBEDTLS",
				Checkers:         []Checker{Internal{Option: "MBEDTLS_Y", Subproject: "TF-PSA-Crypto"}},
			}, nil
		},
	}
	outdated, err := g.Outdated()
	require.NoError(t, err)
	require.Len(t, outdated, 3)

	require.NoError(t, g.Update())
	outdated, err = g.Outdated()
	require.NoError(t, err)
	require.Empty(t, outdated)
	require.Equal(t, 1, loads)

	final := filepath.Join(dir, "library", "mbedtls_config_check_final.h")
	data, err := os.ReadFile(final)
	require.NoError(t, err)
	require.Contains(t, string(data), "#undef MBEDTLS_CONFIG_CHECK_BEFORE_MBEDTLS_Y\n")

	_, err = g.RenderFile("library/other.h")
	require.Error(t, err)
}
