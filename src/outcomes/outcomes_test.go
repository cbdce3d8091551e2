// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package outcomes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const outcomeLines = `Linux-x86_64;full;test_suite_config.mbedtls_boolean;Config: MBEDTLS_RSA_C;PASS;
Linux-x86_64;full;test_suite_config.psa_boolean;Config: PSA_WANT_ALG_SHA_256;PASS;
Linux-x86_64;full;test_suite_aes.ecb;AES-128-ECB Encrypt;PASS;
Linux-x86_64;minimal;test_suite_config.mbedtls_boolean;Config: !MBEDTLS_RSA_C;PASS;
Linux-x86_64;minimal;test_suite_config.psa_boolean;Config: PSA_WANT_ALG_SHA_256;PASS;
Linux-x86_64;no_sha;test_suite_config.mbedtls_boolean;Config: MBEDTLS_RSA_C;PASS;
Linux-x86_64;no_sha;test_suite_config.psa_boolean;Config: !PSA_WANT_ALG_SHA_256;PASS;
Linux-x86_64;broken;test_suite_config.mbedtls_boolean;Config: MBEDTLS_RSA_C;FAIL;
Linux-x86_64;broken;test_suite_config.psa_boolean;Config: PSA_WANT_ALG_SHA_256;SKIP;
`

func TestSearchConfigOutcomes(t *testing.T) {
	file := filepath.Join(t.TempDir(), "outcomes.csv")
	if err := os.WriteFile(file, []byte(outcomeLines), 0644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		settings []string
		want     []string
	}{
		{[]string{"MBEDTLS_RSA_C"}, []string{"full", "no_sha"}},
		{[]string{"PSA_WANT_ALG_SHA_256"}, []string{"full", "minimal"}},
		{[]string{"MBEDTLS_RSA_C", "PSA_WANT_ALG_SHA_256"}, []string{"full"}},
		{[]string{"!MBEDTLS_RSA_C"}, []string{"minimal"}},
		{[]string{"MBEDTLS_AES_C"}, nil},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.settings, ","), func(t *testing.T) {
			got, err := SearchConfigOutcomes(file, tt.settings)
			if err != nil {
				t.Fatalf("SearchConfigOutcomes() failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SearchConfigOutcomes() returned unexpected diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadConfigDataAll(t *testing.T) {
	data, err := ReadConfigData(strings.NewReader(outcomeLines), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := ConfigData{
		"full":    {"MBEDTLS_RSA_C": true, "PSA_WANT_ALG_SHA_256": true},
		"minimal": {"!MBEDTLS_RSA_C": true, "PSA_WANT_ALG_SHA_256": true},
		"no_sha":  {"MBEDTLS_RSA_C": true, "!PSA_WANT_ALG_SHA_256": true},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("ReadConfigData() returned unexpected diff (-want +got):\n%s", diff)
	}
}

func TestSearchMissingFile(t *testing.T) {
	if _, err := SearchConfigOutcomes(filepath.Join(t.TempDir(), "none.csv"), []string{"X"}); err == nil {
		t.Errorf("SearchConfigOutcomes() on a missing file succeeded")
	}
}
