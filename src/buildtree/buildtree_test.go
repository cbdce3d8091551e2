// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package buildtree

import (
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGuessProjectRoot(t *testing.T) {
	tests := []struct {
		name     string
		dirs     []string
		files    []string
		start    string
		wantErr  bool
		want36   bool
		wantCryp string
	}{
		{
			name:     "MbedTLS",
			dirs:     []string{"include", "library", "scripts", "tests/suites", "tf-psa-crypto/core", "tf-psa-crypto/drivers"},
			start:    "tests/suites",
			wantCryp: "tf-psa-crypto",
		},
		{
			name:   "MbedTLS36",
			dirs:   []string{"include", "library", "scripts"},
			files:  []string{"library/ssl_tls13_keys.c"},
			start:  "library",
			want36: true,
		},
		{
			name:  "TFPSACrypto",
			dirs:  []string{"core", "drivers/builtin/src"},
			start: "drivers/builtin/src",
		},
		{
			name:    "Nothing",
			dirs:    []string{"a/b"},
			start:   "a/b",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			mkdirs(t, root, tt.dirs...)
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(root, f), nil, 0644); err != nil {
					t.Fatal(err)
				}
			}
			got, err := GuessProjectRoot(filepath.Join(root, tt.start))
			if (err != nil) != tt.wantErr {
				t.Fatalf("GuessProjectRoot() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			wantRoot, _ := filepath.Abs(root)
			if got != wantRoot {
				t.Errorf("GuessProjectRoot() = %q, want %q", got, wantRoot)
			}
			if IsMbedTLS36(got) != tt.want36 {
				t.Errorf("IsMbedTLS36() = %v, want %v", !tt.want36, tt.want36)
			}
			if c := CryptoRoot(got); c != filepath.Join(got, tt.wantCryp) {
				t.Errorf("CryptoRoot() = %q", c)
			}
		})
	}
}
