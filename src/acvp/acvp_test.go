// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package acvp

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const sha3Data = `{
  "vsId": 0,
  "algorithm": "SHA3-256",
  "testGroups": [
    {
      "tgId": 1,
      "testType": "AFT",
      "tests": [
        {"tcId": 1, "msg": "", "len": 0, "md": "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"},
        {"tcId": 2, "msg": "616263", "len": 24, "md": "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
        {"tcId": 3, "msg": "00", "len": 7, "md": "00"},
        {"tcId": 4, "msg": "616263", "len": 24, "md": "00"}
      ]
    }
  ]
}`

func loadString(t *testing.T, data string) *ACVP {
	t.Helper()
	a := &ACVP{}
	require.NoError(t, a.Load(strings.NewReader(data)))
	return a
}

func ids(a *ACVP) []int {
	var out []int
	for _, tc := range a.Tests {
		out = append(out, tc.TcID)
	}
	return out
}

func TestLoad(t *testing.T) {
	a := loadString(t, sha3Data)
	require.Equal(t, "SHA3-256", a.Algorithm)
	// Test case 3 has a bit length that is not a whole number of octets.
	if diff := cmp.Diff([]int{1, 2, 4}, ids(a)); diff != "" {
		t.Errorf("loaded test cases mismatch (-want +got):\n%s", diff)
	}
	tc := a.Tests[1]
	require.Equal(t, 1, tc.Group)
	n, err := tc.Int("len")
	require.NoError(t, err)
	require.Equal(t, int64(24), n)
	msg, err := tc.Bytes("msg")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), msg)
	_, err = tc.Int("msg")
	require.Error(t, err)
	_, err = tc.Str("len")
	require.Error(t, err)
	_, err = tc.Str("nosuchfield")
	require.Error(t, err)
}

func TestLoadFileDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectionFile), []byte(sha3Data), 0644))
	a, err := FromFiles(dir)
	require.NoError(t, err)
	require.Len(t, a.Tests, 3)

	_, err = FromFiles(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	a := loadString(t, sha3Data)
	tests := []struct {
		name        string
		description string
		deps        string
		call        string
		want        string
		wantErr     bool
	}{
		{
			name:        "plain",
			description: "SHA3-256 #{tcId}",
			call:        `sha3:"{msg}":"{md}"`,
			want:        "SHA3-256 #2\nsha3:\"616263\":\"3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532\"\n",
		},
		{
			name:        "dependencies and division",
			description: "{testType} len={len/8}",
			deps:        "PSA_WANT_ALG_SHA3_256",
			call:        "f:{{{len/3}}}",
			want:        "AFT len=3\ndepends_on:PSA_WANT_ALG_SHA3_256\nf:{8}\n",
		},
		{
			name:        "inexact division",
			description: "{len/16}",
			wantErr:     true,
		},
		{
			name:        "division of a string",
			description: "{msg/2}",
			wantErr:     true,
		},
		{
			name:        "missing field",
			description: "{nosuchfield}",
			wantErr:     true,
		},
		{
			name:        "unterminated",
			description: "{tcId",
			wantErr:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Tests[1].Format(tt.description, tt.deps, tt.call)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Format() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Format() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChaining(t *testing.T) {
	a := loadString(t, sha3Data)
	sel := a.Select(func(tc *TestCase) bool { return tc.TcID > 1 })
	require.Equal(t, []int{2, 4}, ids(sel))
	require.Equal(t, []int{1, 2, 4}, ids(a))

	a.Remove(func(tc *TestCase) bool { return tc.TcID == 2 }).
		Sort(func(x, y *TestCase) bool { return x.TcID > y.TcID })
	require.Equal(t, []int{4, 1}, ids(a))

	var b strings.Builder
	require.NoError(t, a.Print(&b, "#{tcId}", "", "f"))
	require.Equal(t, "#4\nf\n\n#1\nf\n\n", b.String())
}

func TestVerify(t *testing.T) {
	check, err := LookupChecker("sha3")
	require.NoError(t, err)

	a := loadString(t, sha3Data)
	err = a.Verify(check, false)
	require.True(t, errors.Is(err, ErrMismatch), "Verify() = %v, want mismatch", err)
	require.Equal(t, []int{1, 2, 4}, ids(a))

	require.NoError(t, a.Verify(check, true))
	require.Equal(t, []int{1, 2}, ids(a))

	_, err = LookupChecker("md5")
	require.Error(t, err)
}

func TestCheckSHAKE(t *testing.T) {
	a := loadString(t, `{"algorithm": "SHAKE-128", "testGroups": [{"tgId": 1, "tests": [
		{"tcId": 1, "msg": "", "len": 0, "outLen": 256,
		 "md": "7f9c2ba4e88f827d616045507605853ed73b8093f6efbc88eb1a6eacfa66ef26"}]}]}`)
	require.NoError(t, checkSHAKE(a.Tests[0]))
}

func TestCheckHKDF(t *testing.T) {
	// RFC 5869, test case 1.
	a := loadString(t, `{"algorithm": "HKDF", "testGroups": [{"tgId": 1, "hmacAlg": "SHA2-256", "tests": [
		{"tcId": 1,
		 "ikm": "0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b",
		 "salt": "000102030405060708090a0b0c",
		 "info": "f0f1f2f3f4f5f6f7f8f9",
		 "okm": "3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf34007208d5b887185865"}]}]}`)
	require.NoError(t, checkHKDF(a.Tests[0]))
}
