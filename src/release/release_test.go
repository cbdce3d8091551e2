// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Mbed-TLS/framework-tools/src/runner"
)

const changeLog = `Mbed TLS ChangeLog (Sorted per branch, date)

= Mbed TLS 4.0.0 branch released xxxx-xx-xx

Features
   * Something new.

= Mbed TLS 3.6.0 branch released 2024-03-28
`

const submoduleCmd = `git submodule --quiet foreach --recursive printf %s\\0 "$displaypath"`

func newTree(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ChangeLog"), []byte(content), 0644))
	return dir
}

func fixedNow() time.Time {
	return time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)
}

func TestParseChangeLogHead(t *testing.T) {
	tests := []struct {
		name    string
		head    string
		human   string
		version string
		date    string
		ok      bool
	}{
		{"mbedtls", changeLog, "Mbed TLS", "4.0.0", "xxxx-xx-xx", true},
		{"crypto", "= TF-PSA-Crypto 1.0.0-beta branch released 2025-06-30\n", "TF-PSA-Crypto", "1.0.0-beta", "2025-06-30", true},
		{"no header", "Nothing to see here\n", "", "", "", false},
		{"too far", strings.Repeat("x", 1000) + "\n= Mbed TLS 1.0.0 branch released 2000-01-01\n", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			human, version, date, err := ParseChangeLogHead([]byte(tt.head))
			if (err == nil) != tt.ok {
				t.Fatalf("ParseChangeLogHead() error = %v, want ok=%v", err, tt.ok)
			}
			got := []string{human, version, date}
			if diff := cmp.Diff([]string{tt.human, tt.version, tt.date}, got); diff != "" {
				t.Errorf("ParseChangeLogHead() returned unexpected diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewInfo(t *testing.T) {
	dir := newTree(t, changeLog)
	info, err := NewInfo(dir, Options{})
	require.NoError(t, err)
	require.Equal(t, "mbedtls", info.MachineName)
	require.Equal(t, "4.0.0", info.Version)
	require.Equal(t, "Mbed TLS 4.0.0", info.Label())
	require.Equal(t, "mbedtls-4.0.0", info.TagName())

	info, err = NewInfo(dir, Options{Version: "4.0.1"})
	require.NoError(t, err)
	require.Equal(t, "4.0.1", info.Version)

	_, err = NewInfo(dir, Options{Version: "four"})
	require.Error(t, err)
	_, err = NewInfo(dir, Options{Version: "3.6.1"})
	require.Error(t, err)

	_, err = NewInfo(newTree(t, "= PolarSSL 1.3.0 branch released 2013-10-01\n"), Options{})
	require.ErrorContains(t, err, `could not determine product (found "PolarSSL" in ChangeLog)`)
}

func TestFinalizeChangeLog(t *testing.T) {
	got, err := FinalizeChangeLog([]byte(changeLog), "Mbed TLS", "4.0.0", "2025-10-15")
	require.NoError(t, err)
	want := strings.Replace(changeLog, "released xxxx-xx-xx", "released 2025-10-15", 1)
	require.Equal(t, want, string(got))
}

func TestRunCheckToCommit(t *testing.T) {
	dir := newTree(t, changeLog)
	r := runner.NewFake().
		On(submoduleCmd, runner.FakeResult{Stdout: []byte("framework\x00")}).
		On("git", runner.FakeResult{})
	opts := Options{ArtifactDir: t.TempDir(), Now: fixedNow}

	require.NoError(t, Run(context.Background(), r, dir, opts, "", "commit"))
	want := []string{
		submoduleCmd,
		"git diff --quiet",
		"git -C framework diff --quiet",
		"git diff --quiet",
		"git -C framework diff --quiet",
		"git commit -a -m Mbed TLS 4.0.0",
	}
	if diff := cmp.Diff(want, r.CommandLines()); diff != "" {
		t.Errorf("Run() ran unexpected commands (-want +got):\n%s", diff)
	}
	data, err := os.ReadFile(filepath.Join(dir, "ChangeLog"))
	require.NoError(t, err)
	require.Contains(t, string(data), "= Mbed TLS 4.0.0 branch released 2025-10-15\n")

	// The entry is now released, so the changelog step refuses to run.
	err = Run(context.Background(), r, dir, opts, "changelog", "changelog")
	require.ErrorContains(t, err, "changelog: precondition failed")
}

func TestRunDirtyTree(t *testing.T) {
	dir := newTree(t, changeLog)
	r := runner.NewFake().
		On(submoduleCmd, runner.FakeResult{}).
		On("git diff --quiet", runner.FakeResult{Err: &runner.ExitError{Cmd: "git diff --quiet", Code: 1}})
	err := Run(context.Background(), r, dir, Options{Now: fixedNow}, "", "")
	require.ErrorContains(t, err, "uncommitted changes in top level")
}

func TestRunUnknownStep(t *testing.T) {
	dir := newTree(t, changeLog)
	err := Run(context.Background(), runner.NewFake(), dir, Options{}, "package", "")
	require.ErrorContains(t, err, `unknown release step "package"`)
}

func TestTagExists(t *testing.T) {
	dir := newTree(t, changeLog)
	r := runner.NewFake().
		On(submoduleCmd, runner.FakeResult{}).
		On("git tag --list mbedtls-4.0.0", runner.FakeResult{Stdout: []byte("mbedtls-4.0.0\n")}).
		On("git", runner.FakeResult{})
	err := Run(context.Background(), r, dir, Options{}, "tag", "tag")
	require.ErrorContains(t, err, "tag mbedtls-4.0.0 already exists")
}

func tarOf(t *testing.T, files map[string]string, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Typeflag:   tar.TypeXGlobalHeader,
		Name:       "pax_global_header",
		PAXRecords: map[string]string{"comment": "0123456789abcdef"},
	}))
	for _, n := range names {
		body := files[n]
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: n, Mode: 0644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func readTar(t *testing.T, data []byte) map[string]string {
	t.Helper()
	out := map[string]string{}
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(tr)
		require.NoError(t, err)
		out[hdr.Name] = string(body)
	}
	return out
}

func TestRunArchiveAndChecksum(t *testing.T) {
	dir := newTree(t, strings.Replace(changeLog, "xxxx-xx-xx", "2025-10-15", 1))
	artifacts := filepath.Join(t.TempDir(), "out")
	top := tarOf(t, map[string]string{"mbedtls-4.0.0/ChangeLog": "log\n"}, "mbedtls-4.0.0/ChangeLog")
	sub := tarOf(t, map[string]string{"mbedtls-4.0.0/framework/README": "fw\n"}, "mbedtls-4.0.0/framework/README")

	r := runner.NewFake().
		On(submoduleCmd, runner.FakeResult{Stdout: []byte("framework\x00")}).
		On("git tag --list mbedtls-4.0.0", runner.FakeResult{Stdout: []byte("mbedtls-4.0.0\n")}).
		On("git archive --format=tar --prefix=mbedtls-4.0.0/ HEAD", runner.FakeResult{Stdout: top}).
		On("git -C framework archive --format=tar --prefix=mbedtls-4.0.0/framework/ HEAD", runner.FakeResult{Stdout: sub}).
		On("git", runner.FakeResult{}).
		On("bzip2", runner.FakeResult{Hook: func(c runner.Cmd) error {
			// Store uncompressed so the test can read the archive back.
			_, err := io.Copy(c.Stdout, c.Stdin)
			return err
		}})

	require.NoError(t, Run(context.Background(), r, dir, Options{ArtifactDir: artifacts}, "archive", ""))

	archive := filepath.Join(artifacts, "mbedtls-4.0.0.tar.bz2")
	data, err := os.ReadFile(archive)
	require.NoError(t, err)
	want := map[string]string{
		"mbedtls-4.0.0/ChangeLog":        "log\n",
		"mbedtls-4.0.0/framework/README": "fw\n",
	}
	if diff := cmp.Diff(want, readTar(t, data)); diff != "" {
		t.Errorf("archive returned unexpected diff (-want +got):\n%s", diff)
	}

	sum, err := os.ReadFile(archive + ".sha256")
	require.NoError(t, err)
	wantSum, err := Checksum(bytes.NewReader(data), "mbedtls-4.0.0.tar.bz2")
	require.NoError(t, err)
	require.Equal(t, wantSum, string(sum))

	// A second run must not overwrite the archive.
	err = Run(context.Background(), r, dir, Options{ArtifactDir: artifacts}, "archive", "archive")
	require.ErrorContains(t, err, "already exists")
}

func TestChecksum(t *testing.T) {
	got, err := Checksum(strings.NewReader(""), "empty.tar.bz2")
	require.NoError(t, err)
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855  empty.tar.bz2\n", got)
}
