// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package testgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Mbed-TLS/framework-tools/src/testcase"
)

var calls int

func newTestGenerator(dir string) *Generator {
	simple := func() ([]*testcase.TestCase, error) {
		return []*testcase.TestCase{{Description: "case", Function: "f"}}, nil
	}
	varying := func() ([]*testcase.TestCase, error) {
		calls++
		return []*testcase.TestCase{{Description: "case", Function: "f", Arguments: []string{strings.Repeat("x", calls)}}}, nil
	}
	g := NewGenerator("gen_test",
		Target{Name: "test_suite_b", Generate: simple},
		Target{Name: "test_suite_a", Generate: simple},
		Target{Name: "test_suite_r", Generate: varying, Unstable: true},
	)
	g.Directory = dir
	return g
}

func TestRunList(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "List",
			opts: Options{List: true, Directory: "suites"},
			want: "suites/test_suite_a.data\nsuites/test_suite_b.data\nsuites/test_suite_r.data\n",
		},
		{
			name: "ListForCMake",
			opts: Options{ListForCMake: true, Directory: "suites"},
			want: "suites/test_suite_a.data;suites/test_suite_b.data;suites/test_suite_r.data",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			if err := Run(newTestGenerator("x"), tt.opts, &out); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, out.String()); diff != "" {
				t.Errorf("Run() output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunGenerateAndOutdated(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(dir)

	outdated, err := g.Outdated()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"test_suite_a", "test_suite_b", "test_suite_r"}, outdated); diff != "" {
		t.Errorf("Outdated() before generation (-want +got):\n%s", diff)
	}

	if err := Run(g, Options{Targets: []string{"-", "tests/suites/test_suite_a.data"}}, &strings.Builder{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "test_suite_b.data")); !os.IsNotExist(err) {
		t.Errorf("test_suite_b.data generated although not requested")
	}

	if err := Run(g, Options{}, &strings.Builder{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// The unstable target renders differently every time but is present.
	outdated, err = g.Outdated()
	if err != nil {
		t.Fatal(err)
	}
	if len(outdated) != 0 {
		t.Errorf("Outdated() after generation = %v", outdated)
	}

	if err := os.WriteFile(filepath.Join(dir, "test_suite_b.data"), []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	if err := Run(g, Options{ListOutdated: true}, &out); err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "test_suite_b.data") + "\n"; out.String() != want {
		t.Errorf("--list-outdated = %q, want %q", out.String(), want)
	}
}

func TestRunUnknownTarget(t *testing.T) {
	if err := Run(newTestGenerator(t.TempDir()), Options{Targets: []string{"nope"}}, &strings.Builder{}); err == nil {
		t.Errorf("Run() with unknown target succeeded")
	}
}

func TestCounter(t *testing.T) {
	c := Counter{}
	got := []string{
		c.Describe("MPI add", "0 + 1"),
		c.Describe("MPI add", ""),
		c.Describe("GCD", "x"),
	}
	want := []string{"MPI add #1 0 + 1", "MPI add #2", "GCD #1 x"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
	}
}
