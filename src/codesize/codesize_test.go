// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package codesize

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Mbed-TLS/framework-tools/src/runner"
)

const sizeOutput = `   text	   data	    bss	    dec	    hex	filename
   4521	      0	      0	   4521	   11a9	aes.c.obj (ex core/libtfpsacrypto.a)
    120	      8	     16	    144	     90	platform.c.obj (ex core/libtfpsacrypto.a)
   2048	      0	    256	   2304	    900	sha256.c.obj (ex core/libtfpsacrypto.a)
`

func mustParse(t *testing.T, out string) *Report {
	t.Helper()
	r, err := ParseSizeOutput(out)
	require.NoError(t, err)
	return r
}

func TestParseSizeOutput(t *testing.T) {
	r := mustParse(t, sizeOutput)
	require.Equal(t, []string{"aes.c.obj", "platform.c.obj", "sha256.c.obj"}, r.Names())
	s, ok := r.Get("platform.c.obj")
	require.True(t, ok)
	require.Equal(t, Sizes{Text: 120, Data: 8, BSS: 16}, s)
	require.Equal(t, Sizes{Text: 6689, Data: 8, BSS: 272}, r.Total())

	_, err := ParseSizeOutput("header\n1 2 3\n")
	require.Error(t, err)
	_, err = ParseSizeOutput("header\n1 x 3 4 5 a.o\n")
	require.Error(t, err)

	empty := mustParse(t, "   text	   data	    bss	    dec	    hex	filename\n")
	require.Equal(t, 0, empty.Len())
}

func TestEncode(t *testing.T) {
	r := NewReport()
	r.Set("b.c.obj", Sizes{Text: 1, Data: 2, BSS: 3})
	r.Set("a.c.obj", Sizes{Text: 4})
	got, err := r.Encode()
	require.NoError(t, err)
	want := `{
    "b.c.obj": {
        "text": 1,
        "data": 2,
        "bss": 3
    },
    "a.c.obj": {
        "text": 4,
        "data": 0,
        "bss": 0
    }
}`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Encode() returned unexpected diff (-want +got):\n%s", diff)
	}

	empty, err := NewReport().Encode()
	require.NoError(t, err)
	require.Equal(t, "{}", string(empty))
}

func TestLoadReportKeepsOrder(t *testing.T) {
	name := filepath.Join(t.TempDir(), "code_size.json")
	r := mustParse(t, sizeOutput)
	require.NoError(t, r.WriteFile(name))

	got, err := LoadReport(name)
	require.NoError(t, err)
	require.Equal(t, r.Names(), got.Names())
	require.Equal(t, r.Total(), got.Total())

	require.NoError(t, os.WriteFile(name, []byte(`["a"]`), 0644))
	_, err = LoadReport(name)
	require.Error(t, err)
}

func TestModuleName(t *testing.T) {
	tests := map[string]string{
		"aes.c.obj": "aes",
		"aes.o":     "aes",
		"aes":       "aes",
	}
	for in, want := range tests {
		require.Equal(t, want, ModuleName(in), in)
	}
}

func TestShow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Show(&buf, mustParse(t, sizeOutput), false))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := [][]string{
		{"file", "text", "data", "bss", "total"},
		{"aes", "4521", "0", "0", "4521"},
		{"platform", "120", "8", "16", "144"},
		{"sha256", "2048", "0", "256", "2304"},
		{"TOTAL", "6689", "8", "272", "6969"},
	}
	require.Len(t, lines, len(want))
	for i, line := range lines {
		require.Equal(t, want[i], strings.Fields(line))
		require.Len(t, line, 40+4*9)
	}
}

func TestShowTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Show(&buf, mustParse(t, sizeOutput), true))
	out := buf.String()
	for _, s := range []string{"platform", "sha256", "6969", "TOTAL"} {
		require.Contains(t, out, s)
	}
}

func TestDiff(t *testing.T) {
	a := NewReport()
	a.Set("same.c.obj", Sizes{Text: 10})
	a.Set("grow.c.obj", Sizes{Text: 100, Data: 100})
	a.Set("gone.c.obj", Sizes{BSS: 50})
	a.Set("empty.c.obj", Sizes{})
	b := NewReport()
	b.Set("new.c.obj", Sizes{Text: 30})
	b.Set("grow.c.obj", Sizes{Text: 150, Data: 100})
	b.Set("same.c.obj", Sizes{Data: 10})
	b.Set("empty.c.obj", Sizes{Text: 8})

	want := []DiffRow{
		{"grow", 200, 250, 50, 25},
		{"gone", 50, 0, -50, -100},
		{"empty", 0, 8, 8, 100},
		{"new", 0, 30, 30, 100},
		{"TOTAL", 260, 298, 38, 38 * 100.0 / 260},
	}
	if diff := cmp.Diff(want, Diff(a, b)); diff != "" {
		t.Errorf("Diff() returned unexpected diff (-want +got):\n%s", diff)
	}

	zero := Diff(NewReport(), NewReport())
	require.Equal(t, []DiffRow{{"TOTAL", 0, 0, 0, 0}}, zero)
}

func TestShowDiff(t *testing.T) {
	var buf bytes.Buffer
	rows := []DiffRow{{"aes", 200, 250, 50, 25}, {"TOTAL", 200, 150, -50, -25}}
	require.NoError(t, ShowDiff(&buf, rows, false))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Equal(t, []string{"Module", "Old", "New", "Delta", "%", "Delta"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"aes", "200", "250", "+50", "+25.00%"}, strings.Fields(lines[1]))
	require.Equal(t, []string{"TOTAL", "200", "150", "-50", "-25.00%"}, strings.Fields(lines[2]))
}

func TestShowDiffRemovedAndEmpty(t *testing.T) {
	a := NewReport()
	a.Set("gone.c.obj", Sizes{Text: 40})
	a.Set("empty.c.obj", Sizes{})
	a.Set("idle.c.obj", Sizes{})
	b := NewReport()
	b.Set("empty.c.obj", Sizes{Data: 4})
	b.Set("idle.c.obj", Sizes{})

	tests := []struct {
		name string
		row  DiffRow
		want []string
	}{
		{
			name: "removed",
			row:  DiffRow{"gone", 40, 0, -40, -100},
			want: []string{"gone", "40", "0", "-40", "-100.00%"},
		},
		{
			name: "old size zero",
			row:  DiffRow{"empty", 0, 4, 4, 100},
			want: []string{"empty", "0", "4", "+4", "+100.00%"},
		},
	}
	rows := Diff(a, b)
	require.Len(t, rows, 3)
	var buf bytes.Buffer
	require.NoError(t, ShowDiff(&buf, rows, false))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.row, rows[i]); diff != "" {
				t.Errorf("Diff() row %d (-want +got):\n%s", i, diff)
			}
			require.Equal(t, tt.want, strings.Fields(lines[i+1]))
		})
	}
	require.Equal(t, []string{"TOTAL", "40", "4", "-36", "-90.00%"}, strings.Fields(lines[3]))
	require.Equal(t, 0.0, percent(0, 0))
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "include", "psa"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "include", "psa", "crypto_config.h"), []byte("#define X\n"), 0644))

	r := runner.NewFake().
		On("scripts/config.py", runner.FakeResult{}).
		On("cmake", runner.FakeResult{})
	opts := BuildOptions{
		Root:       root,
		BuildDir:   "build",
		Toolchain:  "tc.cmake",
		ConfigName: "baremetal_size",
		Jobs:       4,
	}
	require.NoError(t, Build(context.Background(), r, opts))
	want := []string{
		"scripts/config.py -f build/code_size_crypto_config.h baremetal_size",
		"cmake . -Bbuild -DCMAKE_TOOLCHAIN_FILE=tc.cmake -DENABLE_PROGRAMS=NO -DTF_PSA_CRYPTO_CONFIG_FILE=build/code_size_crypto_config.h",
		"cmake --build build -j4",
	}
	if diff := cmp.Diff(want, r.CommandLines()); diff != "" {
		t.Errorf("Build() ran unexpected commands (-want +got):\n%s", diff)
	}
	copied, err := os.ReadFile(filepath.Join(root, "build", configFileName))
	require.NoError(t, err)
	require.Equal(t, "#define X\n", string(copied))
	require.Equal(t, filepath.Join("build", "core", "libtfpsacrypto.a"), opts.Library())
}

func TestBuildWithoutConfig(t *testing.T) {
	r := runner.NewFake().On("cmake", runner.FakeResult{})
	opts := BuildOptions{Root: t.TempDir(), BuildDir: M55BuildDir, Toolchain: "m55.cmake", Jobs: 2}
	require.NoError(t, Build(context.Background(), r, opts))
	require.Equal(t, []string{
		"cmake . -Bbuild-code-size-m55 -DCMAKE_TOOLCHAIN_FILE=m55.cmake -DENABLE_PROGRAMS=NO",
		"cmake --build build-code-size-m55 -j2",
	}, r.CommandLines())
}

func TestMeasure(t *testing.T) {
	r := runner.NewFake().On("size lib.a", runner.FakeResult{Stdout: []byte(sizeOutput)})
	rep, err := Measure(context.Background(), r, "size", "lib.a", "")
	require.NoError(t, err)
	require.Equal(t, 3, rep.Len())
}
