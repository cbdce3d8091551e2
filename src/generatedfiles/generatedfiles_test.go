// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package generatedfiles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Mbed-TLS/framework-tools/src/runner"
)

type fakeSource struct {
	name     string
	files    []string
	content  map[string]string
	unstable map[string]bool
	err      error
}

func (f *fakeSource) Name() string    { return f.name }
func (f *fakeSource) Files() []string { return f.files }

func (f *fakeSource) RenderFile(file string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.content[file]
	if !ok {
		return nil, fmt.Errorf("%s is not generated by %s", file, f.name)
	}
	return []byte(c), nil
}

func (f *fakeSource) Stable(file string) bool { return !f.unstable[file] }

func source(name string, files ...string) *fakeSource {
	s := &fakeSource{name: name, files: files, content: map[string]string{}, unstable: map[string]bool{}}
	for _, f := range files {
		s.content[f] = "content of " + f + "\n"
	}
	return s
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0644))
}

func TestAssemble(t *testing.T) {
	ctx := context.Background()
	a := NewInProcess(source("a", "lib/b.c", "lib/a.c"), "")
	b := NewInProcess(source("b", "tests/x.data"), "")

	s, err := Assemble(ctx, a, b)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, s.ListNames())
	require.Equal(t, []string{"lib/a.c", "lib/b.c", "tests/x.data"}, s.ListTargets())
	require.Equal(t, []string{"lib/b.c", "lib/a.c"}, s.TargetsOf("a"))

	_, err = Assemble(ctx, a, NewInProcess(source("a", "other.c"), ""))
	require.ErrorContains(t, err, "duplicate generator name")
	_, err = Assemble(ctx, a, NewInProcess(source("c", "lib/a.c"), ""))
	require.ErrorContains(t, err, "lib/a.c is generated by both a and c")
}

func TestSelect(t *testing.T) {
	a := NewInProcess(source("a", "lib/a.c"), "")
	b := NewInProcess(source("b", "tests/x.data"), "")
	c := NewInProcess(source("c", "tests/y.data"), "")
	s, err := Assemble(context.Background(), a, b, c)
	require.NoError(t, err)

	names := func(gens []Generator) []string {
		var out []string
		for _, g := range gens {
			out = append(out, g.Name())
		}
		return out
	}
	tests := []struct {
		idents []string
		want   []string
	}{
		{nil, []string{"a", "b", "c"}},
		{[]string{"c", "a"}, []string{"a", "c"}},
		{[]string{"tests/x.data", "b"}, []string{"b"}},
	}
	for _, tt := range tests {
		got, err := s.Select(tt.idents)
		require.NoError(t, err)
		if diff := cmp.Diff(tt.want, names(got)); diff != "" {
			t.Errorf("Select(%v) returned unexpected diff (-want +got):\n%s", tt.idents, diff)
		}
	}
	_, err = s.Select([]string{"nope"})
	require.ErrorContains(t, err, "no generator found for nope")
}

func TestInProcess(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	src := source("gen", "a.c", "sub/b.h", "random.data")
	src.unstable["random.data"] = true
	g := NewInProcess(src, root)

	writeFile(t, filepath.Join(root, "a.c"), "stale\n")
	outdated, err := g.Outdated(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a.c", "sub/b.h", "random.data"}, outdated)

	diff, err := g.Diff(ctx)
	require.NoError(t, err)
	require.Contains(t, diff, "--- a/a.c")
	require.Contains(t, diff, "-stale")
	require.Contains(t, diff, "+content of a.c")
	require.Contains(t, diff, "+++ b/sub/b.h")
	require.NotContains(t, diff, "random.data")

	require.NoError(t, g.Update(ctx, false))
	outdated, err = g.Outdated(ctx)
	require.NoError(t, err)
	require.Empty(t, outdated)
	diff, err = g.Diff(ctx)
	require.NoError(t, err)
	require.Empty(t, diff)

	// Unstable files are kept unless always is set.
	writeFile(t, filepath.Join(root, "random.data"), "previous run\n")
	require.NoError(t, g.Update(ctx, false))
	got, err := os.ReadFile(filepath.Join(root, "random.data"))
	require.NoError(t, err)
	require.Equal(t, "previous run\n", string(got))
	require.NoError(t, g.Update(ctx, true))
	got, err = os.ReadFile(filepath.Join(root, "random.data"))
	require.NoError(t, err)
	require.Equal(t, "content of random.data\n", string(got))
}

func TestScriptTargets(t *testing.T) {
	r := runner.NewFake().On("./scripts/gen.py --list", runner.FakeResult{Stdout: []byte("tests/a.data\n\ntests/b.data\n")})
	g := &ScriptGenerator{Script: "scripts/gen.py", Runner: r}
	require.Equal(t, "gen", g.Name())
	for i := 0; i < 2; i++ {
		got, err := g.Targets(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"tests/a.data", "tests/b.data"}, got)
	}
	require.Len(t, r.Calls, 1)

	static := &ScriptGenerator{Script: "gen.pl", Files: []string{"library/error.c"}, Runner: runner.NewFake()}
	got, err := static.Targets(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"library/error.c"}, got)
}

func TestScriptListOutdated(t *testing.T) {
	r := runner.NewFake().
		On("./gen.py --list-outdated", runner.FakeResult{Stdout: []byte("tests/a.data\n")}).
		On("./gen.py", runner.FakeResult{})
	g := &ScriptGenerator{Script: "gen.py", Files: []string{"tests/a.data"}, ListOutdated: true, Runner: r}
	got, err := g.Outdated(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"tests/a.data"}, got)

	require.NoError(t, g.Update(context.Background(), false))
	require.Equal(t, []string{"./gen.py --list-outdated", "./gen.py --list-outdated", "./gen.py"}, r.CommandLines())
}

func TestScriptListOutdatedExitOne(t *testing.T) {
	r := runner.NewFake().On("./gen.py --list-outdated", runner.FakeResult{
		Stdout: []byte("tests/a.data\n"),
		Err:    &runner.ExitError{Cmd: "./gen.py --list-outdated", Code: 1},
	})
	g := &ScriptGenerator{Script: "gen.py", Files: []string{"tests/a.data"}, ListOutdated: true, Runner: r}
	got, err := g.Outdated(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"tests/a.data"}, got)
	require.Equal(t, []int{1}, r.Calls[0].AllowedCodes)

	r.On("./gen.py --list-outdated", runner.FakeResult{Err: &runner.ExitError{Cmd: "./gen.py --list-outdated", Code: 2}})
	_, err = g.Outdated(context.Background())
	require.Equal(t, 2, runner.ExitCode(err))
}

func TestScriptOutdatedRestores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "same.c"), "same\n")
	writeFile(t, filepath.Join(root, "changed.c"), "old\n")
	r := runner.NewFake().On("./gen.pl", runner.FakeResult{Hook: func(c runner.Cmd) error {
		for name, content := range map[string]string{
			"same.c":    "same\n",
			"changed.c": "new\n",
			"created.c": "created\n",
		} {
			if err := os.WriteFile(filepath.Join(c.Dir, name), []byte(content), 0644); err != nil {
				return err
			}
		}
		return nil
	}})
	g := &ScriptGenerator{
		Script: "gen.pl",
		Files:  []string{"same.c", "changed.c", "created.c"},
		Root:   root,
		Runner: r,
	}
	got, err := g.Outdated(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"changed.c", "created.c"}, got)

	data, err := os.ReadFile(filepath.Join(root, "changed.c"))
	require.NoError(t, err)
	require.Equal(t, "old\n", string(data))
	_, err = os.Stat(filepath.Join(root, "created.c"))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, g.Update(context.Background(), false))
	data, err = os.ReadFile(filepath.Join(root, "changed.c"))
	require.NoError(t, err)
	require.Equal(t, "new\n", string(data))
}

func TestCheck(t *testing.T) {
	root := t.TempDir()
	good := source("good", "good.c")
	writeFile(t, filepath.Join(root, "good.c"), "content of good.c\n")
	stale := source("stale", "stale.c")
	broken := source("broken", "broken.c")
	broken.err = errors.New("no headers")

	gens := []Generator{
		NewInProcess(good, root),
		NewInProcess(stale, root),
		NewInProcess(broken, root),
	}
	results, err := Check(context.Background(), gens, 2)
	require.ErrorContains(t, err, "broken: no headers")
	require.Empty(t, results[0].Outdated)
	require.Equal(t, []string{"stale.c"}, results[1].Outdated)

	results, err = Check(context.Background(), gens[:2], 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestCheckSerializesScripts(t *testing.T) {
	root := t.TempDir()
	var active, peak int32
	hook := func(c runner.Cmd) error {
		n := atomic.AddInt32(&active, 1)
		defer atomic.AddInt32(&active, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return os.WriteFile(filepath.Join(c.Dir, "shared.h"), []byte(c.Name+"\n"), 0644)
	}
	var gens []Generator
	for i := 0; i < 4; i++ {
		script := fmt.Sprintf("gen%d.pl", i)
		r := runner.NewFake().On("./"+script, runner.FakeResult{Hook: hook})
		writeFile(t, filepath.Join(root, fmt.Sprintf("out%d.c", i)), "old\n")
		gens = append(gens, &ScriptGenerator{
			Script: script,
			Files:  []string{fmt.Sprintf("out%d.c", i), "shared.h"},
			Root:   root,
			Runner: r,
		})
	}
	results, err := Check(context.Background(), gens, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&peak))
	for _, res := range results {
		require.Equal(t, []string{"shared.h"}, res.Outdated)
	}
	_, err = os.Stat(filepath.Join(root, "shared.h"))
	require.True(t, os.IsNotExist(err))
}

func TestUpdateStopsOnError(t *testing.T) {
	root := t.TempDir()
	broken := source("broken", "broken.c")
	broken.err = errors.New("boom")
	gens := []Generator{NewInProcess(broken, root), NewInProcess(source("later", "later.c"), root)}
	require.ErrorContains(t, Update(context.Background(), gens, false), "broken: boom")
	_, err := os.Stat(filepath.Join(root, "later.c"))
	require.True(t, os.IsNotExist(err))
}

func TestLoadManifest(t *testing.T) {
	name := filepath.Join(t.TempDir(), "generated.yaml")
	writeFile(t, name, strings.Join([]string{
		"scripts:",
		"  - script: scripts/generate_errors.pl",
		"    files: [library/error.c]",
		"  - script: framework/scripts/generate_psa_tests.py",
		"    list_outdated: true",
		"",
	}, "\n"))
	m, err := LoadManifest(name)
	require.NoError(t, err)
	want := &Manifest{Scripts: []ScriptSpec{
		{Script: "scripts/generate_errors.pl", Files: []string{"library/error.c"}},
		{Script: "framework/scripts/generate_psa_tests.py", ListOutdated: true},
	}}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("LoadManifest() returned unexpected diff (-want +got):\n%s", diff)
	}
	gens := m.Generators("/src", runner.NewFake())
	require.Len(t, gens, 2)
	require.Equal(t, "generate_errors", gens[0].Name())

	writeFile(t, name, "scripts:\n  - files: [a.c]\n")
	_, err = LoadManifest(name)
	require.Error(t, err)
	writeFile(t, name, "scripts: []\nunknown: 1\n")
	_, err = LoadManifest(name)
	require.Error(t, err)
}

func TestDefaultManifest(t *testing.T) {
	root := t.TempDir()
	_, err := DefaultManifest(root)
	require.Error(t, err)

	for _, d := range []string{"core", "drivers"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0755))
	}
	m, err := DefaultManifest(root)
	require.NoError(t, err)
	require.Equal(t, "scripts/generate_driver_wrappers.py", m.Scripts[0].Script)
}
