// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package testgen drives generators of .data test suite files: a generator
// is a set of named targets, each producing the test cases of one file.
package testgen

import (
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/Mbed-TLS/framework-tools/src/testcase"
	"github.com/Mbed-TLS/framework-tools/src/utils"
)

// DefaultDirectory is where test suite data files live, relative to the
// project root.
const DefaultDirectory = "tests/suites"

// Target produces the test cases of one .data file.
type Target struct {
	Name     string
	Generate func() ([]*testcase.TestCase, error)
	// Unstable marks targets whose content changes from one run to the
	// next, e.g. because of randomized signatures.
	Unstable bool
}

// Generator is a set of targets written to one directory.
type Generator struct {
	// Caller names the tool in the header of generated files.
	Caller    string
	Directory string
	targets   map[string]Target
}

func NewGenerator(caller string, targets ...Target) *Generator {
	g := &Generator{
		Caller:    caller,
		Directory: DefaultDirectory,
		targets:   make(map[string]Target),
	}
	for _, t := range targets {
		g.targets[t.Name] = t
	}
	return g
}

// Name identifies the generator in listings.
func (g *Generator) Name() string {
	return g.Caller
}

// TargetNames returns the target names in sorted order.
func (g *Generator) TargetNames() []string {
	names := make([]string, 0, len(g.targets))
	for name := range g.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilenameFor returns the location of the data file of a target.
func (g *Generator) FilenameFor(name string) string {
	return path.Join(g.Directory, name+".data")
}

func (g *Generator) target(name string) (Target, error) {
	t, ok := g.targets[name]
	if !ok {
		return Target{}, fmt.Errorf("unknown target %q", name)
	}
	return t, nil
}

// Render returns the content of the data file of a target.
func (g *Generator) Render(name string) ([]byte, error) {
	t, err := g.target(name)
	if err != nil {
		return nil, err
	}
	cases, err := t.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %v", name, err)
	}
	return testcase.Render(cases, g.Caller)
}

// GenerateTarget writes the data file of a target.
func (g *Generator) GenerateTarget(name string) error {
	data, err := g.Render(name)
	if err != nil {
		return err
	}
	filename := g.FilenameFor(name)
	if err := utils.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", filename, err)
	}
	return nil
}

// Outdated returns the names of targets whose data file is missing or does
// not have the expected content. Unstable targets are only checked for
// presence.
func (g *Generator) Outdated() ([]string, error) {
	var outdated []string
	for _, name := range g.TargetNames() {
		filename := g.FilenameFor(name)
		if g.targets[name].Unstable {
			if _, err := os.Stat(filename); err != nil {
				outdated = append(outdated, name)
			}
			continue
		}
		data, err := g.Render(name)
		if err != nil {
			return nil, err
		}
		if !utils.UpToDate(filename, data) {
			outdated = append(outdated, name)
		}
	}
	return outdated, nil
}

// Files returns the paths of all data files, in target name order.
func (g *Generator) Files() []string {
	var files []string
	for _, name := range g.TargetNames() {
		files = append(files, g.FilenameFor(name))
	}
	return files
}

func (g *Generator) targetForFile(file string) (string, error) {
	for name := range g.targets {
		if g.FilenameFor(name) == file {
			return name, nil
		}
	}
	return "", fmt.Errorf("%s is not generated by %s", file, g.Caller)
}

// RenderFile returns the expected content of one of Files().
func (g *Generator) RenderFile(file string) ([]byte, error) {
	name, err := g.targetForFile(file)
	if err != nil {
		return nil, err
	}
	return g.Render(name)
}

// Stable reports whether the content of file is deterministic.
func (g *Generator) Stable(file string) bool {
	name, err := g.targetForFile(file)
	return err == nil && !g.targets[name].Unstable
}
