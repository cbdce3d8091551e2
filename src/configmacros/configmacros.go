// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package configmacros collects the configuration options of a product,
// either from its source tree or from the option lists saved for a
// previous release.
package configmacros

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/buildtree"
)

// DefineRE matches a macro definition at the start of a line, including
// commented-out ones such as "//#define MBEDTLS_FOO".
var DefineRE = regexp.MustCompile(`^[/ ]*# *define  *([A-Z_a-z][0-9A-Z_a-z]*)`)

var (
	publicConfigHeaders = []string{
		"include/mbedtls/mbedtls_config.h",
		"include/psa/crypto_config.h",
	}
	adjustConfigHeaders = []string{
		"include/**/*adjust*.h",
		"drivers/*/include/**/*adjust*.h",
	}
)

type set map[string]bool

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Macros holds the configuration options of a product and the internal
// macros that look like options.
type Macros struct {
	public   set
	internal set
}

// New builds the macro sets. Internal macros are the adjusted ones that
// are not public options.
func New(public, adjusted []string) *Macros {
	m := &Macros{public: make(set), internal: make(set)}
	for _, p := range public {
		m.public[p] = true
	}
	for _, a := range adjusted {
		if !m.public[a] {
			m.internal[a] = true
		}
	}
	return m
}

// Options returns the configuration options, sorted.
func (m *Macros) Options() []string {
	return m.public.sorted()
}

// Internal returns the internal option-like macros, sorted.
func (m *Macros) Internal() []string {
	return m.internal.sorted()
}

func (m *Macros) IsOption(name string) bool {
	return m.public[name]
}

func (m *Macros) IsInternal(name string) bool {
	return m.internal[name]
}

// SearchFile returns the macros defined in a file, in order.
func SearchFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		if m := DefineRE.FindStringSubmatch(s.Text()); m != nil {
			out = append(out, m[1])
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", name, err)
	}
	return out, nil
}

func searchFiles(dir string, patterns []string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		files, err := Glob(dir, pattern)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			macros, err := SearchFile(f)
			if err != nil {
				return nil, err
			}
			out = append(out, macros...)
		}
	}
	return out, nil
}

// Current reads the macros from the source tree at root, or from its
// submodule directory when submodule is not empty.
func Current(root, submodule string) (*Macros, error) {
	dir := filepath.Join(root, submodule)
	public, err := searchFiles(dir, publicConfigHeaders)
	if err != nil {
		return nil, err
	}
	adjusted, err := searchFiles(dir, adjustConfigHeaders)
	if err != nil {
		return nil, err
	}
	return New(public, adjusted), nil
}

func loadList(name string) ([]string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load history file: %v", err)
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// HistoryDir returns the directory of the saved option lists.
func HistoryDir(frameworkRoot string) string {
	return filepath.Join(frameworkRoot, "history")
}

// History reads the option lists saved for a project at a version, e.g.
// ("mbedtls", "3.6").
func History(frameworkRoot, project, version string) (*Macros, error) {
	dir := HistoryDir(frameworkRoot)
	public, err := loadList(filepath.Join(dir, fmt.Sprintf("config-options-%s-%s.txt", project, version)))
	if err != nil {
		return nil, err
	}
	adjusted, err := loadList(filepath.Join(dir, fmt.Sprintf("config-adjust-%s-%s.txt", project, version)))
	if err != nil {
		return nil, err
	}
	return New(public, adjusted), nil
}

// CurrentForProject reads the macros of the project containing the current
// directory.
func CurrentForProject(submodule string) (*Macros, error) {
	root, err := buildtree.GuessProjectRoot(".")
	if err != nil {
		return nil, err
	}
	return Current(root, submodule)
}
