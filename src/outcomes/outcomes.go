// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package outcomes searches test outcome files. An outcome file has one
// line per test case run:
//
//	platform;configuration;test suite;test case;result;cause
package outcomes

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
)

// DefaultFile is the outcome file written by the CI scripts.
const DefaultFile = "outcomes.csv"

var configLineRE = regexp.MustCompile(`^[^;]*;([^;]*);test_suite_config\.[^;]*;Config: ([^;]*);PASS;`)

var suiteMarker = []byte(";test_suite_config")

// ConfigData maps a configuration name to the settings reported as
// passing by test_suite_config in that configuration.
type ConfigData map[string]map[string]bool

// ReadConfigData collects the passing settings of each configuration.
// Only the settings listed in wanted are kept; nil keeps all of them.
func ReadConfigData(r io.Reader, wanted []string) (ConfigData, error) {
	var keep map[string]bool
	if wanted != nil {
		keep = make(map[string]bool)
		for _, s := range wanted {
			keep[s] = true
		}
	}
	data := make(ConfigData)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		// Most lines are from other test suites.
		if !bytes.Contains(line, suiteMarker) {
			continue
		}
		m := configLineRE.FindSubmatch(line)
		if m == nil {
			continue
		}
		config, setting := string(m[1]), string(m[2])
		if keep != nil && !keep[setting] {
			continue
		}
		if data[config] == nil {
			data[config] = make(map[string]bool)
		}
		data[config][setting] = true
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// Matching returns the sorted configurations in which every required
// setting passes.
func (d ConfigData) Matching(required []string) []string {
	var out []string
	for config, observed := range d {
		ok := true
		for _, s := range required {
			if !observed[s] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, config)
		}
	}
	sort.Strings(out)
	return out
}

// SearchConfigOutcomes returns the configurations of the outcome file in
// which test_suite_config reports all the given settings as passing. Each
// setting is a compile option such as "MBEDTLS_RSA_C", optionally prefixed
// with "!" for a disabled option.
func SearchConfigOutcomes(file string, settings []string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open outcome file: %v", err)
	}
	defer f.Close()
	data, err := ReadConfigData(f, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", file, err)
	}
	return data.Matching(settings), nil
}
