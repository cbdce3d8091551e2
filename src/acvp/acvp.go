// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package acvp reads test data in the internalProjection.json format of the
// NIST ACVP server (gen-val/json-files/*) and formats it as .data test cases.
package acvp

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ProjectionFile is read when a directory is given instead of a file.
const ProjectionFile = "internalProjection.json"

// TestCase is one test case from ACVP data.
type TestCase struct {
	// Algorithm is the top-level "algorithm" of the file, e.g. "SHA3-256".
	Algorithm string
	// Group is the tgId of the enclosing test group.
	Group int
	TcID  int

	fields map[string]any
	group  map[string]any
}

func (tc *TestCase) lookup(field string) (any, error) {
	if v, ok := tc.fields[field]; ok {
		return v, nil
	}
	if v, ok := tc.group[field]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("test case %d: no field %q", tc.TcID, field)
}

// Has reports whether the test case or its group has the field.
func (tc *TestCase) Has(field string) bool {
	_, err := tc.lookup(field)
	return err == nil
}

// Int returns an integer-valued field.
func (tc *TestCase) Int(field string) (int64, error) {
	v, err := tc.lookup(field)
	if err != nil {
		return 0, err
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}
	return 0, fmt.Errorf("test case %d: not an integer-valued field: %q", tc.TcID, field)
}

// Str returns a string-valued field.
func (tc *TestCase) Str(field string) (string, error) {
	v, err := tc.lookup(field)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("test case %d: not a string-valued field: %q", tc.TcID, field)
	}
	return s, nil
}

// Bytes parses a string-valued field as a hex dump.
func (tc *TestCase) Bytes(field string) ([]byte, error) {
	s, err := tc.Str(field)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("test case %d: field %q: %v", tc.TcID, field, err)
	}
	return b, nil
}

// LengthsAreOctets reports whether every length field ("len" or "...Len")
// of the test case is a multiple of 8.
func (tc *TestCase) LengthsAreOctets() bool {
	for field := range tc.fields {
		if field != "len" && !strings.HasSuffix(field, "Len") {
			continue
		}
		n, err := tc.Int(field)
		if err != nil {
			continue
		}
		if n%8 != 0 {
			return false
		}
	}
	return true
}

// Format formats the test case as a .data paragraph.
func (tc *TestCase) Format(description, dependencies, call string) (string, error) {
	desc, err := Expand(description, tc)
	if err != nil {
		return "", err
	}
	c, err := Expand(call, tc)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(desc + "\n")
	if dependencies != "" {
		b.WriteString("depends_on:" + dependencies + "\n")
	}
	b.WriteString(c + "\n")
	return b.String(), nil
}

// ACVP is a list of test cases.
type ACVP struct {
	// Algorithm is the top-level "algorithm" of the last file loaded.
	Algorithm string
	Tests     []*TestCase
	// Usable decides whether a loaded test case is kept. Nil means
	// LengthsAreOctets.
	Usable func(*TestCase) bool
}

type projection struct {
	Algorithm  string           `json:"algorithm"`
	TestGroups []map[string]any `json:"testGroups"`
}

func (a *ACVP) usable(tc *TestCase) bool {
	if a.Usable != nil {
		return a.Usable(tc)
	}
	return tc.LengthsAreOctets()
}

func asInt(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	return int(i), err == nil
}

// Load reads an internalProjection.json stream.
func (a *ACVP) Load(r io.Reader) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var p projection
	if err := dec.Decode(&p); err != nil {
		return fmt.Errorf("failed to decode ACVP data: %v", err)
	}
	a.Algorithm = p.Algorithm
	for _, group := range p.TestGroups {
		tgID, ok := asInt(group["tgId"])
		if !ok {
			return fmt.Errorf("test group without a valid tgId")
		}
		tests, _ := group["tests"].([]any)
		meta := make(map[string]any, len(group))
		for k, v := range group {
			if k != "tests" {
				meta[k] = v
			}
		}
		for _, item := range tests {
			fields, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf("group %d: test case is not an object", tgID)
			}
			tcID, ok := asInt(fields["tcId"])
			if !ok {
				return fmt.Errorf("group %d: test case without a valid tcId", tgID)
			}
			tc := &TestCase{Algorithm: p.Algorithm, Group: tgID, TcID: tcID, fields: fields, group: meta}
			if !a.usable(tc) {
				continue
			}
			a.Tests = append(a.Tests, tc)
		}
	}
	return nil
}

// LoadFile loads a file, or the internalProjection.json file of a
// directory.
func (a *ACVP) LoadFile(name string) error {
	if st, err := os.Stat(name); err == nil && st.IsDir() {
		name = filepath.Join(name, ProjectionFile)
	}
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open ACVP data: %v", err)
	}
	defer f.Close()
	if err := a.Load(f); err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}
	return nil
}

// FromFiles loads test cases from several files.
func FromFiles(names ...string) (*ACVP, error) {
	a := &ACVP{}
	for _, name := range names {
		if err := a.LoadFile(name); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Remove drops the test cases for which pred is true, in place.
func (a *ACVP) Remove(pred func(*TestCase) bool) *ACVP {
	kept := a.Tests[:0]
	for _, tc := range a.Tests {
		if !pred(tc) {
			kept = append(kept, tc)
		}
	}
	a.Tests = kept
	return a
}

// Select returns a new ACVP with the test cases for which pred is true.
func (a *ACVP) Select(pred func(*TestCase) bool) *ACVP {
	out := &ACVP{Algorithm: a.Algorithm, Usable: a.Usable}
	for _, tc := range a.Tests {
		if pred(tc) {
			out.Tests = append(out.Tests, tc)
		}
	}
	return out
}

// Sort sorts the test cases in place, keeping the order of equal ones.
func (a *ACVP) Sort(less func(x, y *TestCase) bool) *ACVP {
	sort.SliceStable(a.Tests, func(i, j int) bool { return less(a.Tests[i], a.Tests[j]) })
	return a
}

// Print writes every test case followed by a blank line.
func (a *ACVP) Print(w io.Writer, description, dependencies, call string) error {
	for _, tc := range a.Tests {
		s, err := tc.Format(description, dependencies, call)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, s+"\n"); err != nil {
			return err
		}
	}
	return nil
}
