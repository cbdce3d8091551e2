// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package codesize builds, records, shows and compares code size reports
// produced from the output of a `size` tool run on a static library.
package codesize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sizes holds the section sizes of one object file.
type Sizes struct {
	Text int `json:"text"`
	Data int `json:"data"`
	BSS  int `json:"bss"`
}

// Total is the sum of all sections.
func (s Sizes) Total() int {
	return s.Text + s.Data + s.BSS
}

// Report maps object file names to their sizes. Iteration follows
// insertion order, which is the order of the `size` output.
type Report struct {
	names []string
	sizes map[string]Sizes
}

func NewReport() *Report {
	return &Report{sizes: make(map[string]Sizes)}
}

// Set records the sizes of an object, keeping its original position when
// it is already present.
func (r *Report) Set(name string, s Sizes) {
	if r.sizes == nil {
		r.sizes = make(map[string]Sizes)
	}
	if _, ok := r.sizes[name]; !ok {
		r.names = append(r.names, name)
	}
	r.sizes[name] = s
}

func (r *Report) Get(name string) (Sizes, bool) {
	s, ok := r.sizes[name]
	return s, ok
}

// Names returns the object names in insertion order.
func (r *Report) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Report) Len() int {
	return len(r.names)
}

// Total sums the sizes of all objects.
func (r *Report) Total() Sizes {
	var t Sizes
	for _, n := range r.names {
		s := r.sizes[n]
		t.Text += s.Text
		t.Data += s.Data
		t.BSS += s.BSS
	}
	return t
}

// ParseSizeOutput reads the Berkeley format output of `size` on an
// archive: a header line, then `text data bss dec hex filename` rows.
func ParseSizeOutput(out string) (*Report, error) {
	r := NewReport()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) == 0 {
		return r, nil
	}
	for i, line := range lines[1:] {
		row := strings.Fields(line)
		if len(row) == 0 {
			continue
		}
		if len(row) < 6 {
			return nil, fmt.Errorf("line %d: expected 6 columns, got %d: %q", i+2, len(row), line)
		}
		var s Sizes
		for j, p := range []*int{&s.Text, &s.Data, &s.BSS} {
			v, err := strconv.Atoi(row[j])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad size %q: %v", i+2, row[j], err)
			}
			*p = v
		}
		r.Set(row[5], s)
	}
	return r, nil
}

// MarshalJSON writes the objects in order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.sizes[n])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a report, preserving the order of the objects.
func (r *Report) UnmarshalJSON(data []byte) error {
	*r = Report{sizes: make(map[string]Sizes)}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("code size report: expected an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("code size report: expected an object name")
		}
		var s Sizes
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("code size report: %s: %v", name, err)
		}
		r.Set(name, s)
	}
	_, err = dec.Token()
	return err
}

// Encode renders the report as JSON indented by 4 spaces.
func (r *Report) Encode() ([]byte, error) {
	compact, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "    "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Report) WriteFile(name string) error {
	data, err := r.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("failed to write code size report %q: %v", name, err)
	}
	return nil
}

func LoadReport(name string) (*Report, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read code size report %q: %v", name, err)
	}
	r := NewReport()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to parse code size report %q: %v", name, err)
	}
	return r, nil
}

// ModuleName strips the object extensions: "aes.c.obj" becomes "aes".
func ModuleName(object string) string {
	if i := strings.IndexByte(object, '.'); i >= 0 {
		return object[:i]
	}
	return object
}
