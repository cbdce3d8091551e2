// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package testcase builds test cases in the .data format read by the
// on-target test framework of Mbed TLS and TF-PSA-Crypto.
package testcase

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/utils"
)

var (
	ErrMissingDescription = errors.New("test case has no description")
	ErrMissingFunction    = errors.New("test case has no function")
)

// TestCase is one paragraph of a .data file.
type TestCase struct {
	Comments     []string
	Description  string
	Dependencies []string
	Function     string
	Arguments    []string
}

func New(description string) *TestCase {
	return &TestCase{Description: description}
}

func (tc *TestCase) AddComment(lines ...string) {
	tc.Comments = append(tc.Comments, lines...)
}

func (tc *TestCase) Check() error {
	if tc.Description == "" {
		return ErrMissingDescription
	}
	if tc.Function == "" {
		return fmt.Errorf("%q: %w", tc.Description, ErrMissingFunction)
	}
	return nil
}

// Write writes the paragraph for this test case. The output starts and
// ends with a single newline character.
func (tc *TestCase) Write(w io.Writer) error {
	if err := tc.Check(); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, line := range tc.Comments {
		b.WriteString("# " + line + "\n")
	}
	b.WriteString(tc.Description + "\n")
	if len(tc.Dependencies) > 0 {
		b.WriteString("depends_on:" + strings.Join(tc.Dependencies, ":") + "\n")
	}
	b.WriteString(tc.Function + ":" + strings.Join(tc.Arguments, ":") + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// HexString formats data as a quoted hexadecimal test argument.
func HexString(data []byte) string {
	return `"` + hex.EncodeToString(data) + `"`
}

// Render returns the content of a .data file holding the given cases.
// caller names the generator in the header line.
func Render(cases []*TestCase, caller string) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Automatically generated by %s. Do not edit!\n", caller)
	for _, tc := range cases {
		if err := tc.Write(&buf); err != nil {
			return nil, err
		}
	}
	buf.WriteString("\n# End of automatically generated file.\n")
	return buf.Bytes(), nil
}

// WriteDataFile writes the test cases to the named file, replacing it.
func WriteDataFile(filename string, cases []*TestCase, caller string) error {
	data, err := Render(cases, caller)
	if err != nil {
		return fmt.Errorf("failed to render %s: %v", filename, err)
	}
	return utils.WriteFile(filename, data, 0644)
}
