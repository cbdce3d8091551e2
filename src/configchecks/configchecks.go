// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package configchecks generates the preprocessor checks that reject bad
// configurations: options that were removed, moved to another product, or
// that are internal and may not be set by users.
//
// The checks are split over three headers included at different points
// of the configuration: before the user configuration is read, just after
// it, and at the end once all adjustments have been made.
package configchecks

import (
	"fmt"
	"path"
	"strings"
)

// Position is a point in the configuration sequence.
type Position int

const (
	Before Position = iota
	User
	Final
)

// Positions lists every position in inclusion order.
var Positions = []Position{Before, User, Final}

func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case User:
		return "user"
	case Final:
		return "final"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

func (p Position) description() string {
	switch p {
	case Before:
		return "before reading the user configuration"
	case User:
		return "just after reading the user configuration"
	}
	return "after adjusting the configuration"
}

// Checker produces the checks for one macro. prefix is the project's
// C preprocessor prefix, e.g. "MBEDTLS".
type Checker interface {
	Name() string
	Check(pos Position, prefix string) string
}

// beforeMacro names the macro that records a definition seen before the
// user configuration.
func beforeMacro(prefix, name string) string {
	return fmt.Sprintf("%s_CONFIG_CHECK_BEFORE_%s", prefix, name)
}

// Removed rejects an option that no longer exists.
type Removed struct {
	Option  string
	Version string
}

func (c Removed) Name() string { return c.Option }

func (c Removed) Check(pos Position, _ string) string {
	if pos != User {
		return ""
	}
	return fmt.Sprintf("#if defined(%s)\n#error \"%s was removed in %s.\"\n#endif\n",
		c.Option, c.Option, c.Version)
}

// Internal rejects a macro that is internal to a subproject when the user
// configuration defines it. A definition made before the configuration is
// read, e.g. on the compiler command line by the build system, is
// tolerated.
type Internal struct {
	Option     string
	Subproject string
}

func (c Internal) Name() string { return c.Option }

func (c Internal) Check(pos Position, prefix string) string {
	before := beforeMacro(prefix, c.Option)
	switch pos {
	case Before:
		return fmt.Sprintf("#if defined(%s)\n#define %s\n#endif\n", c.Option, before)
	case User:
		return fmt.Sprintf("#if defined(%s) && !defined(%s)\n"+
			"#error \"%s is an internal macro of %s and may not be configured.\"\n#endif\n",
			c.Option, before, c.Option, c.Subproject)
	}
	return fmt.Sprintf("#undef %s\n", before)
}

// Moved rejects an option that is now set in another configuration file.
type Moved struct {
	Option string
	Header string
}

func (c Moved) Name() string { return c.Option }

func (c Moved) Check(pos Position, _ string) string {
	if pos != User {
		return ""
	}
	return fmt.Sprintf("#if defined(%s)\n#error \"%s must be configured in %s.\"\n#endif\n",
		c.Option, c.Option, c.Header)
}

// BranchData describes the check headers of one project.
type BranchData struct {
	// Directory of the generated headers, relative to the project root.
	HeaderDirectory string
	// Prefix of the header base names, e.g. "mbedtls_".
	HeaderPrefix string
	// Prefix of generated macros, e.g. "MBEDTLS".
	ProjectCPPPrefix string
	Checkers         []Checker
}

// Filename returns the header for a position.
func (b *BranchData) Filename(pos Position) string {
	return path.Join(b.HeaderDirectory, fmt.Sprintf("%sconfig_check_%s.h", b.HeaderPrefix, pos))
}

// Filenames returns the headers in position order.
func (b *BranchData) Filenames() []string {
	var out []string
	for _, pos := range Positions {
		out = append(out, b.Filename(pos))
	}
	return out
}

// Render returns the content of the header for a position.
func (b *BranchData) Render(pos Position, caller string) []byte {
	guard := strings.ToUpper(fmt.Sprintf("%sconfig_check_%s_h", b.HeaderPrefix, pos))
	var s strings.Builder
	fmt.Fprintf(&s, "/* %s: checks %s.\n", path.Base(b.Filename(pos)), pos.description())
	fmt.Fprintf(&s, " *\n * Automatically generated by %s. Do not edit!\n */\n\n", caller)
	s.WriteString("/* Copyright The Mbed TLS Contributors\n" +
		" * SPDX-License-Identifier: Apache-2.0 OR GPL-2.0-or-later\n */\n\n")
	fmt.Fprintf(&s, "#ifndef %s\n#define %s\n", guard, guard)
	for _, c := range b.Checkers {
		if code := c.Check(pos, b.ProjectCPPPrefix); code != "" {
			s.WriteString("\n" + code)
		}
	}
	fmt.Fprintf(&s, "\n#endif /* %s */\n", guard)
	return []byte(s.String())
}
