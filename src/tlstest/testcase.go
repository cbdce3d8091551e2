// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package tlstest generates ssl-opt.sh test cases.
package tlstest

import (
	"fmt"
	"regexp"
	"strings"
)

// TestCase is one run_test invocation of ssl-opt.sh.
type TestCase struct {
	// Requirements are shell snippets placed before run_test, typically
	// calls to requires_xxx functions.
	Requirements []string
	Description  string
	// Client and Server are placed verbatim inside double quotes.
	Client   string
	Server   string
	ExitCode int
	// Patterns are basic regular expressions matched against the logs.
	WantedClientPatterns    []string
	WantedServerPatterns    []string
	ForbiddenClientPatterns []string
	ForbiddenServerPatterns []string
}

func NewTestCase(description string) *TestCase {
	return &TestCase{
		Description: description,
		Client:      "$P_CLI",
		Server:      "$P_SRV",
	}
}

var shellSpecial = regexp.MustCompile("([$\"\\\\`])")

// Quote quotes s for sh inside double quotes.
func Quote(s string) string {
	return `"` + shellSpecial.ReplaceAllString(s, `\$1`) + `"`
}

func (tc *TestCase) String() string {
	var b strings.Builder
	for _, req := range tc.Requirements {
		b.WriteString(req + "\n")
	}
	fmt.Fprintf(&b, "run_test    %s \\\n", Quote(tc.Description))
	fmt.Fprintf(&b, "            \"%s\" \\\n", tc.Server)
	fmt.Fprintf(&b, "            \"%s\" \\\n", tc.Client)
	fmt.Fprintf(&b, "            %d", tc.ExitCode)
	for _, group := range []struct {
		opt      string
		patterns []string
	}{
		{"-s", tc.WantedServerPatterns},
		{"-S", tc.ForbiddenServerPatterns},
		{"-c", tc.WantedClientPatterns},
		{"-C", tc.ForbiddenClientPatterns},
	} {
		for _, pat := range group.patterns {
			b.WriteString(" \\\n            " + group.opt + " " + Quote(pat))
		}
	}
	b.WriteString("\n\n")
	return b.String()
}

// Side says which side of the connection is Mbed TLS.
type Side int

const (
	Client Side = iota
	Server
)

func (s Side) String() string {
	if s == Client {
		return "client"
	}
	return "server"
}

// Version is a forced protocol version.
type Version int

const (
	TLS12 Version = 2
	TLS13 Version = 3
)

// OpenSSLOption forces the version on an OpenSSL command line.
func (v Version) OpenSSLOption() string {
	return fmt.Sprintf("-tls1_%d", int(v))
}

// RequiresCommand is the ssl-opt.sh requirement for the version.
func (v Version) RequiresCommand() string {
	return fmt.Sprintf("requires_protocol_version tls1%d", int(v))
}
