// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package tlstest

import (
	"fmt"
	"strings"
)

const (
	// DefaultOutput is the generated script, relative to the project root.
	DefaultOutput = "tests/opt-testcases/handshake-generated.sh"

	TLS12ClientHelloAssumedMaxLength = 255
	TLSHandshakeFragmentMinLength    = 4
)

// FragmentLengths are the handshake fragment sizes exercised on each side.
var FragmentLengths = []int{512, 513, 256, 128, 64, 36, 32, 16, 13, 5, 4, 3}

// DefragmentationTest builds one handshake defragmentation test. length 0
// means no fragmentation, and version 0 leaves the version unforced.
func DefragmentationTest(side Side, length int, version Version) *TestCase {
	ourArgs := ""
	theirArgs := ""

	description := "no fragmentation, for reference"
	if length > 0 {
		description = fmt.Sprintf("len=%d", length)
	}
	if version != 0 {
		description += fmt.Sprintf(", TLS 1.%d", int(version))
	}
	tc := NewTestCase(fmt.Sprintf("Handshake defragmentation on %s: %s", side, description))

	// Fragmenting the 1.2 Finished message fails with explicit IV ciphers.
	if version == TLS12 && length >= TLSHandshakeFragmentMinLength && length < 16 && side == Client {
		tc.Requirements = append(tc.Requirements, "skip_next_test")
	}

	if version != 0 {
		theirArgs += " " + version.OpenSSLOption()
		// The version is forced on the OpenSSL side, which ssl-opt.sh does
		// not detect automatically.
		tc.Requirements = append(tc.Requirements, version.RequiresCommand())
		if side == Server && version == TLS12 && length > 0 && length <= TLS12ClientHelloAssumedMaxLength {
			// Only the TLS 1.3 parser reassembles a fragmented ClientHello
			// before handing it to the 1.2 code.
			tc.Requirements = append(tc.Requirements, "requires_config_enabled MBEDTLS_SSL_PROTO_TLS1_3")
			tc.Description += "  TLS 1.3 ClientHello -> 1.2 Handshake"
		}
	}

	// OpenSSL sends server5.crt, which makes the messages long enough to
	// be fragmented.
	if length >= TLSHandshakeFragmentMinLength {
		tc.Requirements = append(tc.Requirements, "requires_certificate_authentication")
		if version == TLS12 && side == Client {
			tc.Requirements = append(tc.Requirements,
				"requires_config_enabled MBEDTLS_KEY_EXCHANGE_ECDHE_ECDSA_ENABLED")
		}
	} else {
		// May run in a pure-PSK configuration.
		theirArgs += " -allow_no_dhe_kex"
	}

	var wanted, forbidden []string
	switch {
	case length == 0:
		forbidden = []string{
			"reassembled record",
			"waiting for more fragments",
		}
	case length < TLSHandshakeFragmentMinLength:
		theirArgs += fmt.Sprintf(" -split_send_frag %d", length)
		tc.ExitCode = 1
		wanted = []string{
			fmt.Sprintf("handshake message too short: %d", length),
			"SSL - An invalid SSL record was received",
		}
		if side == Server {
			wanted = append([]string{"<= parse client hello"}, wanted...)
		} else if version == TLS13 {
			wanted = append([]string{"=> ssl_tls13_process_server_hello"}, wanted...)
		}
	default:
		theirArgs += fmt.Sprintf(" -split_send_frag %d", length)
		wanted = []string{
			"reassembled record",
			fmt.Sprintf(`handshake fragment: 0 \.\. %d of [0-9]\+ msglen %d`, length, length),
			fmt.Sprintf("waiting for more fragments (%d of", length),
		}
	}

	if side == Client {
		tc.Client = "$P_CLI debug_level=4" + ourArgs
		tc.Server = "$O_NEXT_SRV" + theirArgs
		tc.WantedClientPatterns = wanted
		tc.ForbiddenClientPatterns = forbidden
	} else {
		theirArgs += " -cert $DATA_FILES_PATH/server5.crt -key $DATA_FILES_PATH/server5.key"
		ourArgs += " auth_mode=required"
		tc.Client = "$O_NEXT_CLI" + theirArgs
		tc.Server = "$P_SRV debug_level=4" + ourArgs
		tc.WantedServerPatterns = wanted
		tc.ForbiddenServerPatterns = forbidden
	}
	return tc
}

// DefragmentationTests returns all handshake defragmentation tests.
func DefragmentationTests() []*TestCase {
	var tests []*TestCase
	for _, side := range []Side{Client, Server} {
		tests = append(tests, DefragmentationTest(side, 0, 0))
		for _, length := range FragmentLengths {
			tests = append(tests,
				DefragmentationTest(side, length, TLS13),
				DefragmentationTest(side, length, TLS12))
		}
	}
	return tests
}

// Render returns the content of the generated script.
func Render(caller string) []byte {
	var b strings.Builder
	b.WriteString("# Miscellaneous tests related to the TLS handshake layer.\n" +
		"#\n" +
		"# Automatically generated by " + caller + ". Do not edit!\n" +
		"\n" +
		"# Copyright The Mbed TLS Contributors\n" +
		"# SPDX-License-Identifier: Apache-2.0 OR GPL-2.0-or-later\n" +
		"\n")
	for _, tc := range DefragmentationTests() {
		b.WriteString(tc.String())
	}
	b.WriteString("# End of automatically generated file.\n")
	return []byte(b.String())
}

// Generator produces the handshake test script.
type Generator struct {
	Caller string
	Output string
}

func (g *Generator) Name() string {
	return g.Caller
}

func (g *Generator) Files() []string {
	return []string{g.Output}
}

func (g *Generator) RenderFile(file string) ([]byte, error) {
	if file != g.Output {
		return nil, fmt.Errorf("%s is not generated by %s", file, g.Caller)
	}
	return Render(g.Caller), nil
}

func (g *Generator) Stable(string) bool {
	return true
}
