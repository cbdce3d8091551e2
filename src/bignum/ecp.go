// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package bignum

import (
	"fmt"
	"math/big"

	"github.com/Mbed-TLS/framework-tools/src/testcase"
	"github.com/Mbed-TLS/framework-tools/src/testgen"
)

// ECPTarget is the data file for the generated mbedtls_ecp tests.
const ECPTarget = "test_suite_ecp.generated"

// quasiReductionExtra are inputs between n and 2n for at least one of the
// moduli.
var quasiReductionExtra = []string{
	"73",
	"ebeddd7b4fefae8755bbfb9c181a73347096b3ec70d1a021",
	"1f4e1d074d0b50e8d8818f9a9e5df9959f902bb955fd24fd3d791175226ad8c1" +
		"fcb6d59fa41a3dcb25412009e5e356eb65b50ca67782285290420b45b32f0d63" +
		"7c9ee549a52ad8d631ba4945435c9aec77227ec59faff878b71b920a3d631929" +
		"d636c9a409d6ffdcd95e2568e128596811fb9ade15e69f6efd509381ebbf3599",
}

// quasiReductionCases covers mbedtls_ecp_quasi_reduction, which brings
// 0 <= a < 2n into [0, n). Operands use the fixed 32-bit limb layout.
func quasiReductionCases(counter testgen.Counter) []*testcase.TestCase {
	const name = "mbedtls_ecp_quasi_reduction"
	values := append(append([]string(nil), modRawInputValues...), quasiReductionExtra...)
	var cases []*testcase.TestCase
	for _, valN := range modRawModuli {
		n := mustHex(valN)
		twoN := new(big.Int).Lsh(n, 1)
		for _, valA := range values {
			if mustHex(valA).Cmp(twoN) >= 0 {
				continue
			}
			m := newModOperands(valN, valA, "0", 32)
			result := new(big.Int).Mod(m.a, m.n)
			cases = append(cases, &testcase.TestCase{
				Description: counter.Describe(name, fmt.Sprintf("- %s mod %s", Hex(m.a), Hex(m.n))),
				Function:    "ecp_quasi_reduction",
				Arguments:   []string{QuoteStr(m.hexN), QuoteStr(m.hexA), QuoteStr(m.pad(result))},
			})
		}
	}
	return cases
}

// ECPCases returns the test cases of ECPTarget.
func ECPCases() ([]*testcase.TestCase, error) {
	return quasiReductionCases(testgen.Counter{}), nil
}

// NewECPGenerator returns the generator of the ecp data file.
func NewECPGenerator(caller string) *testgen.Generator {
	return testgen.NewGenerator(caller, testgen.Target{Name: ECPTarget, Generate: ECPCases})
}
