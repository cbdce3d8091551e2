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

// ModRawTarget is the data file for the mbedtls_mpi_mod_raw tests.
const ModRawTarget = "test_suite_bignum_mod_raw.generated"

var modRawModuli = []string{
	"53",
	"fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f",
}

var modRawInputValues = []string{
	"0", "1", "2", "3", "f", "fe", "ff", "100", "ffff",
	"fffffffe", "ffffffff", "100000000",
	"8000000000000000", "fffffffffffffffe", "ffffffffffffffff",
	"10000000000000000", "1234567890abcdef0",
}

// modOperands are the operands of a modular operation, formatted with as
// many digits as the limbs of the largest of them.
type modOperands struct {
	n, a, b          *big.Int
	hexN, hexA, hexB string
	hexDigits        int
	bitsInLimb       int
}

func newModOperands(valN, valA, valB string, bitsInLimb int) *modOperands {
	m := &modOperands{n: mustHex(valN), a: mustHex(valA), b: mustHex(valB), bitsInLimb: bitsInLimb}
	boundary := maxInt(m.n, maxInt(m.a, m.b))
	limbs := LimbsMPI(boundary, bitsInLimb)
	m.hexDigits = 2 * (limbs * bitsInLimb / 8)
	m.hexN = m.pad(m.n)
	m.hexA = m.pad(m.a)
	m.hexB = m.pad(m.b)
	return m
}

func (m *modOperands) pad(v *big.Int) string {
	return ZFill(Hex(v), m.hexDigits)
}

type modRawOp struct {
	name     string
	function string
	symbol   string
	eval     func(a, b, n *big.Int) *big.Int
}

func (op modRawOp) generate(counter testgen.Counter) []*testcase.TestCase {
	var cases []*testcase.TestCase
	for _, valN := range modRawModuli {
		n := mustHex(valN)
		var values []string
		for _, v := range modRawInputValues {
			if mustHex(v).Cmp(n) < 0 {
				values = append(values, v)
			}
		}
		for _, p := range CombinationPairs(values) {
			for _, bits := range LimbSizes {
				m := newModOperands(valN, p[0], p[1], bits)
				result := op.eval(m.a, m.b, m.n)
				detail := fmt.Sprintf("%s %s %s mod %s", Hex(m.a), op.symbol, Hex(m.b), Hex(m.n))
				cases = append(cases, &testcase.TestCase{
					Description:  counter.Describe(op.name, detail),
					Dependencies: []string{fmt.Sprintf("MBEDTLS_HAVE_INT%d", bits)},
					Function:     op.function,
					Arguments: []string{
						QuoteStr(m.hexA), QuoteStr(m.hexB), QuoteStr(m.hexN),
						QuoteStr(m.pad(result)),
					},
				})
			}
		}
	}
	return cases
}

var modRawOps = []modRawOp{
	{
		name:     "mbedtls_mpi_mod_raw_add",
		function: "mpi_mod_raw_add",
		symbol:   "+",
		eval: func(a, b, n *big.Int) *big.Int {
			r := new(big.Int).Add(a, b)
			return r.Mod(r, n)
		},
	},
	{
		name:     "mbedtls_mpi_mod_raw_sub",
		function: "mpi_mod_raw_sub",
		symbol:   "-",
		eval: func(a, b, n *big.Int) *big.Int {
			r := new(big.Int).Sub(a, b)
			return r.Mod(r, n)
		},
	},
}

// ModRawCases returns the test cases of ModRawTarget.
func ModRawCases() ([]*testcase.TestCase, error) {
	counter := testgen.Counter{}
	var all []*testcase.TestCase
	for _, op := range modRawOps {
		all = append(all, op.generate(counter)...)
	}
	return all, nil
}

// NewGenerator returns the generator of all bignum data files.
func NewGenerator(caller string) *testgen.Generator {
	return testgen.NewGenerator(caller,
		testgen.Target{Name: LegacyTarget, Generate: LegacyCases},
		testgen.Target{Name: CoreTarget, Generate: CoreCases},
		testgen.Target{Name: ModRawTarget, Generate: ModRawCases},
	)
}
