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

// CoreTarget is the data file for the mbedtls_mpi_core tests.
const CoreTarget = "test_suite_bignum_core.generated"

// LimbSizes are the limb widths supported by the library.
var LimbSizes = []int{32, 64}

var coreInputValues = []string{
	"0", "1", "3", "f", "fe", "ff", "100", "ff00", "fffe", "ffff", "10000",
	"fffffffe", "ffffffff", "100000000", "1f7f7f7f7f7f7f",
	"8000000000000000", "fefefefefefefefe", "fffffffffffffffe",
	"ffffffffffffffff", "10000000000000000", "1234567890abcdef0",
	"fffffffffffffffffefefefefefefefe", "fffffffffffffffffffffffffffffffe",
	"ffffffffffffffffffffffffffffffff", "100000000000000000000000000000000",
	"1234567890abcdef01234567890abcdef0",
	"fffffffffffffffffffffffffffffffffffffffffffffffffefefefefefefefe",
	"fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffe",
	"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	"10000000000000000000000000000000000000000000000000000000000000000",
	"1234567890abcdef01234567890abcdef01234567890abcdef01234567890abcdef0",
	"4df72d07b4b71c8dacb6cffa954f8d88254b6277099308baf003fab73227f34029" +
		"643b5a263f66e0d3c3fa297ef71755efd53b8fb6cb812c6bbf7bcf179298bd9947" +
		"c4c8b14324140a2c0f5fad7958a69050a987a6096e9f055fb38edf0c5889eca4a0" +
		"cfa99b45fbdeee4c696b328ddceae4723945901ec025076b12b",
}

func maxInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// archSplit holds the operands of an operation whose result depends on the
// limb size, zero-padded to a whole number of limbs.
type archSplit struct {
	bitsInLimb int
	a, b       *big.Int
	argA, argB string
	bound      *big.Int
	hexDigits  int
}

func newArchSplit(argA, argB string, bitsInLimb int) (*archSplit, error) {
	a, err := HexToInt(argA)
	if err != nil {
		return nil, err
	}
	b, err := HexToInt(argB)
	if err != nil {
		return nil, err
	}
	boundVal := maxInt(a, b)
	limbs := LimbsMPI(boundVal, bitsInLimb)
	s := &archSplit{
		bitsInLimb: bitsInLimb,
		a:          a,
		b:          b,
		bound:      BoundMPI(boundVal, bitsInLimb),
		hexDigits:  2 * (limbs * bitsInLimb / 8),
	}
	s.argA = ZFill(argA, s.hexDigits)
	s.argB = ZFill(argB, s.hexDigits)
	return s, nil
}

func (s *archSplit) dependencies() []string {
	return []string{fmt.Sprintf("MBEDTLS_HAVE_INT%d", s.bitsInLimb)}
}

func (s *archSplit) padToLimbs(v *big.Int) string {
	return ZFill(Hex(v), s.hexDigits)
}

func coreAddIf(counter testgen.Counter) ([]*testcase.TestCase, error) {
	const name = "mbedtls_mpi_core_add_if"
	var cases []*testcase.TestCase
	for _, p := range CombinationPairs(coreInputValues) {
		a, b := mustHex(p[0]), mustHex(p[1])
		sum := new(big.Int).Add(a, b)
		boundVal := maxInt(a, b)
		args := []string{QuoteStr(p[0]), QuoteStr(p[1])}
		for _, bits := range LimbSizes {
			carry, rem := new(big.Int).DivMod(sum, BoundMPI(boundVal, bits), new(big.Int))
			args = append(args, QuoteStr(Hex(rem)), carry.String())
		}
		cases = append(cases, &testcase.TestCase{
			Description: counter.Describe(name, p[0]+" + "+p[1]),
			Function:    "mpi_core_add_if",
			Arguments:   args,
		})
	}
	return cases, nil
}

func coreSub(counter testgen.Counter) ([]*testcase.TestCase, error) {
	const name = "mbedtls_mpi_core_sub"
	var cases []*testcase.TestCase
	for _, p := range CombinationPairs(coreInputValues) {
		for _, bits := range LimbSizes {
			s, err := newArchSplit(p[0], p[1], bits)
			if err != nil {
				return nil, err
			}
			diff := new(big.Int).Sub(s.a, s.b)
			carry := "0"
			if diff.Sign() < 0 {
				diff.Add(diff, s.bound)
				carry = "1"
			}
			cases = append(cases, &testcase.TestCase{
				Description:  counter.Describe(name, s.argA+" - "+s.argB),
				Dependencies: s.dependencies(),
				Function:     "mpi_core_sub",
				Arguments:    []string{QuoteStr(s.argA), QuoteStr(s.argB), QuoteStr(s.padToLimbs(diff)), carry},
			})
		}
	}
	return cases, nil
}

// CoreCases returns the test cases of CoreTarget.
func CoreCases() ([]*testcase.TestCase, error) {
	counter := testgen.Counter{}
	var all []*testcase.TestCase
	for _, gen := range []func(testgen.Counter) ([]*testcase.TestCase, error){coreAddIf, coreSub} {
		cases, err := gen(counter)
		if err != nil {
			return nil, err
		}
		all = append(all, cases...)
	}
	return all, nil
}
