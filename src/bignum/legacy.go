// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package bignum

import (
	"math/big"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/testcase"
	"github.com/Mbed-TLS/framework-tools/src/testgen"
)

// LegacyTarget is the data file for the mbedtls_mpi tests.
const LegacyTarget = "test_suite_bignum.generated"

var legacyInputValues = []string{
	"", "0", "-", "-0",
	"7b", "-7b",
	"0000000000000000123", "-0000000000000000123",
	"1230000000000000000", "-1230000000000000000",
}

// ValueDescription describes an input value in a few words.
func ValueDescription(val string) string {
	switch val {
	case "":
		return "0 (null)"
	case "-":
		return "negative 0 (null)"
	case "0":
		return "0 (1 limb)"
	}
	desc := "positive"
	if strings.HasPrefix(val, "-") {
		desc = "negative"
		val = val[1:]
	}
	if strings.HasPrefix(val, "0") {
		desc += " with leading zero limb"
	} else if len(val) > 10 {
		desc = "large " + desc
	}
	return desc
}

// legacyOp is a binary mbedtls_mpi operation.
type legacyOp struct {
	name     string
	function string
	pairs    []pair
	// prepare can rewrite the raw inputs before anything else.
	prepare func(a, b string) (string, string)
	// eval returns the operator symbol, the description suffix and the
	// expected result arguments.
	eval func(a, b *big.Int) (symbol, suffix string, result []string)
}

func (op legacyOp) generate(counter testgen.Counter) ([]*testcase.TestCase, error) {
	var cases []*testcase.TestCase
	for _, p := range op.pairs {
		argA, argB := p[0], p[1]
		if op.prepare != nil {
			argA, argB = op.prepare(argA, argB)
		}
		a, err := HexToInt(argA)
		if err != nil {
			return nil, err
		}
		b, err := HexToInt(argB)
		if err != nil {
			return nil, err
		}
		symbol, suffix, result := op.eval(a, b)
		detail := ValueDescription(argA) + " " + symbol + " " + ValueDescription(argB)
		if suffix != "" {
			detail += " " + suffix
		}
		cases = append(cases, &testcase.TestCase{
			Description: counter.Describe(op.name, detail),
			Function:    op.function,
			Arguments:   append([]string{QuoteStr(argA), QuoteStr(argB)}, result...),
		})
	}
	return cases, nil
}

func compare(a, b *big.Int) (string, string, []string) {
	c := a.Cmp(b)
	return []string{"<", "==", ">"}[c+1], "", []string{big.NewInt(int64(c)).String()}
}

var mpiAdd = legacyOp{
	name:     "MPI add",
	function: "mpi_add_mpi",
	pairs: append(CombinationPairs(legacyInputValues), CombinationPairs([]string{
		"1c67967269c6", "9cde3",
		"-1c67967269c6", "-9cde3",
	})...),
	eval: func(a, b *big.Int) (string, string, []string) {
		r := new(big.Int).Add(a, b)
		suffix := ""
		// The sign of the result is only worth stating when not obvious.
		if !(a.Sign() >= 0 && b.Sign() >= 0) && !(a.Sign() <= 0 && b.Sign() <= 0) {
			suffix = ", result" + []string{"<", "=", ">"}[r.Sign()+1] + "0"
		}
		return "+", suffix, []string{QuoteStr(Hex(r))}
	},
}

var mpiCmpCases = []pair{
	{"-2", "-3"},
	{"-2", "-2"},
	{"2b4", "2b5"},
	{"2b5", "2b6"},
}

var mpiCmp = legacyOp{
	name:     "MPI compare",
	function: "mpi_cmp_mpi",
	pairs:    append(CombinationPairs(legacyInputValues), mpiCmpCases...),
	eval:     compare,
}

var mpiCmpAbs = legacyOp{
	name:     "MPI compare (abs)",
	function: "mpi_cmp_abs",
	pairs:    append(CombinationPairs(legacyInputValues), mpiCmpCases...),
	prepare: func(a, b string) (string, string) {
		return strings.Trim(a, "-"), strings.Trim(b, "-")
	},
	eval: compare,
}

var mpiGCD = legacyOp{
	name:     "GCD",
	function: "mpi_gcd",
	pairs: CombinationPairs(ExpandListNegative([]string{
		"3c094fd6b36ee4902c8ba84d13a401def90a2130116dad3361",
		"b2b06ebe14a185a83d5d2d7bddd1dd0e05e800d6b914fbed4e",
		"203265b387",
		"9bc8e63852",
		"100000000",
		"300000000",
		"500000000",
		"50000",
		"30000",
		"1",
		"2",
		"3",
	})),
	eval: func(a, b *big.Int) (string, string, []string) {
		suffix := ": |A|" + []string{"<", "=", ">"}[cmpAbs(a, b)+1] + "|B|"
		if a.Sign() < 0 {
			suffix += ", A<0"
		}
		if b.Sign() < 0 {
			suffix += ", B<0"
		}
		if a.Bit(0) == 0 {
			suffix += ", A even"
		} else {
			suffix += ", A odd"
		}
		if b.Bit(0) == 0 {
			suffix += ", B even"
		} else {
			suffix += ", B odd"
		}
		g := new(big.Int).GCD(nil, nil, a, b)
		return "GCD", suffix, []string{QuoteStr(Hex(g))}
	},
}

var mpiInvMod = legacyOp{
	name:     "MPI inv_mod",
	function: "mpi_inv_mod",
	pairs: CombinationTwoLists(
		ExpandListNegative([]string{
			"aa4df5cb14b4c31237f98bd1faf527c283c2d0f3eec89718664ba33f9762907c",
			"f847e7731a2687c837f6b825f2937d997bf66814d3db79b27b",
			"2ec0888f",
			"22fbdf4c",
			"32cf9a75",
		}),
		// N must be positive.
		[]string{
			"fffbbd660b94412ae61ead9c2906a344116e316a256fd387874c6c675b1d587d",
			"2fe72fa5c05bc14c1279e37e2701bd956822999f42c5cbe84",
			"2ec0888f",
			"22fbdf4c",
			"34d0830",
			"364b6729",
			"14419cd",
		},
	),
	eval: func(a, n *big.Int) (string, string, []string) {
		aStr := "A"
		if a.Sign() < 0 {
			aStr = "|A|"
		}
		suffix := ": " + aStr + []string{"<", "=", ">"}[cmpAbs(a, n)+1] + "N"
		if a.Sign() < 0 {
			suffix += ", A<0"
		}
		inv, err := InvMod(a, n)
		if err != nil {
			suffix += ", no inverse"
			return "^-1 mod", suffix, []string{QuoteStr("0"), "MBEDTLS_ERR_MPI_NOT_ACCEPTABLE"}
		}
		return "^-1 mod", suffix, []string{QuoteStr(Hex(inv)), "0"}
	},
}

// LegacyCases returns the test cases of LegacyTarget, grouped by test
// function in name order.
func LegacyCases() ([]*testcase.TestCase, error) {
	counter := testgen.Counter{}
	var all []*testcase.TestCase
	for _, op := range []legacyOp{mpiAdd, mpiCmp, mpiCmpAbs, mpiGCD, mpiInvMod} {
		cases, err := op.generate(counter)
		if err != nil {
			return nil, err
		}
		all = append(all, cases...)
	}
	return all, nil
}
