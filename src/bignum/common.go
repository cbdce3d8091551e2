// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package bignum generates test cases for the multi-precision integer
// modules: the legacy mbedtls_mpi interface, the core limb arithmetic and
// the raw modular arithmetic.
package bignum

import (
	"fmt"
	"math/big"
	"strings"
)

// HexToInt parses a value with the syntax of mbedtls_test_read_mpi():
// optional sign, hexadecimal digits, and "" or "-" for zero.
func HexToInt(val string) (*big.Int, error) {
	if val == "" || val == "-" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(val, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hexadecimal value %q", val)
	}
	return n, nil
}

func mustHex(val string) *big.Int {
	n, err := HexToInt(val)
	if err != nil {
		panic(err)
	}
	return n
}

func QuoteStr(val string) string {
	return `"` + val + `"`
}

// Hex formats n in lowercase hexadecimal with a leading "-" if negative.
func Hex(n *big.Int) string {
	return n.Text(16)
}

// ZFill pads s with zeros on the left to width digits, after any sign.
func ZFill(s string, width int) string {
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	if len(s) >= width-len(sign) {
		return sign + s
	}
	return sign + strings.Repeat("0", width-len(sign)-len(s)) + s
}

// LimbsMPI returns the number of limbs needed to store val.
func LimbsMPI(val *big.Int, bitsInLimb int) int {
	return (val.BitLen() + bitsInLimb - 1) / bitsInLimb
}

// BoundMPILimbs returns the first number exceeding the maximum value of the
// given number of limbs.
func BoundMPILimbs(limbs, bitsInLimb int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(limbs*bitsInLimb))
}

// BoundMPI returns the first number exceeding the limbs needed for val.
func BoundMPI(val *big.Int, bitsInLimb int) *big.Int {
	return BoundMPILimbs(LimbsMPI(val, bitsInLimb), bitsInLimb)
}

// InvMod returns the inverse of a modulo n in the range [0, n). a may be
// negative.
func InvMod(a, n *big.Int) (*big.Int, error) {
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("modulus %s is not positive", n)
	}
	r := new(big.Int).ModInverse(a, n)
	if r == nil {
		return nil, fmt.Errorf("%s is not invertible modulo %s", a, n)
	}
	return r, nil
}

type pair [2]string

// CombinationPairs returns every ordered pair of values.
func CombinationPairs(values []string) []pair {
	var pairs []pair
	for _, x := range values {
		for _, y := range values {
			pairs = append(pairs, pair{x, y})
		}
	}
	return pairs
}

// CombinationTwoLists returns every pair with the first element from xs and
// the second from ys.
func CombinationTwoLists(xs, ys []string) []pair {
	var pairs []pair
	for _, x := range xs {
		for _, y := range ys {
			pairs = append(pairs, pair{x, y})
		}
	}
	return pairs
}

// ExpandListNegative returns values followed by their negations.
func ExpandListNegative(values []string) []string {
	out := append([]string(nil), values...)
	for _, v := range values {
		out = append(out, "-"+v)
	}
	return out
}

func cmpAbs(a, b *big.Int) int {
	return new(big.Int).Abs(a).Cmp(new(big.Int).Abs(b))
}
