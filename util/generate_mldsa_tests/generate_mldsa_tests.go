// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// generate_mldsa_tests writes ML-DSA test cases whose expected results
// come from the circl implementation.
package main

import (
	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/mldsa"
	"github.com/Mbed-TLS/framework-tools/src/testcase"
	"github.com/Mbed-TLS/framework-tools/src/testgen"
)

const caller = "framework/util/generate_mldsa_tests"

func main() {
	levels := append([]int(nil), mldsa.DefaultLevels...)
	g := testgen.NewGenerator(caller, testgen.Target{
		Name: mldsa.Target,
		// levels is read after flag parsing.
		Generate: func() ([]*testcase.TestCase, error) { return mldsa.Cases(levels) },
		Unstable: true,
	})
	a := testgen.NewApp("generate_mldsa_tests", "Generate ML-DSA test data", g)
	a.Flags().IntSliceVar(&levels, "levels", levels, "ML-DSA parameter sets (44, 65, 87)")
	cli.Main(a)
}
