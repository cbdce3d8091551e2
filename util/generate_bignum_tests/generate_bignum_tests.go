// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// generate_bignum_tests writes the test data files of the bignum test
// suites (legacy mpi, core and mod_raw).
package main

import (
	"github.com/Mbed-TLS/framework-tools/src/bignum"
	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/testgen"
)

const caller = "framework/util/generate_bignum_tests"

func main() {
	cli.Main(testgen.NewApp("generate_bignum_tests", "Generate bignum test data files", bignum.NewGenerator(caller)))
}
