// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// generate_ecp_tests writes the generated test data file of the ecp test
// suite.
package main

import (
	"github.com/Mbed-TLS/framework-tools/src/bignum"
	"github.com/Mbed-TLS/framework-tools/src/cli"
	"github.com/Mbed-TLS/framework-tools/src/testgen"
)

const caller = "framework/util/generate_ecp_tests"

func main() {
	cli.Main(testgen.NewApp("generate_ecp_tests", "Generate ecp test data files", bignum.NewECPGenerator(caller)))
}
