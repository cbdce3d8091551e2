// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package testgen

import (
	"fmt"
	"strings"
)

// Counter numbers test cases per key, starting from 1.
type Counter map[string]int

func (c Counter) Next(key string) int {
	c[key]++
	return c[key]
}

// Describe returns "<name> #<n> <detail>" with n the next count for name.
func (c Counter) Describe(name, detail string) string {
	return strings.TrimSpace(fmt.Sprintf("%s #%d %s", name, c.Next(name), detail))
}
