// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package acvp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var divideRE = regexp.MustCompile(`^(\w+)/([1-9][0-9]*)$`)

// Field returns the text substituted for a template placeholder. The
// name "field/N" divides an integer-valued field by N, which must divide
// it exactly.
func Field(tc *TestCase, name string) (string, error) {
	if m := divideRE.FindStringSubmatch(name); m != nil {
		value, err := tc.Int(m[1])
		if err != nil {
			return "", err
		}
		d, _ := strconv.ParseInt(m[2], 10, 64)
		if value%d != 0 {
			return "", fmt.Errorf("test case %d: not a multiple of %d: %q = %d", tc.TcID, d, m[1], value)
		}
		return strconv.FormatInt(value/d, 10), nil
	}
	v, err := tc.lookup(name)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("test case %d: field %q cannot be formatted", tc.TcID, name)
}

// Expand substitutes the {field} placeholders of a template. "{{" and "}}"
// stand for literal braces.
func Expand(template string, tc *TestCase) (string, error) {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && strings.HasPrefix(template[i:], "{{"):
			b.WriteByte('{')
			i++
		case c == '}' && strings.HasPrefix(template[i:], "}}"):
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder in %q", template)
			}
			s, err := Field(tc, template[i+1:i+end])
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			i += end
		case c == '}':
			return "", fmt.Errorf("single '}' in %q", template)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
