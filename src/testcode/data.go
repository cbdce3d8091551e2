// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package testcode

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var intLiteralRE = regexp.MustCompile(`^(\d+|(0x)?[0-9a-fA-F]+)$`)

// EscapedSplit splits s on sep, except where sep follows an unescaped
// backslash. Escape characters are kept in the parts. A trailing empty
// part is dropped.
func EscapedSplit(s string, sep byte) []string {
	var (
		out    []string
		part   strings.Builder
		escape bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !escape && c == sep {
			out = append(out, part.String())
			part.Reset()
			continue
		}
		part.WriteByte(c)
		escape = !escape && c == '\\'
	}
	if part.Len() > 0 {
		out = append(out, part.String())
	}
	return out
}

// DataCase is one test of a .data file.
type DataCase struct {
	Name     string
	Function string
	Deps     []string
	Args     []string
}

// ParseTestData reads a .data file: for each test, a description line, an
// optional depends_on line and a function:args line. Tests are separated by
// blank lines and lines starting with # are comments.
func ParseTestData(r io.Reader) ([]DataCase, error) {
	var (
		cases    []DataCase
		name     string
		deps     []string
		readArgs bool
	)
	missing := func() error {
		return fmt.Errorf("newline before arguments: test function and arguments missing for %s", name)
	}
	s := bufio.NewScanner(r)
	s.Buffer(nil, 1<<24)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line == "" {
			if readArgs {
				return nil, missing()
			}
			continue
		}
		if !readArgs {
			name = line
			readArgs = true
			continue
		}
		if m := dependsOnRE.FindStringSubmatch(line); m != nil {
			deps = nil
			for _, d := range strings.Split(m[1], ":") {
				if d = strings.TrimSpace(d); d != "" {
					deps = append(deps, d)
				}
			}
			continue
		}
		parts := EscapedSplit(line, ':')
		cases = append(cases, DataCase{Name: name, Function: parts[0], Deps: deps, Args: parts[1:]})
		deps = nil
		readArgs = false
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if readArgs {
		return nil, missing()
	}
	return cases, nil
}

func genDepCheck(id int, dep string) (string, error) {
	not, macro := splitDep(dep)
	if id < 0 || macro == "" {
		return "", fmt.Errorf("invalid dependency %d %q", id, dep)
	}
	return fmt.Sprintf(`
        case %d:
            {
#if %sdefined(%s)
                ret = DEPENDENCY_SUPPORTED;
#else
                ret = DEPENDENCY_NOT_SUPPORTED;
#endif
            }
            break;`, id, not, macro), nil
}

func genExpressionCheck(id int, exp string) (string, error) {
	if id < 0 || exp == "" {
		return "", fmt.Errorf("invalid expression %d %q", id, exp)
	}
	return fmt.Sprintf(`
        case %d:
            {
                *out_value = %s;
            }
            break;`, id, exp), nil
}

// uniqueList numbers strings in order of first appearance.
type uniqueList struct {
	items []string
	index map[string]int
}

// id returns the number of s and whether s was seen for the first time.
func (u *uniqueList) id(s string) (int, bool) {
	if u.index == nil {
		u.index = make(map[string]int)
	}
	if i, ok := u.index[s]; ok {
		return i, false
	}
	u.index[s] = len(u.items)
	u.items = append(u.items, s)
	return len(u.items) - 1, true
}

// writeDeps writes the depends_on line of a test as dependency numbers and
// returns the checks of the dependencies not seen before.
func writeDeps(w *strings.Builder, deps []string, unique *uniqueList) (string, error) {
	if len(deps) == 0 {
		return "", nil
	}
	var code strings.Builder
	w.WriteString("depends_on")
	for _, d := range deps {
		id, added := unique.id(d)
		if added {
			c, err := genDepCheck(id, d)
			if err != nil {
				return "", err
			}
			code.WriteString(c)
		}
		w.WriteString(":" + strconv.Itoa(id))
	}
	w.WriteString("\n")
	return code.String(), nil
}

// writeParameters writes the typed arguments of a test. Integer arguments
// that are not literals become numbered expressions, evaluated by the
// returned checks.
func writeParameters(w *strings.Builder, args, types []string, unique *uniqueList) (string, error) {
	var code strings.Builder
	for i, val := range args {
		typ := types[i]
		if typ == ArgInt && !intLiteralRE.MatchString(val) {
			typ = argExp
			id, added := unique.id(val)
			if added {
				c, err := genExpressionCheck(id, val)
				if err != nil {
					return "", err
				}
				code.WriteString(c)
			}
			val = strconv.Itoa(id)
		}
		w.WriteString(":" + typ + ":" + val)
	}
	w.WriteString("\n")
	return code.String(), nil
}

// guardSuiteDeps wraps the dependency and expression checks in the suite
// dependencies.
func guardSuiteDeps(suiteDeps []string, depCheck, expression string) (string, string) {
	if len(suiteDeps) == 0 {
		return depCheck, expression
	}
	ifdef := genDepsOneLine(suiteDeps)
	return fmt.Sprintf("\n%s\n%s\n#endif\n", ifdef, depCheck),
		fmt.Sprintf("\n%s\n%s\n#endif\n", ifdef, expression)
}

// Intermediate is the result of translating a .data file.
type Intermediate struct {
	// Data is the content of the intermediate data file.
	Data       string
	DepCheck   string
	Expression string
}

// GenFromTestData translates the tests of a .data file to the intermediate
// format, numbering functions by info and collecting the dependency and
// expression checks.
func GenFromTestData(cases []DataCase, info map[string]FuncInfo, suiteDeps []string) (*Intermediate, error) {
	var (
		out               strings.Builder
		depCheck, exprs   strings.Builder
		uniqueDeps, uExps uniqueList
	)
	for _, tc := range cases {
		out.WriteString(tc.Name + "\n")
		c, err := writeDeps(&out, tc.Deps, &uniqueDeps)
		if err != nil {
			return nil, err
		}
		depCheck.WriteString(c)

		fi, ok := info["test_"+tc.Function]
		if !ok {
			return nil, fmt.Errorf("function %s not found", tc.Function)
		}
		if len(tc.Args) != len(fi.Args) {
			return nil, fmt.Errorf("invalid number of arguments in test %s: see function %s signature", tc.Name, tc.Function)
		}
		out.WriteString(strconv.Itoa(fi.ID))
		c, err = writeParameters(&out, tc.Args, fi.Args, &uExps)
		if err != nil {
			return nil, err
		}
		exprs.WriteString(c)
		out.WriteString("\n")
	}
	d, e := guardSuiteDeps(suiteDeps, depCheck.String(), exprs.String())
	return &Intermediate{Data: out.String(), DepCheck: d, Expression: e}, nil
}
