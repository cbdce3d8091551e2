// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package testcode generates the C source of a test suite from its
// .function file, its .data file and the shared templates. The .data file
// is also rewritten into the intermediate form read by the test program:
// dependencies and expressions become indices into generated switch
// statements.
package testcode

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	beginHeaderRE  = regexp.MustCompile(`/\*\s*BEGIN_HEADER\s*\*/`)
	endHeaderRE    = regexp.MustCompile(`/\*\s*END_HEADER\s*\*/`)
	beginHelpersRE = regexp.MustCompile(`/\*\s*BEGIN_SUITE_HELPERS\s*\*/`)
	endHelpersRE   = regexp.MustCompile(`/\*\s*END_SUITE_HELPERS\s*\*/`)
	beginDepRE     = regexp.MustCompile(`BEGIN_DEPENDENCIES`)
	endDepRE       = regexp.MustCompile(`END_DEPENDENCIES`)
	beginCaseRE    = regexp.MustCompile(`/\*\s*BEGIN_CASE\s*(.*?)\s*\*/`)
	endCaseRE      = regexp.MustCompile(`/\*\s*END_CASE\s*\*/`)

	dependsOnRE  = regexp.MustCompile(`depends_on:(.*)`)
	nameRE       = regexp.MustCompile(`^.*?\s+(\w+)\s*\(`)
	voidFuncRE   = regexp.MustCompile(`(?i)\s*void\s+(\w+)\s*\(`)
	intArgRE     = regexp.MustCompile(`int\s+.*`)
	charArgRE    = regexp.MustCompile(`char\s*\*\s*.*`)
	hexArgRE     = regexp.MustCompile(`HexParam_t\s*\*\s*.*`)
	closeParenRE = regexp.MustCompile(`\)`)
)

// Argument types of test functions, as written to the intermediate data
// file.
const (
	ArgInt  = "int"
	ArgChar = "char*"
	ArgHex  = "hex"
	argExp  = "exp"
)

// lineReader reads a .function file line by line, keeping the line
// terminators and the number of the last line read.
type lineReader struct {
	r      *bufio.Reader
	name   string
	lineNo int
}

func newLineReader(r io.Reader, name string) *lineReader {
	return &lineReader{r: bufio.NewReader(r), name: name}
}

// next returns the next line, or ok == false at the end of the file.
func (l *lineReader) next() (line string, ok bool, err error) {
	line, err = l.r.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", false, nil
		}
		err = nil
	}
	if err != nil {
		return "", false, err
	}
	l.lineNo++
	return line, true, nil
}

func (l *lineReader) lineDirective() string {
	return fmt.Sprintf("#line %d \"%s\"\n", l.lineNo+1, l.name)
}

// splitDep separates the negation of a dependency from its macro.
func splitDep(dep string) (string, string) {
	if strings.HasPrefix(dep, "!") {
		return "!", dep[1:]
	}
	return "", dep
}

// genDeps returns nested #if lines for deps and the matching #endif lines.
func genDeps(deps []string) (string, string) {
	var start, end strings.Builder
	for _, d := range deps {
		not, macro := splitDep(d)
		fmt.Fprintf(&start, "#if %sdefined(%s)\n", not, macro)
	}
	for i := len(deps) - 1; i >= 0; i-- {
		fmt.Fprintf(&end, "#endif /* %s */\n", deps[i])
	}
	return start.String(), end.String()
}

// genDepsOneLine returns a single #if requiring all of deps, or "" if
// there are none.
func genDepsOneLine(deps []string) string {
	if len(deps) == 0 {
		return ""
	}
	conds := make([]string, len(deps))
	for i, d := range deps {
		not, macro := splitDep(d)
		conds[i] = not + "defined(" + macro + ")"
	}
	return "#if " + strings.Join(conds, " && ")
}

// genFunctionWrapper returns the function that unpacks params and calls
// the test function.
func genFunctionWrapper(name, locals string, dispatch []string) string {
	unused := ""
	if len(dispatch) == 0 {
		unused = "(void)params;"
	}
	return fmt.Sprintf(`
void %s_wrapper( void ** params )
{
    %s
%s
    %s( %s );
}
`, name, unused, locals, name, strings.Join(dispatch, ", "))
}

// genDispatch returns the entry of name in the test function table, NULL
// when deps are not met.
func genDispatch(name string, deps []string) string {
	if len(deps) == 0 {
		return fmt.Sprintf("\n    %s_wrapper,\n", name)
	}
	return fmt.Sprintf("\n%s\n    %s_wrapper,\n#else\n    NULL,\n#endif\n", genDepsOneLine(deps), name)
}

// parseUntil collects lines up to the one matching end, preceded by a
// #line directive.
func parseUntil(l *lineReader, end *regexp.Regexp) (string, error) {
	var b strings.Builder
	b.WriteString(l.lineDirective())
	for {
		line, ok, err := l.next()
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("file: %s - end pattern [%s] not found", l.name, end)
		}
		if end.MatchString(line) {
			return b.String(), nil
		}
		b.WriteString(line)
	}
}

func splitDeps(s string) []string {
	var deps []string
	for _, d := range strings.Split(s, ":") {
		deps = append(deps, strings.TrimSpace(d))
	}
	return deps
}

// parseSuiteDeps reads a BEGIN_DEPENDENCIES block.
func parseSuiteDeps(l *lineReader) ([]string, error) {
	var deps []string
	for {
		line, ok, err := l.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("file: %s - end dependency pattern [%s] not found", l.name, endDepRE)
		}
		if m := dependsOnRE.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			deps = append(deps, splitDeps(m[1])...)
		}
		if endDepRE.MatchString(line) {
			return deps, nil
		}
	}
}

// parseFunctionDeps returns the dependencies on a BEGIN_CASE line.
func parseFunctionDeps(line string) []string {
	m := beginCaseRE.FindStringSubmatch(line)
	if m == nil || m[1] == "" {
		return nil
	}
	if d := dependsOnRE.FindStringSubmatch(m[1]); d != nil {
		return splitDeps(strings.TrimSpace(d[1]))
	}
	return nil
}

// Signature is a parsed test function declaration.
type Signature struct {
	Name string
	// Args are the types of the parameters, each one of ArgInt, ArgChar
	// and ArgHex.
	Args []string
	// Locals declares the variables the wrapper passes for hex
	// parameters.
	Locals string
	// Dispatch are the wrapper expressions passed for each parameter.
	Dispatch []string
}

// ParseSignature parses the declaration of a test function. Test functions
// return void and take int, char * or HexParam_t * parameters. A hex
// parameter uses two slots of the parameter array: the data and its
// length.
func ParseSignature(line string) (*Signature, error) {
	loc := voidFuncRE.FindStringSubmatchIndex(line)
	if loc == nil {
		return nil, fmt.Errorf("test function should return 'void'\n%s", line)
	}
	sig := &Signature{Name: line[loc[2]:loc[3]]}
	rest := line[loc[1]:]
	if i := strings.Index(rest, ")"); i >= 0 {
		rest = rest[:i]
	}
	idx := 0
	for _, arg := range strings.Split(rest, ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		switch {
		case intArgRE.MatchString(arg):
			sig.Args = append(sig.Args, ArgInt)
			sig.Dispatch = append(sig.Dispatch, fmt.Sprintf("*( (int *) params[%d] )", idx))
		case charArgRE.MatchString(arg):
			sig.Args = append(sig.Args, ArgChar)
			sig.Dispatch = append(sig.Dispatch, fmt.Sprintf("(char *) params[%d]", idx))
		case hexArgRE.MatchString(arg):
			sig.Args = append(sig.Args, ArgHex)
			sig.Locals += fmt.Sprintf("    HexParam_t hex%d = {(uint8_t *) params[%d], *( (uint32_t *) params[%d] )};\n",
				idx, idx, idx+1)
			sig.Dispatch = append(sig.Dispatch, fmt.Sprintf("&hex%d", idx))
			idx++
		default:
			return nil, fmt.Errorf("test function arguments can only be 'int', 'char *' or 'HexParam_t'\n%s", line)
		}
		idx++
	}
	return sig, nil
}

// parsedFunction is one test function with its generated code.
type parsedFunction struct {
	name     string
	args     []string
	code     string
	dispatch string
}

// parseFunctionCode reads a test function up to END_CASE. The function is
// renamed with a test_ prefix, given an exit label if it has none, and
// followed by its wrapper.
func parseFunctionCode(l *lineReader, deps, suiteDeps []string) (*parsedFunction, error) {
	var code strings.Builder
	code.WriteString(l.lineDirective())
	var sig *Signature
	for sig == nil {
		line, ok, err := l.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("file: %s - test functions not found", l.name)
		}
		if !nameRE.MatchString(line) {
			continue
		}
		for !closeParenRE.MatchString(line) {
			more, ok, err := l.next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			line += more
		}
		if sig, err = ParseSignature(line); err != nil {
			return nil, err
		}
		code.WriteString(strings.ReplaceAll(line, sig.Name, "test_"+sig.Name))
	}
	name := "test_" + sig.Name

	for {
		line, ok, err := l.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("file: %s - end case pattern [%s] not found", l.name, endCaseRE)
		}
		if endCaseRE.MatchString(line) {
			break
		}
		code.WriteString(line)
	}

	body := code.String()
	if !strings.Contains(body, "exit:") {
		if i := strings.LastIndex(body, "}"); i >= 0 {
			body = body[:i] + "exit:\n    ;;\n}" + body[i+1:]
		}
	}
	body += genFunctionWrapper(name, sig.Locals, sig.Dispatch)
	ifdef, endif := genDeps(deps)
	return &parsedFunction{
		name:     name,
		args:     sig.Args,
		code:     ifdef + body + endif,
		dispatch: genDispatch(name, append(append([]string(nil), suiteDeps...), deps...)),
	}, nil
}

// FuncInfo identifies a test function in the dispatch table.
type FuncInfo struct {
	ID   int
	Args []string
}

// Functions is the generated code of a .function file.
type Functions struct {
	SuiteDeps []string
	// Dispatch is the body of the test function table.
	Dispatch string
	// Code is the suite headers, helpers and test functions, guarded by
	// the suite dependencies.
	Code string
	// Info maps the test_ prefixed function names to their table entry.
	Info map[string]FuncInfo
}

// ParseFunctions reads a .function file. name is used in #line
// directives and messages.
func ParseFunctions(r io.Reader, name string) (*Functions, error) {
	l := newLineReader(r, name)
	f := &Functions{Info: make(map[string]FuncInfo)}
	var headers, helpers, functions, dispatch strings.Builder
	for {
		line, ok, err := l.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch {
		case beginHeaderRE.MatchString(line):
			h, err := parseUntil(l, endHeaderRE)
			if err != nil {
				return nil, err
			}
			headers.WriteString(h)
		case beginHelpersRE.MatchString(line):
			h, err := parseUntil(l, endHelpersRE)
			if err != nil {
				return nil, err
			}
			helpers.WriteString(h)
		case beginDepRE.MatchString(line):
			deps, err := parseSuiteDeps(l)
			if err != nil {
				return nil, err
			}
			f.SuiteDeps = append(f.SuiteDeps, deps...)
		case beginCaseRE.MatchString(line):
			fn, err := parseFunctionCode(l, parseFunctionDeps(line), f.SuiteDeps)
			if err != nil {
				return nil, err
			}
			if _, ok := f.Info[fn.name]; ok {
				return nil, fmt.Errorf("file: %s - function %s re-declared at line %d", name, fn.name, l.lineNo)
			}
			id := len(f.Info)
			f.Info[fn.name] = FuncInfo{ID: id, Args: fn.args}
			functions.WriteString(fn.code)
			fmt.Fprintf(&dispatch, "/* Function Id: %d */\n%s", id, fn.dispatch)
		}
	}
	ifdef, endif := genDeps(f.SuiteDeps)
	f.Code = ifdef + headers.String() + helpers.String() + functions.String() + endif
	f.Dispatch = dispatch.String()
	return f, nil
}
