// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package clex

import (
	"fmt"
	"strings"
)

// Argument is one parameter of a function declaration.
type Argument struct {
	// Type in normalized form, e.g. "const uint8_t *".
	Type string
	// Name, or "" for an unnamed parameter.
	Name string
	// Array suffix such as "[16]", or "".
	Suffix string
}

// Function is a function declaration.
type Function struct {
	Name       string
	ReturnType string
	Arguments  []Argument
	// Where the declaration was found.
	Filename string
	Line     int
}

// ArgumentNames returns the parameter names, inventing argN for unnamed
// parameters.
func (f *Function) ArgumentNames() []string {
	names := make([]string, len(f.Arguments))
	for i, a := range f.Arguments {
		names[i] = a.Name
		if names[i] == "" {
			names[i] = fmt.Sprintf("arg%d", i)
		}
	}
	return names
}

var storageClasses = map[string]bool{
	"extern": true,
	"static": true,
	"inline": true,
}

// Functions returns the function prototypes declared in a C header.
// Preprocessor directives are ignored, so declarations in every branch of
// a conditional are returned. Function definitions, typedefs and
// declarations of function pointers are skipped.
func Functions(src []byte, name string) ([]*Function, error) {
	toks, err := Tokens(src, name)
	if err != nil {
		return nil, err
	}
	var (
		funcs []*Function
		stmt  []Token
		depth int
		// Index in stmt of the '{' that started the current block.
		open int
	)
	for _, tok := range toks {
		if tok.Kind == Comment || tok.Directive != "" {
			continue
		}
		switch tok.Text {
		case "{":
			if depth == 0 {
				if len(stmt) >= 2 && stmt[0].Text == "extern" && stmt[1].Kind == String {
					// extern "C" { ... }: the braces do not nest.
					stmt = nil
					continue
				}
				open = len(stmt)
			}
			depth++
		case "}":
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && open > 0 && stmt[open-1].Text == ")" {
				// Function definition.
				stmt = nil
				continue
			}
		case ";":
			if depth == 0 {
				if f := parseFunction(stmt); f != nil {
					funcs = append(funcs, f)
				}
				stmt = nil
				continue
			}
		}
		stmt = append(stmt, tok)
	}
	return funcs, nil
}

func parseFunction(stmt []Token) *Function {
	n := len(stmt)
	if n < 4 || stmt[n-1].Text != ")" || stmt[0].Text == "typedef" {
		return nil
	}
	// Find the '(' matching the final ')'.
	depth := 0
	lparen := -1
	for i := n - 1; i >= 0; i-- {
		switch stmt[i].Text {
		case ")":
			depth++
		case "(":
			depth--
		case "{", "}", "=":
			return nil
		}
		if depth == 0 {
			lparen = i
			break
		}
	}
	if lparen < 2 || stmt[lparen-1].Kind != Ident {
		return nil
	}
	var ret []Token
	for _, tok := range stmt[:lparen-1] {
		if tok.Text == "(" || tok.Text == ")" {
			return nil
		}
		if !storageClasses[tok.Text] {
			ret = append(ret, tok)
		}
	}
	if len(ret) == 0 {
		return nil
	}
	nameTok := stmt[lparen-1]
	f := &Function{
		Name:       nameTok.Text,
		ReturnType: typeString(ret),
		Filename:   nameTok.Filename,
		Line:       nameTok.Line,
	}
	args := stmt[lparen+1 : n-1]
	if len(args) == 1 && args[0].Text == "void" {
		return f
	}
	for _, a := range splitArguments(args) {
		f.Arguments = append(f.Arguments, parseArgument(a))
	}
	return f
}

func splitArguments(toks []Token) [][]Token {
	var (
		out   [][]Token
		cur   []Token
		depth int
	)
	for _, tok := range toks {
		switch tok.Text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case ",":
			if depth == 0 {
				out = append(out, cur)
				cur = nil
				continue
			}
		}
		cur = append(cur, tok)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func parseArgument(toks []Token) Argument {
	var a Argument
	for i, tok := range toks {
		if tok.Text == "[" {
			for _, t := range toks[i:] {
				a.Suffix += t.Text
			}
			toks = toks[:i]
			break
		}
	}
	// The name is the last identifier unless that identifier is the only
	// one left to form the type.
	if n := len(toks); n >= 2 && toks[n-1].Kind == Ident {
		hasType := false
		for _, t := range toks[:n-1] {
			if t.Kind == Ident && t.Text != "const" && t.Text != "volatile" {
				hasType = true
			}
		}
		if hasType {
			a.Name = toks[n-1].Text
			toks = toks[:n-1]
		}
	}
	a.Type = typeString(toks)
	return a
}

// typeString renders a type as "const uint8_t *", "char **".
func typeString(toks []Token) string {
	var b strings.Builder
	for i, tok := range toks {
		if i > 0 && !(tok.Text == "*" && toks[i-1].Text == "*") {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}
