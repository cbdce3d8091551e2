// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package clex provides a lexer for C sources that is good enough for
// rewriting identifiers and reading function declarations. It does not
// preprocess: directives are returned as ordinary tokens, tagged with the
// name of the directive they belong to.
package clex

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/scanner"
)

// Error represents a lexing error.
type Error struct {
	Msg string
	scanner.Position
}

// Error converts an Error into a string.
func (e *Error) Error() string {
	return fmt.Sprintf("error at %s: %s", e.Position, e.Msg)
}

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	String
	Char
	Comment
	Punct
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case Number:
		return "Number"
	case String:
		return "String"
	case Char:
		return "Char"
	case Comment:
		return "Comment"
	case Punct:
		return "Punct"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a token returned by Lex.Next().
type Token struct {
	Kind Kind
	// The source text of the token.
	Text string
	// Name of the preprocessor directive the token is part of, e.g.
	// "include" or "define". Empty outside directives. The '#' itself
	// carries the directive name too.
	Directive string
	// Position of the first byte of the token.
	scanner.Position
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Text)
}

// Lex converts a C source into a stream of tokens.
type Lex struct {
	scan scanner.Scanner
	err  *Error

	lastLine  int
	lastText  string
	directive string
	// Set after '#' until the directive name has been seen.
	afterHash bool
}

// New creates a new Lex over the given io.Reader. The name is used in
// positions.
func New(r io.Reader, name string) *Lex {
	l := &Lex{}
	l.scan.Init(r)
	l.scan.Filename = name
	l.scan.Error = func(s *scanner.Scanner, msg string) {
		if l.err == nil {
			l.err = &Error{msg, s.Pos()}
		}
	}
	l.scan.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanChars | scanner.ScanStrings | scanner.ScanComments
	return l
}

// Err returns the first error met so far. Lexing continues after errors
// so that callers rewriting a file can still see every token.
func (l *Lex) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// Next returns the next token. At the end of input it returns a token of
// kind EOF.
func (l *Lex) Next() Token {
	next := l.scan.Scan()
	tok := Token{Text: l.scan.TokenText(), Position: l.scan.Position}

	switch next {
	case scanner.EOF:
		tok.Kind = EOF
		tok.Text = ""
	case scanner.Ident:
		tok.Kind = Ident
	case scanner.Int, scanner.Float:
		tok.Kind = Number
	case scanner.String:
		tok.Kind = String
	case scanner.Char:
		tok.Kind = Char
	case scanner.Comment:
		tok.Kind = Comment
	default:
		tok.Kind = Punct
	}

	// A directive runs to the end of the line, continued by a trailing
	// backslash. Comments do not start a new line of their own.
	newLine := tok.Line != l.lastLine && l.lastText != `\`
	if newLine && tok.Kind != Comment {
		l.directive = ""
		l.afterHash = tok.Text == "#"
	} else if l.afterHash && tok.Kind == Ident {
		l.directive = tok.Text
		l.afterHash = false
	}
	if !l.afterHash {
		tok.Directive = l.directive
	}
	if tok.Kind == Comment {
		// Multi-line comments end on a later line than they start.
		l.lastLine = tok.Line + strings.Count(tok.Text, "\n")
	} else {
		l.lastLine = tok.Line
		l.lastText = tok.Text
	}
	return tok
}

// Tokens lexes a whole source. The '#' of a directive has its Directive
// field filled in as well.
func Tokens(src []byte, name string) ([]Token, error) {
	l := New(bytes.NewReader(src), name)
	var toks []Token
	hashIdx := -1
	for {
		tok := l.Next()
		if tok.Kind == EOF {
			break
		}
		if tok.Text == "#" && tok.Directive == "" {
			hashIdx = len(toks)
		} else if hashIdx >= 0 {
			if tok.Directive != "" {
				toks[hashIdx].Directive = tok.Directive
			}
			hashIdx = -1
		}
		toks = append(toks, tok)
	}
	return toks, l.Err()
}

// Replace rewrites src, replacing the text of every token for which fn
// returns ok. Bytes between tokens are copied unchanged.
func Replace(src []byte, toks []Token, fn func(Token) (string, bool)) []byte {
	var b bytes.Buffer
	b.Grow(len(src))
	last := 0
	for _, tok := range toks {
		repl, ok := fn(tok)
		if !ok {
			continue
		}
		b.Write(src[last:tok.Offset])
		b.WriteString(repl)
		last = tok.End()
	}
	b.Write(src[last:])
	return b.Bytes()
}
