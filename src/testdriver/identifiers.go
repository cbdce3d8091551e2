// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package testdriver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/clex"
	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/runner"
)

// CtagsKinds are the ctags C kinds of the renamed identifiers, as letters
// for --c-kinds and as names in "ctags -x" output.
const CtagsKinds = "defgpstuvx"

var kindNames = map[string]bool{
	"macro":      true,
	"enumerator": true,
	"function":   true,
	"enum":       true,
	"prototype":  true,
	"struct":     true,
	"typedef":    true,
	"union":      true,
	"variable":   true,
	"externvar":  true,
}

// CtagsCmd returns the ctags invocation listing the symbols of the tree.
func (g *Generator) CtagsCmd() runner.Cmd {
	args := []string{"-x", "--language-force=C", "--c-kinds=" + CtagsKinds}
	for _, f := range g.files {
		args = append(args, filepath.FromSlash(f.Dst))
	}
	return runner.Cmd{Name: g.Config.Ctags, Args: args, Dir: g.DstDir}
}

// ParseCtags extracts the names of the wanted kinds from "ctags -x" output:
// one symbol per line, "name kind line file text".
func ParseCtags(out []byte) []string {
	var names []string
	s := bufio.NewScanner(bytes.NewReader(out))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) < 2 || !kindNames[fields[1]] {
			continue
		}
		names = append(names, fields[0])
	}
	return names
}

func (g *Generator) wanted(name string) bool {
	for _, glob := range g.Config.ExcludeIdentifiers {
		if ok, _ := path.Match(glob, name); ok {
			return false
		}
	}
	for _, p := range g.Config.Prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Identifiers returns the sorted identifiers to rename: the symbols that
// ctags finds in the tree with one of the configured prefixes, minus the
// exclusions.
func (g *Generator) Identifiers(ctx context.Context) ([]string, error) {
	var out []byte
	var err error
	if g.Config.TagsFile != "" {
		out, err = os.ReadFile(g.Config.TagsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read tags file: %v", err)
		}
	} else {
		out, err = g.Runner.Output(ctx, g.CtagsCmd())
		if err != nil {
			return nil, fmt.Errorf("failed to list identifiers: %v", err)
		}
	}
	seen := make(map[string]bool)
	var ids []string
	for _, name := range ParseCtags(out) {
		if seen[name] || !g.wanted(name) {
			continue
		}
		seen[name] = true
		ids = append(ids, name)
	}
	sort.Strings(ids)
	return ids, nil
}

// PrefixSource renames the identifier tokens of src found in renames.
// Comments, string and character literals, and <...> header names are
// left alone. A macro operand of #include is renamed like any other use.
func PrefixSource(src []byte, name string, renames map[string]string) []byte {
	toks, err := clex.Tokens(src, name)
	if err != nil {
		// Lexing errors such as multi-character constants do not lose
		// tokens.
		logger.L().Debugf("%v", err)
	}
	inHeaderName := false
	return clex.Replace(src, toks, func(tok clex.Token) (string, bool) {
		if tok.Directive != "include" {
			inHeaderName = false
		} else if tok.Kind == clex.Punct {
			switch tok.Text {
			case "<":
				inHeaderName = true
			case ">":
				inHeaderName = false
			}
		}
		if tok.Kind != clex.Ident || inHeaderName {
			return "", false
		}
		r, ok := renames[tok.Text]
		return r, ok
	})
}

// PrefixIdentifiers renames the given identifiers in every file of the
// tree.
func (g *Generator) PrefixIdentifiers(ctx context.Context, ids []string) error {
	renames := make(map[string]string, len(ids))
	for _, id := range ids {
		renames[id] = g.Rename(id)
	}
	return g.forEachFile(ctx, func(f *File, src []byte) ([]byte, error) {
		return PrefixSource(src, f.Dst, renames), nil
	})
}
