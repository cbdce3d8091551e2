// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package psawrapper generates C wrappers around the PSA crypto API for
// the test suites. Each wrapper calls the real function and, for buffer
// parameters, poisons the caller's memory for the duration of the call so
// that the library is caught reading or writing caller buffers directly.
package psawrapper

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/clex"
	"github.com/Mbed-TLS/framework-tools/src/logger"
)

const (
	DefaultOutputC = "tests/src/psa_test_wrappers.c"
	DefaultOutputH = "tests/include/test/psa_test_wrappers.h"

	WrapperPrefix = "mbedtls_test_wrap_"

	copyBuffersGuard = "defined(MBEDTLS_PSA_COPY_CALLER_BUFFERS)"
	loggingGuard     = "defined(MBEDTLS_FS_IO) && defined(MBEDTLS_TEST_HOOKS)"
)

// Buffer parameters of these functions are false positives of
// BufferParameters and are not poisoned.
var noCopy = map[string]bool{
	"mbedtls_psa_inject_entropy":          true,
	"psa_crypto_driver_pake_get_password": true,
	"psa_crypto_driver_pake_get_user":     true,
	"psa_crypto_driver_pake_get_peer":     true,
}

// Buffer is a (pointer, size) parameter pair.
type Buffer struct {
	// Index of the pointer argument. The size is the next one.
	Index    int
	IsOutput bool
	Name     string
	SizeName string
}

// BufferParameters detects the buffer arguments of f: a "const uint8_t *"
// or "uint8_t *" argument immediately followed by a size_t argument.
// Arrays never count.
func BufferParameters(f *clex.Function, names []string) []Buffer {
	types := make([]string, len(f.Arguments))
	for i, a := range f.Arguments {
		if a.Suffix == "" {
			types[i] = a.Type
		}
	}
	var bufs []Buffer
	for i := 0; i+1 < len(types); i++ {
		if (types[i] == "const uint8_t *" || types[i] == "uint8_t *") && types[i+1] == "size_t" {
			bufs = append(bufs, Buffer{
				Index:    i,
				IsOutput: !strings.HasPrefix(types[i], "const "),
				Name:     names[i],
				SizeName: names[i+1],
			})
		}
	}
	return bufs
}

// Generator writes the wrapper source and header.
type Generator struct {
	Caller string
	Config Config
	// Stream is a C expression for a FILE * to log calls to. Empty means
	// no logging code.
	Stream  string
	OutputC string
	OutputH string

	functions map[string]*clex.Function
	skip      map[string]bool
	notImpl   map[string]bool
}

// New creates a generator with the default outputs.
func New(caller string, cfg Config, stream string) *Generator {
	g := &Generator{
		Caller:    caller,
		Config:    cfg,
		Stream:    stream,
		OutputC:   DefaultOutputC,
		OutputH:   DefaultOutputH,
		functions: make(map[string]*clex.Function),
		skip:      make(map[string]bool),
		notImpl:   make(map[string]bool),
	}
	for _, f := range cfg.SkipList {
		g.skip[f] = true
	}
	for _, t := range cfg.NotImplemented {
		g.notImpl[t] = true
	}
	return g
}

// HeaderDir returns the directory holding the PSA headers of the project
// rooted at root.
func HeaderDir(root string) string {
	if st, err := os.Stat(filepath.Join(root, "tf-psa-crypto")); err == nil && st.IsDir() {
		return filepath.Join(root, "tf-psa-crypto", "include", "psa")
	}
	return filepath.Join(root, "include", "psa")
}

// ReadHeaders reads the configured input headers of the project at root.
func (g *Generator) ReadHeaders(root string) error {
	dir := HeaderDir(root)
	for _, h := range g.Config.InputHeaders {
		path := filepath.Join(dir, h)
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read header: %v", err)
		}
		if err := g.Read(src, path); err != nil {
			return err
		}
	}
	return nil
}

// Read adds the function declarations of one header.
func (g *Generator) Read(src []byte, name string) error {
	funcs, err := clex.Functions(src, name)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %v", name, err)
	}
	for _, f := range funcs {
		g.functions[f.Name] = f
	}
	logger.L().Debugf("%s: %d function declarations", name, len(funcs))
	return nil
}

// Wrapped returns the functions that get a wrapper, sorted by name.
func (g *Generator) Wrapped() []*clex.Function {
	var out []*clex.Function
	for _, f := range g.functions {
		if f.ReturnType != "psa_status_t" || g.skip[f.Name] {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func wrapperArgumentNames(f *clex.Function) []string {
	names := f.ArgumentNames()
	for i := range names {
		names[i] = fmt.Sprintf("arg%d_%s", i, names[i])
	}
	return names
}

func (g *Generator) writePrologue(w io.Writer, header bool) {
	fmt.Fprintf(w, "/* Automatically generated by %s, do not edit! */\n"+
		"\n"+
		"/* Copyright The Mbed TLS Contributors\n"+
		" * SPDX-License-Identifier: Apache-2.0 OR GPL-2.0-or-later\n"+
		" */\n", g.Caller)
	if header {
		guard := headerGuard(g.OutputH)
		fmt.Fprintf(w, "\n#ifndef %s\n#define %s\n\n"+
			"#ifdef __cplusplus\nextern \"C\" {\n#endif\n", guard, guard)
	}
	fmt.Fprint(w, "\n#include <mbedtls/build_info.h>\n\n")
	if guards := DefineGuards(g.Config.DefineGuards); guards != "" {
		fmt.Fprintf(w, "#if %s\n\n", guards)
	}
	fmt.Fprint(w, "#include <psa/crypto.h>\n\n")
	if g.Stream != "" && !header {
		fmt.Fprint(w, "#include <stdio.h>\n\n")
	}
	fmt.Fprint(w, "#include <test/memory.h>\n"+
		"#include <test/psa_crypto_helpers.h>\n")
	if !header {
		fmt.Fprint(w, "#include <test/psa_test_wrappers.h>\n")
	}
	fmt.Fprint(w, "\n")
}

func (g *Generator) writeEpilogue(w io.Writer, header bool) {
	if guards := DefineGuards(g.Config.DefineGuards); guards != "" {
		fmt.Fprintf(w, "#endif /* %s */\n\n", guards)
	}
	if header {
		fmt.Fprintf(w, "#ifdef __cplusplus\n}\n#endif\n\n#endif /* %s */\n\n", headerGuard(g.OutputH))
	}
	fmt.Fprint(w, "/* End of automatically generated file. */\n")
}

var nonIdent = regexp.MustCompile(`[^0-9A-Za-z]+`)

// headerGuard derives the include guard from the path below include/.
func headerGuard(path string) string {
	path = filepath.ToSlash(path)
	if i := strings.LastIndex(path, "include/"); i >= 0 {
		path = path[i+len("include/"):]
	}
	return strings.ToUpper(nonIdent.ReplaceAllString(path, "_"))
}

func writeSignature(w io.Writer, f *clex.Function, names []string) {
	fmt.Fprintf(w, "%s %s%s(", f.ReturnType, WrapperPrefix, f.Name)
	if len(f.Arguments) == 0 {
		fmt.Fprint(w, "void)")
		return
	}
	for i, a := range f.Arguments {
		sep := ","
		if i == len(f.Arguments)-1 {
			sep = ")"
		}
		typ := a.Type
		if !strings.HasSuffix(typ, "*") {
			typ += " "
		}
		fmt.Fprintf(w, "\n    %s%s%s%s", typ, names[i], a.Suffix, sep)
	}
}

func (g *Generator) writeGuardOpen(w io.Writer, f *clex.Function) string {
	guard := g.Config.FunctionGuards[f.Name]
	if guard != "" {
		fmt.Fprintf(w, "#if %s\n", guard)
	}
	return guard
}

func writeGuardClose(w io.Writer, guard string) {
	if guard != "" {
		fmt.Fprintf(w, "#endif /* %s */\n", guard)
	}
}

func writePoison(w io.Writer, bufs []Buffer, poison bool) {
	if len(bufs) == 0 {
		return
	}
	macro := "MBEDTLS_TEST_MEMORY_UNPOISON"
	if poison {
		macro = "MBEDTLS_TEST_MEMORY_POISON"
	}
	fmt.Fprintf(w, "#if %s\n", copyBuffersGuard)
	for _, b := range bufs {
		fmt.Fprintf(w, "    %s(%s, %s);\n", macro, b.Name, b.SizeName)
	}
	fmt.Fprintf(w, "#endif /* %s */\n", copyBuffersGuard)
}

func (g *Generator) writeFunction(w io.Writer, f *clex.Function) {
	names := wrapperArgumentNames(f)
	var bufs []Buffer
	if !noCopy[f.Name] {
		bufs = BufferParameters(f, names)
	}

	fmt.Fprintf(w, "/* Wrapper for %s */\n", f.Name)
	guard := g.writeGuardOpen(w, f)
	writeSignature(w, f, names)
	fmt.Fprint(w, "\n{\n")
	writePoison(w, bufs, true)
	fmt.Fprintf(w, "    psa_status_t status = (%s)(%s);\n", f.Name, strings.Join(names, ", "))
	writePoison(w, bufs, false)
	if g.Stream != "" {
		g.writeLogging(w, f, names)
	}
	fmt.Fprint(w, "    return status;\n}\n")
	writeGuardClose(w, guard)
	fmt.Fprint(w, "\n")
}

func (g *Generator) writeDeclaration(w io.Writer, f *clex.Function) {
	names := wrapperArgumentNames(f)
	guard := g.writeGuardOpen(w, f)
	writeSignature(w, f, names)
	fmt.Fprint(w, ";\n")
	params := strings.Join(f.ArgumentNames(), ", ")
	fmt.Fprintf(w, "#define %s(%s) \\\n    %s%s(%s)\n", f.Name, params, WrapperPrefix, f.Name, params)
	writeGuardClose(w, guard)
	fmt.Fprint(w, "\n")
}

// WriteC writes the wrapper definitions.
func (g *Generator) WriteC(w io.Writer) {
	g.writePrologue(w, false)
	for _, f := range g.Wrapped() {
		g.writeFunction(w, f)
	}
	g.writeEpilogue(w, false)
}

// WriteH writes the wrapper declarations and the macros that redirect
// calls to the wrappers.
func (g *Generator) WriteH(w io.Writer) {
	g.writePrologue(w, true)
	for _, f := range g.Wrapped() {
		g.writeDeclaration(w, f)
	}
	g.writeEpilogue(w, true)
}

func (g *Generator) Name() string {
	return g.Caller
}

// Files lists the enabled outputs.
func (g *Generator) Files() []string {
	var files []string
	for _, f := range []string{g.OutputC, g.OutputH} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// RenderFile renders one output, reading the headers of the project in
// the current directory on first use.
func (g *Generator) RenderFile(file string) ([]byte, error) {
	if len(g.functions) == 0 {
		if err := g.ReadHeaders("."); err != nil {
			return nil, err
		}
	}
	var b strings.Builder
	switch file {
	case g.OutputC:
		g.WriteC(&b)
	case g.OutputH:
		g.WriteH(&b)
	default:
		return nil, fmt.Errorf("%s is not generated by %s", file, g.Caller)
	}
	return []byte(b.String()), nil
}

func (g *Generator) Stable(string) bool {
	return true
}
