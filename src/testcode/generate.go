// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package testcode

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/utils"
)

// GeneratorName appears in the generated C file in place of
// {generator_script}.
const GeneratorName = "generate_test_code"

// Options names the inputs and the output directory of a test suite.
type Options struct {
	FunctionsFile string
	DataFile      string
	TemplateFile  string
	PlatformFile  string
	HelpersFile   string
	SuitesDir     string
	OutDir        string
}

// Outputs returns the paths of the generated C file and intermediate data
// file: both are named after the .data file.
func (o Options) Outputs() (cFile, dataFile string) {
	base := filepath.Base(o.DataFile)
	return filepath.Join(o.OutDir, strings.TrimSuffix(base, filepath.Ext(base))+".c"),
		filepath.Join(o.OutDir, base)
}

// expand substitutes {key} placeholders in one template line. {{ and }}
// stand for literal braces.
func expand(line string, snippets map[string]string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '{' && i+1 < len(line) && line[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(line) && line[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(line[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("single '{' encountered in %q", line)
			}
			key := line[i+1 : i+end]
			v, ok := snippets[key]
			if !ok {
				return "", fmt.Errorf("unknown template key %q", key)
			}
			b.WriteString(v)
			i += end
		case c == '}':
			return "", fmt.Errorf("single '}' encountered in %q", line)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// Expand fills the template line by line. {line_no} is the number of the
// line after the current one, for #line directives.
func Expand(template string, snippets map[string]string) (string, error) {
	s := make(map[string]string, len(snippets)+1)
	for k, v := range snippets {
		s[k] = v
	}
	var out strings.Builder
	lines := strings.SplitAfter(template, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		s["line_no"] = strconv.Itoa(i + 2)
		code, err := expand(line, s)
		if err != nil {
			return "", fmt.Errorf("template line %d: %v", i+1, err)
		}
		out.WriteString(code)
	}
	return out.String(), nil
}

func readInput(kind, name string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("%s [%s] not found: %v", kind, name, err)
	}
	return string(data), nil
}

// Generate writes the C file and the intermediate data file of a test
// suite.
func Generate(opts Options) error {
	if st, err := os.Stat(opts.SuitesDir); err != nil || !st.IsDir() {
		return fmt.Errorf("suites dir [%s] not found", opts.SuitesDir)
	}
	funcs, err := readInput("functions file", opts.FunctionsFile)
	if err != nil {
		return err
	}
	data, err := readInput("data file", opts.DataFile)
	if err != nil {
		return err
	}
	template, err := readInput("template file", opts.TemplateFile)
	if err != nil {
		return err
	}
	platform, err := readInput("platform file", opts.PlatformFile)
	if err != nil {
		return err
	}
	helpers, err := readInput("helper file", opts.HelpersFile)
	if err != nil {
		return err
	}
	cFile, outData := opts.Outputs()

	f, err := ParseFunctions(strings.NewReader(funcs), opts.FunctionsFile)
	if err != nil {
		return err
	}
	cases, err := ParseTestData(strings.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %v", opts.DataFile, err)
	}
	inter, err := GenFromTestData(cases, f.Info, f.SuiteDeps)
	if err != nil {
		return fmt.Errorf("%s: %v", opts.DataFile, err)
	}

	code, err := Expand(template, map[string]string{
		"generator_script":        GeneratorName,
		"test_common_helper_file": opts.HelpersFile,
		"test_common_helpers":     helpers,
		"test_platform_file":      opts.PlatformFile,
		"platform_code":           strings.ReplaceAll(platform, "DATA_FILE", strings.ReplaceAll(outData, `\`, `\\`)),
		"functions_code":          f.Code,
		"dispatch_code":           f.Dispatch,
		"dep_check_code":          inter.DepCheck,
		"expression_code":         inter.Expression,
		"test_file":               cFile,
		"test_main_file":          opts.TemplateFile,
		"test_case_file":          opts.FunctionsFile,
		"test_case_data_file":     opts.DataFile,
	})
	if err != nil {
		return fmt.Errorf("%s: %v", opts.TemplateFile, err)
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return err
	}
	for name, content := range map[string]string{outData: inter.Data, cFile: code} {
		if err := utils.WriteFile(name, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %v", name, err)
		}
	}
	logger.L().Debugf("Generated %s with %d test cases", cFile, len(cases))
	return nil
}
