// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Mbed-TLS/framework-tools/src/runner"
)

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       int
		wantOutput bool
	}{
		{name: "Success"},
		{name: "Outdated", err: fmt.Errorf("bignum: %w", ErrOutdated), want: 1},
		{name: "CheckFailed", err: ErrCheckFailed, want: 1},
		{name: "ChildExit", err: &runner.ExitError{Cmd: "cmake", Code: 2}, want: 2, wantOutput: true},
		{name: "Other", err: errors.New("boom"), want: 1, wantOutput: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := ExitStatus(tt.err, &buf); got != tt.want {
				t.Errorf("ExitStatus() = %d, want %d", got, tt.want)
			}
			if (buf.Len() > 0) != tt.wantOutput {
				t.Errorf("ExitStatus() output = %q", buf.String())
			}
		})
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("MBEDTLS_DEV_DIRECTORY", "/tmp/suites")
	a := NewApp("tool", "test tool")
	a.Flags().String("directory", "tests/suites", "output directory")
	var got string
	a.Root.RunE = func(cmd *cobra.Command, args []string) error {
		got = a.Viper.GetString("directory")
		return nil
	}
	var stderr bytes.Buffer
	if code := a.Execute(nil, &stderr); code != 0 {
		t.Fatalf("Execute() = %d: %s", code, stderr.String())
	}
	if got != "/tmp/suites" {
		t.Errorf("directory = %q, want environment value", got)
	}
}
