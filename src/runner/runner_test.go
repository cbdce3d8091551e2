// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestExecOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	ctx := context.Background()
	tests := []struct {
		name     string
		cmd      Cmd
		want     string
		wantCode int
	}{
		{
			name: "Success",
			cmd:  Cmd{Name: "sh", Args: []string{"-c", "echo hello"}},
			want: "hello\n",
		},
		{
			name:     "ExitCode",
			cmd:      Cmd{Name: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}},
			wantCode: 3,
		},
		{
			name: "AllowedCode",
			cmd:  Cmd{Name: "sh", Args: []string{"-c", "exit 1"}, AllowedCodes: []int{1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Exec{}.Output(ctx, tt.cmd)
			if tt.wantCode != 0 {
				if got := ExitCode(err); got != tt.wantCode {
					t.Fatalf("ExitCode() = %d, want %d (err = %v)", got, tt.wantCode, err)
				}
				if !strings.Contains(err.Error(), "oops") {
					t.Errorf("error %q does not carry stderr", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Output() error = %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("Output() = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestExecOutputForwardsStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	var diag bytes.Buffer
	out, err := Exec{Stderr: &diag}.Output(context.Background(),
		Cmd{Name: "sh", Args: []string{"-c", "echo warning >&2; echo out"}})
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if string(out) != "out\n" {
		t.Errorf("Output() = %q, want %q", out, "out\n")
	}
	if diag.String() != "warning\n" {
		t.Errorf("forwarded stderr = %q, want %q", diag.String(), "warning\n")
	}
}

func TestExitCodeNotExitError(t *testing.T) {
	if got := ExitCode(errors.New("x")); got != -1 {
		t.Errorf("ExitCode() = %d, want -1", got)
	}
}

func TestFake(t *testing.T) {
	f := NewFake().
		On("size", FakeResult{Stdout: []byte("sizes")}).
		On("git diff --quiet", FakeResult{Err: &ExitError{Cmd: "git diff --quiet", Code: 1}})
	ctx := context.Background()

	out, err := f.Output(ctx, Cmd{Name: "size", Args: []string{"-t", "lib.a"}})
	if err != nil || string(out) != "sizes" {
		t.Errorf("Output() = %q, %v", out, err)
	}
	var buf bytes.Buffer
	if err := f.Run(ctx, Cmd{Name: "size", Stdout: &buf}); err != nil || buf.String() != "sizes" {
		t.Errorf("Run() wrote %q, %v", buf.String(), err)
	}
	if code := ExitCode(f.Run(ctx, Cmd{Name: "git", Args: []string{"diff", "--quiet"}})); code != 1 {
		t.Errorf("scripted exit code = %d, want 1", code)
	}
	if err := f.Run(ctx, Cmd{Name: "git", Args: []string{"diff", "--quiet"}, AllowedCodes: []int{1}}); err != nil {
		t.Errorf("allowed exit code returned %v", err)
	}
	if _, err := f.Output(ctx, Cmd{Name: "cmake"}); err == nil {
		t.Errorf("unexpected command succeeded")
	}
	if got := len(f.CommandLines()); got != 5 {
		t.Errorf("recorded %d calls, want 5", got)
	}
}
