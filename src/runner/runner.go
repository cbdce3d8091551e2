// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package runner executes external tools (ctags, size, git, cmake, ...).
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/execabs"

	"github.com/Mbed-TLS/framework-tools/src/logger"
)

// Cmd describes one invocation of an external program.
type Cmd struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env entries are appended to the environment of the current process.
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	// AllowedCodes lists non-zero exit codes that are not failures.
	AllowedCodes []int
}

func (c Cmd) allowed(code int) bool {
	for _, ok := range c.AllowedCodes {
		if code == ok {
			return true
		}
	}
	return false
}

func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// ExitError reports a program that exited with a non-zero status.
type ExitError struct {
	Cmd    string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Cmd, e.Code)
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

// ExitCode returns the exit status carried by err, or -1 if err does not
// come from a failed program.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return -1
}

// Runner runs external programs.
type Runner interface {
	// Run executes the command. Its standard output goes to cmd.Stdout, or to
	// the process standard output if that is nil.
	Run(ctx context.Context, cmd Cmd) error
	// Output executes the command and returns its standard output.
	Output(ctx context.Context, cmd Cmd) ([]byte, error)
}

// Exec runs programs on the host. The standard error of the programs is
// copied to Stderr, or to the process standard error if that is nil.
type Exec struct {
	Stderr io.Writer
}

func (e Exec) stderr() io.Writer {
	if e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}

func (Exec) command(ctx context.Context, c Cmd) *execabs.Cmd {
	cmd := execabs.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = c.Stdin
	return cmd
}

func (e Exec) Run(ctx context.Context, c Cmd) error {
	cmd := e.command(ctx, c)
	cmd.Stdout = c.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	var stderr bytes.Buffer
	cmd.Stderr = io.MultiWriter(e.stderr(), &stderr)
	logger.L().Debugf("Running %s", c)
	return checkExit(c, cmd.Run(), stderr.String())
}

func (e Exec) Output(ctx context.Context, c Cmd) ([]byte, error) {
	cmd := e.command(ctx, c)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(e.stderr(), &stderr)
	logger.L().Debugf("Running %s", c)
	err := checkExit(c, cmd.Run(), stderr.String())
	return stdout.Bytes(), err
}

func checkExit(c Cmd, err error, stderr string) error {
	if err == nil {
		return nil
	}
	var ee *execabs.ExitError
	if !errors.As(err, &ee) {
		return fmt.Errorf("failed to run %q: %v", c.String(), err)
	}
	code := ee.ExitCode()
	if c.allowed(code) {
		return nil
	}
	return &ExitError{Cmd: c.String(), Code: code, Stderr: stderr}
}
