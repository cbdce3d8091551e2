// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// FakeResult is the scripted outcome of a fake invocation.
type FakeResult struct {
	Stdout []byte
	Err    error
	// Hook, if set, is called with the command before the result is returned.
	Hook func(Cmd) error
}

// Fake is a Runner for tests. Results are looked up by the command line,
// first exactly and then by program name.
type Fake struct {
	mu      sync.Mutex
	Results map[string]FakeResult
	Calls   []Cmd
}

func NewFake() *Fake {
	return &Fake{Results: make(map[string]FakeResult)}
}

// On registers a result for a program name or a full command line.
func (f *Fake) On(key string, r FakeResult) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Results[key] = r
	return f
}

func (f *Fake) lookup(c Cmd) (FakeResult, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	r, ok := f.Results[c.String()]
	if !ok {
		r, ok = f.Results[c.Name]
	}
	f.mu.Unlock()
	if !ok {
		return FakeResult{}, fmt.Errorf("fake runner: unexpected command %q", c.String())
	}
	if r.Hook != nil {
		if err := r.Hook(c); err != nil {
			return FakeResult{}, err
		}
	}
	return r, nil
}

// result applies AllowedCodes to a scripted error, like Exec does.
func (r FakeResult) result(c Cmd) error {
	var ee *ExitError
	if errors.As(r.Err, &ee) && c.allowed(ee.Code) {
		return nil
	}
	return r.Err
}

func (f *Fake) Run(ctx context.Context, c Cmd) error {
	r, err := f.lookup(c)
	if err != nil {
		return err
	}
	if c.Stdout != nil && len(r.Stdout) > 0 {
		if _, err := c.Stdout.Write(r.Stdout); err != nil {
			return err
		}
	}
	return r.result(c)
}

func (f *Fake) Output(ctx context.Context, c Cmd) ([]byte, error) {
	r, err := f.lookup(c)
	if err != nil {
		return nil, err
	}
	return r.Stdout, r.result(c)
}

// CommandLines returns the recorded calls as strings.
func (f *Fake) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var lines []string
	for _, c := range f.Calls {
		lines = append(lines, strings.TrimSpace(c.String()))
	}
	return lines
}
