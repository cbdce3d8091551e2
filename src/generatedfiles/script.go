// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package generatedfiles

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/runner"
)

// ScriptGenerator is an external program that writes its files at their
// default location when run without arguments.
type ScriptGenerator struct {
	// Script is the path of the program relative to Root.
	Script string
	// Files are the targets. Nil means asking the script with --list.
	Files []string
	// ListOutdated means the script supports --list-outdated. Otherwise
	// checking runs the script and restores the previous files afterwards.
	ListOutdated bool
	Root         string
	Runner       runner.Runner

	once    sync.Once
	targets []string
	listErr error
}

func (s *ScriptGenerator) Name() string {
	return strings.TrimSuffix(filepath.Base(s.Script), filepath.Ext(s.Script))
}

func (s *ScriptGenerator) cmd(args ...string) runner.Cmd {
	return runner.Cmd{Name: "./" + filepath.ToSlash(s.Script), Args: args, Dir: s.Root}
}

func lines(out []byte) []string {
	var res []string
	for _, l := range strings.Split(string(out), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			res = append(res, filepath.ToSlash(l))
		}
	}
	return res
}

func (s *ScriptGenerator) Targets(ctx context.Context) ([]string, error) {
	if s.Files != nil {
		return s.Files, nil
	}
	s.once.Do(func() {
		out, err := s.Runner.Output(ctx, s.cmd("--list"))
		if err != nil {
			s.listErr = err
			return
		}
		s.targets = lines(out)
	})
	return s.targets, s.listErr
}

type snapshot struct {
	data   []byte
	exists bool
}

// liveTree serializes checks that run a script in the working tree. Scripts
// may share inputs and intermediate files, and a restore must not race with
// another script reading them.
var liveTree sync.Mutex

func (s *ScriptGenerator) path(file string) string {
	return filepath.Join(s.Root, filepath.FromSlash(file))
}

func (s *ScriptGenerator) Outdated(ctx context.Context) ([]string, error) {
	if s.ListOutdated {
		// Some scripts exit with 1 when they report outdated files.
		c := s.cmd("--list-outdated")
		c.AllowedCodes = []int{1}
		out, err := s.Runner.Output(ctx, c)
		if err != nil {
			return nil, err
		}
		return lines(out), nil
	}

	targets, err := s.Targets(ctx)
	if err != nil {
		return nil, err
	}
	liveTree.Lock()
	defer liveTree.Unlock()
	before := make(map[string]snapshot)
	for _, t := range targets {
		data, err := os.ReadFile(s.path(t))
		switch {
		case err == nil:
			before[t] = snapshot{data: data, exists: true}
		case os.IsNotExist(err):
			before[t] = snapshot{}
		default:
			return nil, err
		}
	}
	runErr := s.Runner.Run(ctx, s.cmd())

	var outdated []string
	for _, t := range targets {
		old := before[t]
		data, err := os.ReadFile(s.path(t))
		if err == nil && old.exists && bytes.Equal(data, old.data) {
			continue
		}
		outdated = append(outdated, t)
		if restoreErr := restore(s.path(t), old); restoreErr != nil {
			logger.L().Errorf("failed to restore %s: %v", t, restoreErr)
		}
	}
	if runErr != nil {
		return nil, runErr
	}
	return outdated, nil
}

func restore(name string, old snapshot) error {
	if !old.exists {
		err := os.Remove(name)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.WriteFile(name, old.data, 0644)
}

// Update runs the script. Without always, it is skipped when a check finds
// nothing outdated.
func (s *ScriptGenerator) Update(ctx context.Context, always bool) error {
	if !always && s.ListOutdated {
		outdated, err := s.Outdated(ctx)
		if err != nil {
			return err
		}
		if len(outdated) == 0 {
			return nil
		}
	}
	logger.L().Infof("Running %s", s.Script)
	if err := s.Runner.Run(ctx, s.cmd()); err != nil {
		return fmt.Errorf("failed to run %s: %v", s.Script, err)
	}
	return nil
}
