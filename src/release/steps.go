// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/runner"
)

// Step is one stage of the release process.
type Step interface {
	Name() string
	// AssertPreconditions checks that the step can run. It does not change
	// any state.
	AssertPreconditions(ctx context.Context) error
	Run(ctx context.Context) error
}

// StepNames lists the steps in the order they run.
var StepNames = []string{"check", "changelog", "commit", "tag", "archive", "checksum"}

// env is shared by all steps of a run.
type env struct {
	opts   Options
	info   *Info
	runner runner.Runner

	submodules []string
	listed     bool
}

func (e *env) gitCmd(where string, args ...string) runner.Cmd {
	if where != "" {
		args = append([]string{"-C", where}, args...)
	}
	return runner.Cmd{Name: "git", Args: args, Dir: e.info.TopDir}
}

// callGit runs git in the top directory, or in the submodule where.
func (e *env) callGit(ctx context.Context, where string, args ...string) error {
	return e.runner.Run(ctx, e.gitCmd(where, args...))
}

func (e *env) readGit(ctx context.Context, where string, args ...string) ([]byte, error) {
	return e.runner.Output(ctx, e.gitCmd(where, args...))
}

// Submodules lists the git submodules recursively, not including the top
// level.
func (e *env) Submodules(ctx context.Context) ([]string, error) {
	if e.listed {
		return e.submodules, nil
	}
	raw, err := e.readGit(ctx, "", "submodule", "--quiet", "foreach", "--recursive", `printf %s\\0 "$displaypath"`)
	if err != nil {
		return nil, fmt.Errorf("failed to list submodules: %v", err)
	}
	e.submodules = nil
	for _, s := range strings.Split(strings.TrimRight(string(raw), "\x00"), "\x00") {
		if s != "" {
			e.submodules = append(e.submodules, s)
		}
	}
	e.listed = true
	return e.submodules, nil
}

// assertClean fails if the top level or a submodule has uncommitted
// changes.
func (e *env) assertClean(ctx context.Context) error {
	subs, err := e.Submodules(ctx)
	if err != nil {
		return err
	}
	for _, where := range append([]string{""}, subs...) {
		if err := e.callGit(ctx, where, "diff", "--quiet"); err != nil {
			if runner.ExitCode(err) == 1 {
				name := where
				if name == "" {
					name = "top level"
				}
				return fmt.Errorf("uncommitted changes in %s", name)
			}
			return err
		}
	}
	return nil
}

func (e *env) tagExists(ctx context.Context) (bool, error) {
	out, err := e.readGit(ctx, "", "tag", "--list", e.info.TagName())
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) != "", nil
}

func (e *env) changeLogPath() string {
	return filepath.Join(e.info.TopDir, changeLogFile)
}

func (e *env) archivePath() string {
	return filepath.Join(e.opts.ArtifactDir, e.info.ArchiveBase()+".tar.bz2")
}

// checkStep verifies that the work trees are clean.
type checkStep struct{ *env }

func (checkStep) Name() string { return "check" }

func (s checkStep) AssertPreconditions(ctx context.Context) error {
	return s.assertClean(ctx)
}

func (checkStep) Run(context.Context) error { return nil }

// changeLogStep sets the version and date of the top ChangeLog entry.
type changeLogStep struct{ *env }

func (changeLogStep) Name() string { return "changelog" }

func (s changeLogStep) AssertPreconditions(ctx context.Context) error {
	if err := s.assertClean(ctx); err != nil {
		return err
	}
	if s.info.OldReleaseDate != PlaceholderDate {
		return fmt.Errorf("the top ChangeLog entry was already released on %s", s.info.OldReleaseDate)
	}
	return nil
}

// FinalizeChangeLog rewrites the first version header line of a ChangeLog
// with the released version and date.
func FinalizeChangeLog(content []byte, human, version, date string) ([]byte, error) {
	head := content
	if len(head) > changeLogHead {
		head = head[:changeLogHead]
	}
	loc := versionHeaderRE.FindIndex(head)
	if loc == nil {
		return nil, fmt.Errorf("could not find version header line near the top of ChangeLog")
	}
	line := fmt.Sprintf("= %s %s branch released %s\n", human, version, date)
	var out bytes.Buffer
	out.Write(content[:loc[0]])
	out.WriteString(line)
	out.Write(content[loc[1]:])
	return out.Bytes(), nil
}

func (s changeLogStep) Run(ctx context.Context) error {
	content, err := os.ReadFile(s.changeLogPath())
	if err != nil {
		return err
	}
	date := s.opts.now().Format("2006-01-02")
	out, err := FinalizeChangeLog(content, s.info.HumanName, s.info.Version, date)
	if err != nil {
		return err
	}
	logger.L().Infof("ChangeLog: %s released %s", s.info.Label(), date)
	return os.WriteFile(s.changeLogPath(), out, 0644)
}

// commitStep commits the ChangeLog update.
type commitStep struct{ *env }

func (commitStep) Name() string { return "commit" }

func (s commitStep) AssertPreconditions(ctx context.Context) error {
	content, err := readHead(s.changeLogPath())
	if err != nil {
		return err
	}
	_, _, date, err := ParseChangeLogHead(content)
	if err != nil {
		return err
	}
	if date == PlaceholderDate {
		return fmt.Errorf("the top ChangeLog entry still has a placeholder date")
	}
	return nil
}

func (s commitStep) Run(ctx context.Context) error {
	return s.callGit(ctx, "", "commit", "-a", "-m", s.info.Label())
}

// tagStep creates the annotated release tag.
type tagStep struct{ *env }

func (tagStep) Name() string { return "tag" }

func (s tagStep) AssertPreconditions(ctx context.Context) error {
	if err := s.assertClean(ctx); err != nil {
		return err
	}
	exists, err := s.tagExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("tag %s already exists", s.info.TagName())
	}
	return nil
}

func (s tagStep) Run(ctx context.Context) error {
	return s.callGit(ctx, "", "tag", "-a", s.info.TagName(), "-m", s.info.Label())
}

// newSteps instantiates all steps in order.
func newSteps(e *env) []Step {
	return []Step{
		checkStep{e},
		changeLogStep{e},
		commitStep{e},
		tagStep{e},
		archiveStep{e},
		checksumStep{e},
	}
}

func knownStep(name string) bool {
	for _, s := range StepNames {
		if s == name {
			return true
		}
	}
	return false
}

// Run gathers the release information and runs the steps from `from` to
// `to` inclusive. Empty bounds mean the first and last step.
func Run(ctx context.Context, r runner.Runner, topDir string, opts Options, from, to string) error {
	for _, name := range []string{from, to} {
		if name != "" && !knownStep(name) {
			return fmt.Errorf("unknown release step %q", name)
		}
	}
	info, err := NewInfo(topDir, opts)
	if err != nil {
		return err
	}
	e := &env{opts: opts, info: info, runner: r}
	reached := from == ""
	for _, step := range newSteps(e) {
		if !reached {
			if step.Name() != from {
				continue
			}
			reached = true
		}
		logger.L().Infof("Release step: %s", step.Name())
		if err := step.AssertPreconditions(ctx); err != nil {
			return fmt.Errorf("%s: precondition failed: %v", step.Name(), err)
		}
		if err := step.Run(ctx); err != nil {
			return fmt.Errorf("%s: %v", step.Name(), err)
		}
		if step.Name() == to {
			break
		}
	}
	return nil
}
