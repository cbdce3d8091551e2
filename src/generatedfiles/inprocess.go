// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package generatedfiles

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/utils"
)

// Source is a generator that renders its files in memory.
type Source interface {
	Name() string
	Files() []string
	RenderFile(file string) ([]byte, error)
	// Stable reports whether the content of file is the same on every run.
	// Unstable files are only checked for presence.
	Stable(file string) bool
}

// InProcess adapts a Source to the Generator interface.
type InProcess struct {
	Source Source
	// Root is the directory the file names are relative to. Empty means the
	// current directory.
	Root string
}

func NewInProcess(src Source, root string) *InProcess {
	return &InProcess{Source: src, Root: root}
}

func (p *InProcess) path(file string) string {
	return filepath.Join(p.Root, filepath.FromSlash(file))
}

func (p *InProcess) Name() string {
	return p.Source.Name()
}

func (p *InProcess) Targets(context.Context) ([]string, error) {
	return p.Source.Files(), nil
}

func (p *InProcess) Outdated(ctx context.Context) ([]string, error) {
	var out []string
	for _, f := range p.Source.Files() {
		if !p.Source.Stable(f) {
			if _, err := os.Stat(p.path(f)); err != nil {
				out = append(out, f)
			}
			continue
		}
		data, err := p.Source.RenderFile(f)
		if err != nil {
			return nil, err
		}
		if !utils.UpToDate(p.path(f), data) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (p *InProcess) Update(ctx context.Context, always bool) error {
	for _, f := range p.Source.Files() {
		if !always && !p.Source.Stable(f) {
			if _, err := os.Stat(p.path(f)); err == nil {
				continue
			}
		}
		data, err := p.Source.RenderFile(f)
		if err != nil {
			return err
		}
		written, err := utils.WriteIfChanged(p.path(f), data, always)
		if err != nil {
			return err
		}
		if written {
			logger.L().Infof("Wrote %s", f)
		}
	}
	return nil
}

// Diff returns unified diffs from the current to the expected content of
// the outdated stable files.
func (p *InProcess) Diff(ctx context.Context) (string, error) {
	var b strings.Builder
	for _, f := range p.Source.Files() {
		if !p.Source.Stable(f) {
			continue
		}
		want, err := p.Source.RenderFile(f)
		if err != nil {
			return "", err
		}
		have, err := os.ReadFile(p.path(f))
		if err != nil && !os.IsNotExist(err) {
			return "", err
		}
		if string(have) == string(want) && err == nil {
			continue
		}
		d, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(have)),
			B:        difflib.SplitLines(string(want)),
			FromFile: "a/" + f,
			ToFile:   "b/" + f,
			Context:  3,
		})
		if err != nil {
			return "", err
		}
		b.WriteString(d)
	}
	return b.String(), nil
}
