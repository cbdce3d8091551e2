// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package generatedfiles checks and regenerates the configuration
// independent generated files of a source tree. Each file belongs to one
// generator, which is either an external script or a generator built into
// these tools.
package generatedfiles

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Generator produces a set of files, named by their path relative to the
// project root.
type Generator interface {
	Name() string
	Targets(ctx context.Context) ([]string, error)
	// Outdated returns the targets that are missing or do not have the
	// content the generator would write.
	Outdated(ctx context.Context) ([]string, error)
	// Update regenerates the targets. Without always, files that are
	// already up to date are left untouched when the generator can tell.
	Update(ctx context.Context, always bool) error
}

// Differ is implemented by generators that can show how their outdated
// files differ from the expected content.
type Differ interface {
	Diff(ctx context.Context) (string, error)
}

// Set is a validated collection of generators.
type Set struct {
	gens     []Generator
	byName   map[string]Generator
	byTarget map[string]Generator
	targets  map[string][]string
}

// Assemble builds a set, rejecting duplicate generator names and targets
// claimed by more than one generator.
func Assemble(ctx context.Context, gens ...Generator) (*Set, error) {
	s := &Set{
		byName:   make(map[string]Generator),
		byTarget: make(map[string]Generator),
		targets:  make(map[string][]string),
	}
	for _, g := range gens {
		name := g.Name()
		if _, ok := s.byName[name]; ok {
			return nil, fmt.Errorf("duplicate generator name %q", name)
		}
		targets, err := g.Targets(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list targets of %s: %v", name, err)
		}
		for _, t := range targets {
			if other, ok := s.byTarget[t]; ok {
				return nil, fmt.Errorf("%s is generated by both %s and %s", t, other.Name(), name)
			}
			s.byTarget[t] = g
		}
		s.byName[name] = g
		s.targets[name] = targets
		s.gens = append(s.gens, g)
	}
	return s, nil
}

// Generators returns the generators in assembly order.
func (s *Set) Generators() []Generator {
	return append([]Generator(nil), s.gens...)
}

// ListNames returns the generator names, sorted.
func (s *Set) ListNames() []string {
	var names []string
	for _, g := range s.gens {
		names = append(names, g.Name())
	}
	sort.Strings(names)
	return names
}

// ListTargets returns all targets, sorted.
func (s *Set) ListTargets() []string {
	var targets []string
	for t := range s.byTarget {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// TargetsOf returns the targets of the named generator.
func (s *Set) TargetsOf(name string) []string {
	return s.targets[name]
}

// Select returns the generators named by idents, each either a generator
// name or one of its targets. Without idents, all generators are selected.
// Each generator appears once, sorted by name.
func (s *Set) Select(idents []string) ([]Generator, error) {
	if len(idents) == 0 {
		return s.Generators(), nil
	}
	wanted := make(map[string]bool)
	for _, id := range idents {
		g, ok := s.byName[id]
		if !ok {
			g, ok = s.byTarget[id]
		}
		if !ok {
			return nil, fmt.Errorf("no generator found for %s", id)
		}
		wanted[g.Name()] = true
	}
	var names []string
	for name := range wanted {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []Generator
	for _, name := range names {
		out = append(out, s.byName[name])
	}
	return out, nil
}

// Result is the outcome of checking one generator.
type Result struct {
	Generator Generator
	Outdated  []string
}

// Check runs the Outdated method of each generator, at most jobs at a time.
// Script generators without --list-outdated support run one at a time since
// they rewrite the working tree. Results are in the order of gens. Failures
// of individual generators are combined into the returned error.
func Check(ctx context.Context, gens []Generator, jobs int) ([]Result, error) {
	results := make([]Result, len(gens))
	var (
		mu   sync.Mutex
		errs error
	)
	eg := new(errgroup.Group)
	if jobs > 0 {
		eg.SetLimit(jobs)
	}
	for i, g := range gens {
		i, g := i, g
		eg.Go(func() error {
			outdated, err := g.Outdated(ctx)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %v", g.Name(), err))
				mu.Unlock()
				return nil
			}
			results[i] = Result{Generator: g, Outdated: outdated}
			return nil
		})
	}
	_ = eg.Wait()
	return results, errs
}

// Update regenerates the files of each generator in turn.
func Update(ctx context.Context, gens []Generator, always bool) error {
	for _, g := range gens {
		if err := g.Update(ctx, always); err != nil {
			return fmt.Errorf("%s: %v", g.Name(), err)
		}
	}
	return nil
}
