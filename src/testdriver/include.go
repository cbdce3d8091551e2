// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package testdriver

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"golang.org/x/sync/errgroup"

	"github.com/Mbed-TLS/framework-tools/src/logger"
)

var includeRE = regexp.MustCompile(`(?m)^([ \t]*#[ \t]*include[ \t]*)([<"])([^>"\n]+)([>"])`)

// ResolveInclude returns the path that replaces the inclusion of name
// from file f, or name itself if the inclusion is left alone.
//
//   - A public header becomes <driver>/name.
//   - A private file that was renamed, looked up relative to the including
//     file and then by base name, keeps its directory part and gets the
//     driver prefix on its base name.
func (g *Generator) ResolveInclude(f *File, name string) string {
	if _, ok := g.public[name]; ok {
		return path.Join(g.Config.Driver, name)
	}
	renamed := func() string {
		dir, base := path.Split(name)
		return dir + g.Config.Driver + "_" + base
	}
	if _, ok := g.private[path.Join(path.Dir(f.Src), name)]; ok {
		return renamed()
	}
	switch candidates := g.privateByBase[path.Base(name)]; len(candidates) {
	case 0:
	case 1:
		return renamed()
	default:
		logger.L().Debugf("%s: ambiguous inclusion of %s left alone", f.Src, name)
	}
	return name
}

// RewriteIncludes rewrites the #include directives of one file.
func (g *Generator) RewriteIncludes(f *File, src []byte) []byte {
	return includeRE.ReplaceAllFunc(src, func(m []byte) []byte {
		sub := includeRE.FindSubmatch(m)
		name := string(sub[3])
		resolved := g.ResolveInclude(f, name)
		if resolved == name {
			return m
		}
		out := append([]byte{}, sub[1]...)
		out = append(out, sub[2]...)
		out = append(out, resolved...)
		return append(out, sub[4]...)
	})
}

// forEachFile applies fn to the content of every file of the tree and
// writes back the result when it changed.
func (g *Generator) forEachFile(ctx context.Context, fn func(f *File, src []byte) ([]byte, error)) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.Config.Jobs)
	for _, f := range g.files {
		f := f
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := filepath.Join(g.DstDir, filepath.FromSlash(f.Dst))
			src, err := os.ReadFile(name)
			if err != nil {
				return fmt.Errorf("failed to read %s: %v", name, err)
			}
			out, err := fn(f, src)
			if err != nil {
				return fmt.Errorf("%s: %v", f.Dst, err)
			}
			if string(out) == string(src) {
				return nil
			}
			if err := os.WriteFile(name, out, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %v", name, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// RewriteInclusions rewrites the #include directives of every file of the
// tree.
func (g *Generator) RewriteInclusions(ctx context.Context) error {
	return g.forEachFile(ctx, func(f *File, src []byte) ([]byte, error) {
		return g.RewriteIncludes(f, src), nil
	})
}
