// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package testdriver

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/logger"
)

func isPublicDir(dir string) bool {
	return path.Base(dir) == "include"
}

func (g *Generator) excluded(rel string) bool {
	for _, glob := range g.Config.Exclude {
		if ok, _ := path.Match(glob, rel); ok {
			return true
		}
		if ok, _ := path.Match(glob, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

// within reports whether p is dir or below it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// dstFor returns the destination of a file, relative to the destination
// directory.
func (g *Generator) dstFor(dir, rel string) string {
	if isPublicDir(dir) {
		return path.Join("include", g.Config.Driver, rel)
	}
	d, base := path.Split(rel)
	return path.Join("src", dir, d, g.Config.Driver+"_"+base)
}

func (g *Generator) addFile(f *File) error {
	if f.Public {
		if prev, ok := g.public[f.Include]; ok {
			return fmt.Errorf("public header %s is provided by both %s and %s", f.Include, prev.Src, f.Src)
		}
		g.public[f.Include] = f
	} else {
		g.private[f.Src] = f
		base := path.Base(f.Src)
		g.privateByBase[base] = append(g.privateByBase[base], f)
	}
	g.files = append(g.files, f)
	return nil
}

// CreateTree copies the configured directories into the destination
// directory. Headers of include directories go to include/<driver>/; the
// .c and .h files of other directories go to src/<dir>/ with the driver
// name prefixed to the file name. Previous copies are removed first.
func (g *Generator) CreateTree() error {
	g.files = nil
	g.public = make(map[string]*File)
	g.private = make(map[string]*File)
	g.privateByBase = make(map[string][]*File)

	dst, err := filepath.Abs(g.DstDir)
	if err != nil {
		return err
	}
	for _, dir := range g.Config.Dirs {
		dir = path.Clean(filepath.ToSlash(dir))
		src, err := filepath.Abs(filepath.Join(g.SrcRoot, filepath.FromSlash(dir)))
		if err != nil {
			return err
		}
		if within(dst, src) {
			return fmt.Errorf("destination %s is inside source directory %s", g.DstDir, dir)
		}
		old := filepath.Join(g.DstDir, "src", filepath.FromSlash(dir))
		if isPublicDir(dir) {
			old = filepath.Join(g.DstDir, "include", g.Config.Driver)
		}
		if err := os.RemoveAll(old); err != nil {
			return fmt.Errorf("failed to remove %s: %v", old, err)
		}
	}

	for _, dir := range g.Config.Dirs {
		dir = path.Clean(filepath.ToSlash(dir))
		if err := g.copyDir(dir); err != nil {
			return err
		}
	}
	logger.L().Debugf("Copied %d files to %s", len(g.files), g.DstDir)
	return nil
}

func (g *Generator) copyDir(dir string) error {
	public := isPublicDir(dir)
	top := filepath.Join(g.SrcRoot, filepath.FromSlash(dir))
	return filepath.WalkDir(top, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %v", top, err)
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(d.Name())
		if ext != ".h" && (public || ext != ".c") {
			return nil
		}
		relFS, err := filepath.Rel(top, p)
		if err != nil {
			return err
		}
		rel := filepath.ToSlash(relFS)
		f := &File{
			Src:    path.Join(dir, rel),
			Dst:    g.dstFor(dir, rel),
			Public: public,
		}
		if public {
			f.Include = rel
		}
		if g.excluded(f.Src) {
			logger.L().Debugf("Skipping excluded %s", f.Src)
			return nil
		}
		if err := g.addFile(f); err != nil {
			return err
		}
		return copyFile(p, filepath.Join(g.DstDir, filepath.FromSlash(f.Dst)))
	})
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %v", dst, err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", dst, err)
	}
	return nil
}
