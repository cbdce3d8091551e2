// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/runner"
)

// MergeTars concatenates the entries of several tar archives into one.
// Global pax headers, which git uses to record the commit, are dropped
// since each input carries its own.
func MergeTars(w io.Writer, archives ...[]byte) error {
	tw := tar.NewWriter(w)
	for i, a := range archives {
		tr := tar.NewReader(bytes.NewReader(a))
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("archive %d: %v", i, err)
			}
			if hdr.Typeflag == tar.TypeXGlobalHeader {
				continue
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if _, err := io.Copy(tw, tr); err != nil {
				return err
			}
		}
	}
	return tw.Close()
}

// archiveStep builds the source archive of the top level and all
// submodules.
type archiveStep struct{ *env }

func (archiveStep) Name() string { return "archive" }

func (s archiveStep) AssertPreconditions(ctx context.Context) error {
	if err := s.assertClean(ctx); err != nil {
		return err
	}
	exists, err := s.tagExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("tag %s does not exist", s.info.TagName())
	}
	if _, err := os.Stat(s.archivePath()); err == nil {
		return fmt.Errorf("%s already exists", s.archivePath())
	}
	return nil
}

func (s archiveStep) Run(ctx context.Context) error {
	subs, err := s.Submodules(ctx)
	if err != nil {
		return err
	}
	base := s.info.ArchiveBase()
	var parts [][]byte
	for _, where := range append([]string{""}, subs...) {
		prefix := path.Join(base, filepath.ToSlash(where)) + "/"
		data, err := s.readGit(ctx, where, "archive", "--format=tar", "--prefix="+prefix, "HEAD")
		if err != nil {
			return err
		}
		parts = append(parts, data)
	}
	var merged bytes.Buffer
	if err := MergeTars(&merged, parts...); err != nil {
		return fmt.Errorf("failed to merge archives: %v", err)
	}

	if err := os.MkdirAll(s.opts.ArtifactDir, 0755); err != nil {
		return err
	}
	out, err := os.Create(s.archivePath())
	if err != nil {
		return err
	}
	defer out.Close()
	if err := s.runner.Run(ctx, runner.Cmd{
		Name:   "bzip2",
		Args:   []string{"-9", "-c"},
		Stdin:  &merged,
		Stdout: out,
	}); err != nil {
		return err
	}
	logger.L().Infof("Wrote %s", s.archivePath())
	return out.Close()
}

// Checksum returns a line in the format of sha256sum.
func Checksum(r io.Reader, name string) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)) + "  " + name + "\n", nil
}

// checksumStep writes the SHA-256 checksum next to the archive.
type checksumStep struct{ *env }

func (checksumStep) Name() string { return "checksum" }

func (s checksumStep) AssertPreconditions(context.Context) error {
	if _, err := os.Stat(s.archivePath()); err != nil {
		return fmt.Errorf("archive not found: %v", err)
	}
	return nil
}

func (s checksumStep) Run(context.Context) error {
	f, err := os.Open(s.archivePath())
	if err != nil {
		return err
	}
	defer f.Close()
	line, err := Checksum(f, filepath.Base(s.archivePath()))
	if err != nil {
		return err
	}
	name := s.archivePath() + ".sha256"
	if err := os.WriteFile(name, []byte(line), 0644); err != nil {
		return err
	}
	logger.L().Infof("Wrote %s", name)
	return nil
}
