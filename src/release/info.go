// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package release prepares a release of TF-PSA-Crypto or Mbed TLS: it
// finalizes the ChangeLog, commits and tags the result and produces the
// source archive with its checksum.
//
// The work is split into steps run in a fixed order. Each step first checks
// its preconditions without changing anything, then does its job. A step
// does not clean up after a failure; the process can be resumed from any
// step.
package release

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/coreos/go-semver/semver"
)

const (
	changeLogFile = "ChangeLog"
	// Only the top of the ChangeLog is searched so that an older entry
	// is never mistaken for the current one.
	changeLogHead = 1000

	// PlaceholderDate marks a ChangeLog entry that is not released yet.
	PlaceholderDate = "xxxx-xx-xx"
)

var versionHeaderRE = regexp.MustCompile(`(?m)^= *(.*?) +([0-9][-.0-9A-Za-z]+) +branch released (\S+)\n`)

// Options controls the release process.
type Options struct {
	// ArtifactDir receives the archive and its checksum.
	ArtifactDir string
	// Version to release. Empty means the version of the ChangeLog.
	Version string
	// Now returns the release date. Nil means time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Info describes the product tree and the intended release.
type Info struct {
	TopDir string
	// HumanName is the product name as written in the ChangeLog, e.g.
	// "Mbed TLS".
	HumanName string
	// MachineName is used in tags and file names, e.g. "mbedtls".
	MachineName    string
	OldVersion     string
	OldReleaseDate string
	Version        string
}

// MachineName maps a product name found in the ChangeLog to the name used
// in release tags and file names.
func MachineName(human string) (string, error) {
	switch human {
	case "TF-PSA-Crypto":
		return "tf-psa-crypto", nil
	case "Mbed TLS":
		return "mbedtls", nil
	}
	return "", fmt.Errorf("could not determine product (found %q in ChangeLog)", human)
}

// ParseChangeLogHead extracts the product, version and release date from
// the version header near the top of a ChangeLog.
func ParseChangeLogHead(head []byte) (human, version, date string, err error) {
	if len(head) > changeLogHead {
		head = head[:changeLogHead]
	}
	m := versionHeaderRE.FindSubmatch(head)
	if m == nil {
		return "", "", "", fmt.Errorf("could not find version header line near the top of ChangeLog")
	}
	return string(m[1]), string(m[2]), string(m[3]), nil
}

func readHead(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, changeLogHead)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// NewInfo gathers the release information of the tree at topDir.
func NewInfo(topDir string, opts Options) (*Info, error) {
	head, err := readHead(filepath.Join(topDir, changeLogFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read ChangeLog: %v", err)
	}
	human, old, date, err := ParseChangeLogHead(head)
	if err != nil {
		return nil, err
	}
	machine, err := MachineName(human)
	if err != nil {
		return nil, err
	}
	info := &Info{
		TopDir:         topDir,
		HumanName:      human,
		MachineName:    machine,
		OldVersion:     old,
		OldReleaseDate: date,
		Version:        old,
	}
	if opts.Version != "" {
		if err := checkVersion(old, opts.Version); err != nil {
			return nil, err
		}
		info.Version = opts.Version
	}
	return info, nil
}

// checkVersion rejects a requested version that is not a semantic version
// or that is older than the ChangeLog entry.
func checkVersion(old, requested string) error {
	v, err := semver.NewVersion(requested)
	if err != nil {
		return fmt.Errorf("invalid release version %q: %v", requested, err)
	}
	o, err := semver.NewVersion(old)
	if err != nil {
		// Old ChangeLog headers are not always semantic versions.
		return nil
	}
	if v.LessThan(*o) {
		return fmt.Errorf("release version %s is older than %s found in ChangeLog", requested, old)
	}
	return nil
}

// Label is the product and version, e.g. "Mbed TLS 4.0.0".
func (i *Info) Label() string {
	return i.HumanName + " " + i.Version
}

// TagName is the release tag, e.g. "mbedtls-4.0.0".
func (i *Info) TagName() string {
	return i.MachineName + "-" + i.Version
}

// ArchiveBase is the top directory inside the archive and the base name of
// the archive file.
func (i *Info) ArchiveBase() string {
	return i.TagName()
}
