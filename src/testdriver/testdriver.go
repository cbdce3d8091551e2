// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package testdriver builds a test driver from the built-in crypto driver:
// a copy of the source tree in which file names, header inclusions and the
// exposed C identifiers carry a driver prefix, so that the copy can be
// linked into the same binary as the original.
package testdriver

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/buildtree"
	"github.com/Mbed-TLS/framework-tools/src/logger"
	"github.com/Mbed-TLS/framework-tools/src/runner"
	"github.com/Mbed-TLS/framework-tools/src/utils"
)

const DefaultDriver = "libtestdriver1"

// DefaultPrefixes select the identifiers that get renamed.
var DefaultPrefixes = []string{
	"mbedtls_", "psa_", "tf_psa_crypto_",
	"MBEDTLS_", "PSA_", "TF_PSA_CRYPTO_",
}

// Config is the test driver configuration file.
type Config struct {
	Driver string `yaml:"driver" default:"libtestdriver1"`
	Ctags  string `yaml:"ctags" default:"ctags"`
	// Number of files rewritten in parallel.
	Jobs int `yaml:"jobs" default:"8"`
	// Directories to copy, relative to the source root. Directories named
	// "include" hold public headers.
	Dirs []string `yaml:"dirs"`
	// Globs matched against source-root relative paths and base names of
	// files that are not copied.
	Exclude []string `yaml:"exclude"`
	// Identifier prefixes; DefaultPrefixes when empty.
	Prefixes []string `yaml:"prefixes"`
	// Identifiers, or globs of identifiers, that are never renamed.
	ExcludeIdentifiers []string `yaml:"exclude_identifiers"`
	// Read identifiers from this "ctags -x" listing instead of running
	// ctags.
	TagsFile string `yaml:"tags_file"`
}

// DefaultDirs returns the directories copied from the source root.
func DefaultDirs(srcRoot string) []string {
	if buildtree.LooksLikeTFPSACryptoRoot(srcRoot) {
		return []string{"include", "drivers/builtin/include", "drivers/builtin/src"}
	}
	return []string{"include", "library"}
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() (Config, error) {
	var cfg Config
	err := utils.ApplyDefaults(&cfg)
	return cfg, err
}

// LoadConfig reads a configuration file.
func LoadConfig(name string) (Config, error) {
	var cfg Config
	if err := utils.LoadConfig("", name, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var driverNameRE = regexp.MustCompile(`^[A-Za-z_][0-9A-Za-z_]*$`)

// File is one file of the test driver tree.
type File struct {
	// Path of the original, relative to the source root.
	Src string
	// Path of the copy, relative to the destination directory.
	Dst string
	// Public headers come from an include directory. Include is then the
	// path under that directory.
	Public  bool
	Include string
}

// Generator creates one test driver tree.
type Generator struct {
	SrcRoot string
	DstDir  string
	Config  Config
	Runner  runner.Runner

	files []*File
	// Public headers by include path.
	public map[string]*File
	// Non-public files by source path and by base name.
	private       map[string]*File
	privateByBase map[string][]*File
}

// New returns a generator copying from srcRoot to dstDir. A relative dstDir
// is taken relative to srcRoot.
func New(srcRoot, dstDir string, cfg Config, r runner.Runner) (*Generator, error) {
	if cfg.Driver == "" {
		cfg.Driver = DefaultDriver
	}
	if !driverNameRE.MatchString(cfg.Driver) {
		return nil, fmt.Errorf("invalid driver name %q", cfg.Driver)
	}
	if len(cfg.Prefixes) == 0 {
		cfg.Prefixes = DefaultPrefixes
	}
	if len(cfg.Dirs) == 0 {
		cfg.Dirs = DefaultDirs(srcRoot)
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = 1
	}
	if cfg.Ctags == "" {
		cfg.Ctags = "ctags"
	}
	if !filepath.IsAbs(dstDir) {
		dstDir = filepath.Join(srcRoot, dstDir)
	}
	return &Generator{
		SrcRoot: srcRoot,
		DstDir:  filepath.Clean(dstDir),
		Config:  cfg,
		Runner:  r,
	}, nil
}

// Files returns the files of the tree, in the order they were copied.
func (g *Generator) Files() []*File {
	return g.files
}

// Rename returns the name an identifier gets in the test driver:
// "mbedtls_foo" becomes "libtestdriver1_mbedtls_foo" and "MBEDTLS_FOO"
// becomes "LIBTESTDRIVER1_MBEDTLS_FOO".
func (g *Generator) Rename(ident string) string {
	if ident != "" && ident[0] >= 'A' && ident[0] <= 'Z' {
		return strings.ToUpper(g.Config.Driver) + "_" + ident
	}
	return g.Config.Driver + "_" + ident
}

// Run builds the whole tree and returns the renamed identifiers.
func (g *Generator) Run(ctx context.Context) ([]string, error) {
	if err := g.CreateTree(); err != nil {
		return nil, err
	}
	if err := g.RewriteInclusions(ctx); err != nil {
		return nil, err
	}
	ids, err := g.Identifiers(ctx)
	if err != nil {
		return nil, err
	}
	logger.L().Infof("Prefixing %d identifiers in %d files", len(ids), len(g.files))
	if err := g.PrefixIdentifiers(ctx, ids); err != nil {
		return nil, err
	}
	return ids, nil
}
