// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package buildtree locates the root of an Mbed TLS or TF-PSA-Crypto source
// tree and classifies it.
package buildtree

import (
	"fmt"
	"os"
	"path/filepath"
)

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// LooksLikeTFPSACryptoRoot reports whether dir is the top of a TF-PSA-Crypto
// tree.
func LooksLikeTFPSACryptoRoot(dir string) bool {
	return isDir(filepath.Join(dir, "core")) && isDir(filepath.Join(dir, "drivers"))
}

// LooksLikeMbedTLSRoot reports whether dir is the top of an Mbed TLS tree.
func LooksLikeMbedTLSRoot(dir string) bool {
	return isDir(filepath.Join(dir, "include")) &&
		isDir(filepath.Join(dir, "library")) &&
		isDir(filepath.Join(dir, "scripts"))
}

func LooksLikeRoot(dir string) bool {
	return LooksLikeTFPSACryptoRoot(dir) || LooksLikeMbedTLSRoot(dir)
}

// IsMbedTLS36 reports whether root is an Mbed TLS 3.6 tree, which still
// carries the crypto code itself.
func IsMbedTLS36(root string) bool {
	return LooksLikeMbedTLSRoot(root) &&
		isFile(filepath.Join(root, "library", "ssl_tls13_keys.c")) &&
		!isDir(filepath.Join(root, "tf-psa-crypto"))
}

// GuessProjectRoot walks up from start until it finds a project root.
func GuessProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if LooksLikeRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s is not inside an Mbed TLS or TF-PSA-Crypto source tree", start)
		}
		dir = parent
	}
}

// FrameworkRoot returns the directory of the framework submodule.
func FrameworkRoot(root string) string {
	return filepath.Join(root, "framework")
}

// CryptoRoot returns the top of the crypto tree: root itself for
// TF-PSA-Crypto and Mbed TLS 3.6, the tf-psa-crypto submodule otherwise.
func CryptoRoot(root string) string {
	if sub := filepath.Join(root, "tf-psa-crypto"); LooksLikeTFPSACryptoRoot(sub) {
		return sub
	}
	return root
}

// ChdirToRoot changes the working directory to the project root containing
// the current directory and returns it.
func ChdirToRoot() (string, error) {
	root, err := GuessProjectRoot(".")
	if err != nil {
		return "", err
	}
	if err := os.Chdir(root); err != nil {
		return "", fmt.Errorf("failed to change directory to %q: %v", root, err)
	}
	return root, nil
}
