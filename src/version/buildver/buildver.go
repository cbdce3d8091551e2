// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// buildver package provides access to build version variables and utilities
// to generate formatted version strings.
package buildver

import (
	"fmt"
	"runtime/debug"
)

var (
	// The following variables are set at link time with
	// -ldflags "-X github.com/Mbed-TLS/framework-tools/src/version/buildver.<Name>=<value>".

	// BuildHost contains the build hostname.
	BuildHost = "unknown"

	// BuildUser contains the build user.
	BuildUser = "unknown"

	// BuildTimestamp contains the build timestamp.
	BuildTimestamp = "0"

	// BuildSCMRevision contains the repository release tag or commit hash.
	BuildSCMRevision = "unknown"

	// BuildSCMStatus contains the status of the repository.
	BuildSCMStatus = "unknown"
)

// revision falls back to the VCS information stamped by the go command when
// nothing was injected at link time.
func revision() (string, string) {
	rev, status := BuildSCMRevision, BuildSCMStatus
	if rev != "unknown" {
		return rev, status
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return rev, status
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				status = "modified"
			} else {
				status = "clean"
			}
		}
	}
	return rev, status
}

// FormattedStr returns a formatted string version which can be used to
// reference the target release.
func FormattedStr() string {
	rev, status := revision()
	return fmt.Sprintf("Version: %s-%s Host: %q User: %q Timestamp: %s", rev, status, BuildHost, BuildUser, BuildTimestamp)
}
