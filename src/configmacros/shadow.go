// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package configmacros

import (
	"path/filepath"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/utils"
)

// ShadowFile is the committed copy of the current option list, relative to
// the project root. It lets reviewers see option changes and lets other
// tools read the options without parsing headers.
const ShadowFile = "scripts/data_files/config-options-current.txt"

// ShadowPath returns the shadow file of the project at root.
func ShadowPath(root string) string {
	return filepath.Join(root, filepath.FromSlash(ShadowFile))
}

// ShadowContent renders the option list: sorted, one per line.
func (m *Macros) ShadowContent() []byte {
	opts := m.Options()
	if len(opts) == 0 {
		return nil
	}
	return []byte(strings.Join(opts, "\n") + "\n")
}

// IsShadowUpToDate reports whether the shadow file exists and lists
// exactly the current options.
func (m *Macros) IsShadowUpToDate(root string) bool {
	return utils.UpToDate(ShadowPath(root), m.ShadowContent())
}

// UpdateShadow writes the shadow file if it is outdated, or
// unconditionally with always. It reports whether the file was written.
func (m *Macros) UpdateShadow(root string, always bool) (bool, error) {
	return utils.WriteIfChanged(ShadowPath(root), m.ShadowContent(), always)
}
