// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package connector implements a code size history store interface.
package connector

import (
	"context"
)

// Connector implements a connection to the history store.
type Connector interface {
	// Insert a `key` `value` pair. Inserting an existing key adds a newer
	// version of its value.
	// It should respect context cancellation and timeout.
	Insert(ctx context.Context, key string, value []byte) error

	// Get returns the latest value associated with a given `key`.
	// It should respect context cancellation and timeout.
	Get(ctx context.Context, key string) ([]byte, error)

	// Keys returns the distinct keys starting with `prefix`, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
