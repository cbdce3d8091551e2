// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package db_fake is an in-memory history store for tests.
package db_fake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Mbed-TLS/framework-tools/src/codesize/store/connector"
)

type memStore struct {
	mu sync.Mutex
	// Every value inserted under a key, oldest first.
	history map[string][][]byte
}

// New creates an empty store.
func New() connector.Connector {
	return &memStore{history: make(map[string][][]byte)}
}

func (m *memStore) Insert(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[key] = append(m.history[key], append([]byte(nil), value...))
	return nil
}

// Get returns the value inserted last under key.
func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := m.history[key]
	if len(values) == 0 {
		return nil, fmt.Errorf("record not found key: %q", key)
	}
	return values[len(values)-1], nil
}

func (m *memStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.history {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
