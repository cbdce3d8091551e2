// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package filedb_test implements unit tests for the filedb package.
package filedb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Mbed-TLS/framework-tools/src/codesize/store/connector"
	"github.com/Mbed-TLS/framework-tools/src/codesize/store/filedb"
)

func newDB(t *testing.T) connector.Connector {
	c, err := filedb.New("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	return c
}

func TestInsert(t *testing.T) {
	db := newDB(t)
	if err := db.Insert(context.Background(), "key", []byte("value")); err != nil {
		t.Errorf("Insert failed: %v", err)
	}
}

func TestGet(t *testing.T) {
	db := newDB(t)
	if err := db.Insert(context.Background(), "get-key", []byte("value")); err != nil {
		t.Errorf("Insert failed: %v", err)
	}

	value, err := db.Get(context.Background(), "get-key")
	if err != nil {
		t.Errorf("Get failed: %v", err)
	}
	if string(value) != "value" {
		t.Errorf("Get returned wrong value: got %q, want %q", value, "value")
	}
}

func TestGetLatest(t *testing.T) {
	db := newDB(t)
	for _, v := range []string{"first", "second"} {
		if err := db.Insert(context.Background(), "latest-key", []byte(v)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	value, err := db.Get(context.Background(), "latest-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "second" {
		t.Errorf("Get returned wrong value: got %q, want %q", value, "second")
	}
}

func TestGetMissing(t *testing.T) {
	db := newDB(t)
	if _, err := db.Get(context.Background(), "no-such-key"); err == nil {
		t.Errorf("Get of a missing key succeeded")
	}
}

func TestKeys(t *testing.T) {
	db, err := filedb.New(filepath.Join(t.TempDir(), "sizes.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	ctx := context.Background()
	for _, k := range []string{"/cs/full/b", "/cs/full/a", "/cs/full/a", "/cs/full_x/c", "/cs/base/a"} {
		if err := db.Insert(ctx, k, []byte("{}")); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	got, err := db.Keys(ctx, "/cs/full/")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if diff := cmp.Diff([]string{"/cs/full/a", "/cs/full/b"}, got); diff != "" {
		t.Errorf("Keys returned unexpected diff (-want +got):\n%s", diff)
	}
}
