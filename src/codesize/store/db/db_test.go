// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package db_test implements unit tests for the db package.
package db_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Mbed-TLS/framework-tools/src/codesize"
	"github.com/Mbed-TLS/framework-tools/src/codesize/store/db"
	"github.com/Mbed-TLS/framework-tools/src/codesize/store/db_fake"
)

func report(objs ...string) *codesize.Report {
	r := codesize.NewReport()
	for i, o := range objs {
		r.Set(o, codesize.Sizes{Text: 100 * (i + 1), Data: i, BSS: 2 * i})
	}
	return r
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	database := db.New(db_fake.New())

	want := report("aes.c.obj", "sha256.c.obj")
	if err := database.Record(ctx, "baremetal_size", "abc123", want); err != nil {
		t.Fatalf("failed to record report: %v", err)
	}
	got, err := database.Get(ctx, "baremetal_size", "abc123")
	if err != nil {
		t.Fatalf("failed to get report: %v", err)
	}
	if diff := cmp.Diff(want.Names(), got.Names()); diff != "" {
		t.Errorf("Get() returned unexpected names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Total(), got.Total()); diff != "" {
		t.Errorf("Get() returned unexpected totals (-want +got):\n%s", diff)
	}

	newer := report("aes.c.obj")
	if err := database.Record(ctx, "baremetal_size", "abc123", newer); err != nil {
		t.Fatalf("failed to record report: %v", err)
	}
	got, err = database.Get(ctx, "baremetal_size", "abc123")
	if err != nil {
		t.Fatalf("failed to get report: %v", err)
	}
	if got.Len() != 1 {
		t.Errorf("Get() returned %d objects, want the latest report with 1", got.Len())
	}
}

func TestGetMissing(t *testing.T) {
	database := db.New(db_fake.New())
	if _, err := database.Get(context.Background(), "full", "HEAD"); err == nil {
		t.Errorf("Get() on an empty database succeeded")
	}
}

func TestRevisions(t *testing.T) {
	ctx := context.Background()
	database := db.New(db_fake.New())
	for _, ref := range []struct{ config, rev string }{
		{"full", "v1"},
		{"full", "v2"},
		{"full_extra", "v3"},
		{"baremetal", "v1"},
	} {
		if err := database.Record(ctx, ref.config, ref.rev, report("a.c.obj")); err != nil {
			t.Fatalf("failed to record report: %v", err)
		}
	}
	got, err := database.Revisions(ctx, "full")
	if err != nil {
		t.Fatalf("Revisions() failed: %v", err)
	}
	if diff := cmp.Diff([]string{"v1", "v2"}, got); diff != "" {
		t.Errorf("Revisions() returned unexpected diff (-want +got):\n%s", diff)
	}
}

func TestInvalidKeys(t *testing.T) {
	database := db.New(db_fake.New())
	tests := []struct{ config, rev string }{
		{"", "v1"},
		{"full", ""},
		{"a/b", "v1"},
	}
	for _, tt := range tests {
		if err := database.Record(context.Background(), tt.config, tt.rev, report()); err == nil {
			t.Errorf("Record(%q, %q) succeeded, want error", tt.config, tt.rev)
		}
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref      string
		config   string
		revision string
		ok       bool
	}{
		{"baremetal_size@HEAD", "baremetal_size", "HEAD", true},
		{"full@v3.6.0", "full", "v3.6.0", true},
		{"full", "", "", false},
		{"@HEAD", "", "", false},
		{"full@", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			config, revision, err := db.ParseRef(tt.ref)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseRef(%q) error = %v, want ok=%v", tt.ref, err, tt.ok)
			}
			if config != tt.config || revision != tt.revision {
				t.Errorf("ParseRef(%q) = %q, %q; want %q, %q", tt.ref, config, revision, tt.config, tt.revision)
			}
		})
	}
}
