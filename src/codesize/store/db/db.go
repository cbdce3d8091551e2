// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package db implements the code size history on top of a store connector.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/codesize"
	"github.com/Mbed-TLS/framework-tools/src/codesize/store/connector"
)

const (
	// Database key template.
	// /cs/<config>/<revision>
	recordKey = "/cs/%s/%s"
	keyPrefix = "/cs/"
)

// SizeDB records code size reports per configuration and revision.
type SizeDB struct {
	// conn is the database connector interface.
	conn connector.Connector
}

// New creates a `SizeDB` instance with a given `c` database connection.
func New(c connector.Connector) *SizeDB {
	return &SizeDB{conn: c}
}

func genKey(config, revision string) (string, error) {
	if config == "" || revision == "" {
		return "", fmt.Errorf("configuration and revision must not be empty")
	}
	if strings.Contains(config, "/") {
		return "", fmt.Errorf("invalid configuration name %q", config)
	}
	return fmt.Sprintf(recordKey, config, revision), nil
}

// Record stores the report measured for `config` at `revision`. Recording
// the same pair again replaces the previous report.
func (d *SizeDB) Record(ctx context.Context, config, revision string, r *codesize.Report) error {
	key, err := genKey(config, revision)
	if err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal code size report: %v", err)
	}
	return d.conn.Insert(ctx, key, data)
}

// Get returns the latest report recorded for `config` at `revision`.
func (d *SizeDB) Get(ctx context.Context, config, revision string) (*codesize.Report, error) {
	key, err := genKey(config, revision)
	if err != nil {
		return nil, err
	}
	res, err := d.conn.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	r := codesize.NewReport()
	if err := json.Unmarshal(res, r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal code size report: %v", err)
	}
	return r, nil
}

// Revisions lists the revisions recorded for `config`.
func (d *SizeDB) Revisions(ctx context.Context, config string) ([]string, error) {
	prefix := keyPrefix + config + "/"
	keys, err := d.conn.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	revs := []string{}
	for _, k := range keys {
		revs = append(revs, strings.TrimPrefix(k, prefix))
	}
	return revs, nil
}

// ParseRef splits a `<config>@<revision>` reference.
func ParseRef(ref string) (config, revision string, err error) {
	i := strings.LastIndexByte(ref, '@')
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("invalid report reference %q, expected <config>@<revision>", ref)
	}
	return ref[:i], ref[i+1:], nil
}
