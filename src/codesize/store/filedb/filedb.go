// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package filedb implements a connector to a sqlite database.
package filedb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mbed-TLS/framework-tools/src/codesize/store/connector"
)

type sqliteDB struct {
	db *gorm.DB
}

// sizeSchema represents the schema of the report table. A key may have
// several rows; the one with the highest ID is current.
type sizeSchema struct {
	ID        uint   `gorm:"primarykey"`
	RecordKey string `gorm:"index"`
	Report    []byte
	CreatedAt time.Time
}

var writeMutex sync.Mutex

// New creates a sqlite connector with an initialized gorm.DB instance.
func New(dbPath string) (connector.Connector, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA busy_timeout = 5000;")
	db.Exec("PRAGMA synchronous=NORMAL;")

	if err := db.AutoMigrate(&sizeSchema{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}
	return &sqliteDB{db: db}, nil
}

// Insert adds a `key` `value` pair to the database. Multiple calls with the
// same key will succeed; Get returns the latest value.
func (s *sqliteDB) Insert(ctx context.Context, key string, value []byte) error {
	writeMutex.Lock()
	defer writeMutex.Unlock()

	r := s.db.WithContext(ctx).Create(&sizeSchema{RecordKey: key, Report: value})
	if r.Error != nil {
		return fmt.Errorf("failed to insert data with key: %q, error: %v", key, r.Error)
	}
	return nil
}

// Get gets the latest inserted value associated with a given `key`.
func (s *sqliteDB) Get(ctx context.Context, key string) ([]byte, error) {
	var rec sizeSchema
	r := s.db.WithContext(ctx).Last(&rec, "record_key = ?", key)
	if r.Error != nil {
		return nil, fmt.Errorf("failed to get data associated with key: %q, error: %v", key, r.Error)
	}
	return rec.Report, nil
}

func (s *sqliteDB) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	r := s.db.WithContext(ctx).Model(&sizeSchema{}).
		Where("substr(record_key, 1, ?) = ?", len(prefix), prefix).
		Distinct().
		Order("record_key").
		Pluck("record_key", &keys)
	if r.Error != nil {
		return nil, fmt.Errorf("failed to list keys with prefix: %q, error: %v", prefix, r.Error)
	}
	return keys, nil
}
