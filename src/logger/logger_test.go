// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		name string
		l    LogLevel
		want string
	}{
		{
			name: "ValidLogLevel",
			l:    LogLevelWarn,
			want: "WARN: ",
		},
		{
			name: "InvalidLogLevel",
			l:    10,
			want: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.l.String(); got != tt.want {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		logName string
		level   []LogLevel
		wantErr bool
	}{
		{
			name: "Console",
		},
		{
			name:    "File",
			logName: filepath.Join(dir, "test.log"),
			level:   []LogLevel{LogLevelDebug},
		},
		{
			name:    "MissingDirectory",
			logName: filepath.Join(dir, "nope", "test.log"),
			wantErr: true,
		},
		{
			name:    "InvalidLevel",
			level:   []LogLevel{LogLevelTrace + 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.logName, tt.level...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if err := l.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}
		})
	}
}

func TestLogFileLevels(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.log")
	l, err := NewLogger(name, LogLevelInfo)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	l.Infof("visible %d", 1)
	l.Debugf("hidden %d", 2)
	if err := l.SetLogLevel(LogLevelTrace); err != nil {
		t.Fatalf("SetLogLevel() error = %v", err)
	}
	if !l.Enabled(LogLevelTrace) {
		t.Errorf("Enabled(LogLevelTrace) = false after SetLogLevel")
	}
	l.Tracef("traced %d", 3)
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	s := string(got)
	for _, want := range []string{"visible 1", "traced 3"} {
		if !strings.Contains(s, want) {
			t.Errorf("log file missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "hidden 2") {
		t.Errorf("log file contains filtered message:\n%s", s)
	}
}

func TestSetLogLevelInvalid(t *testing.T) {
	l, err := NewLogger("")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.SetLogLevel(-1); err == nil {
		t.Errorf("SetLogLevel(-1) succeeded")
	}
}
