// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package logger implements a leveled logger on top of zap.
//
// Outputs log to the console (stderr) and optionally to a log file.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	LogLevelFatal LogLevel = iota
	LogLevelPanic
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// traceLevel sits one step below zap's debug level.
const traceLevel = zapcore.DebugLevel - 1

func (level LogLevel) String() string {
	switch level {
	case LogLevelFatal:
		return "FATAL:"
	case LogLevelPanic:
		return "PANIC:"
	case LogLevelError:
		return "ERROR:"
	case LogLevelWarn:
		return "WARN: "
	case LogLevelInfo:
		return "INFO: "
	case LogLevelDebug:
		return "DEBUG:"
	case LogLevelTrace:
		return "TRACE:"
	default:
		return fmt.Sprintf("%d", int(level))
	}
}

func (level LogLevel) zapLevel() zapcore.Level {
	switch level {
	case LogLevelFatal:
		return zapcore.FatalLevel
	case LogLevelPanic:
		return zapcore.PanicLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelDebug:
		return zapcore.DebugLevel
	default:
		return traceLevel
	}
}

func checkLevel(l LogLevel) error {
	if l < LogLevelFatal || l > LogLevelTrace {
		return fmt.Errorf("invalid log level %d, expected from %d to %d",
			l, LogLevelFatal, LogLevelTrace)
	}
	return nil
}

// ModLogger is a leveled logger writing to stderr and an optional file.
type ModLogger struct {
	sugar   *zap.SugaredLogger
	level   zap.AtomicLevel
	LogFile *os.File
}

var (
	defaultMu     sync.Mutex
	defaultLogger *ModLogger
)

// NewLogger creates a logger. When logName is not empty, messages are also
// appended to that file, whose directory must already exist.
func NewLogger(logName string, logLevel ...LogLevel) (*ModLogger, error) {
	level := LogLevelInfo
	if len(logLevel) > 0 {
		if err := checkLevel(logLevel[0]); err != nil {
			return nil, err
		}
		level = logLevel[0]
	}

	atom := zap.NewAtomicLevelAt(level.zapLevel())
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	console := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), atom)

	l := &ModLogger{level: atom}
	core := console
	if logName != "" {
		if _, err := os.Stat(filepath.Dir(logName)); os.IsNotExist(err) {
			return nil, fmt.Errorf("log directory %s does not exist",
				filepath.Dir(logName))
		}
		f, err := os.OpenFile(logName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, fmt.Errorf("cannot create log file %w", err)
		}
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		core = zapcore.NewTee(console,
			zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(f), atom))
		l.LogFile = f
	}
	l.sugar = zap.New(core).Sugar()
	return l, nil
}

// L returns the process-wide logger, creating a console logger on first use.
func L() *ModLogger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger, _ = NewLogger("")
	}
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *ModLogger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

func (l *ModLogger) Close() error {
	if l == nil {
		return fmt.Errorf("non-existing logger")
	}
	_ = l.sugar.Sync()
	if l.LogFile != nil {
		if err := l.LogFile.Close(); err != nil {
			return fmt.Errorf("cannot close log file %w", err)
		}
		l.LogFile = nil
	}
	return nil
}

func (l *ModLogger) SetLogLevel(logLevel LogLevel) error {
	if err := checkLevel(logLevel); err != nil {
		return err
	}
	l.level.SetLevel(logLevel.zapLevel())
	return nil
}

// Enabled reports whether messages at the given level are emitted.
func (l *ModLogger) Enabled(logLevel LogLevel) bool {
	return l != nil && l.level.Enabled(logLevel.zapLevel())
}

func (l *ModLogger) Fatalf(format string, args ...interface{}) {
	if l != nil {
		l.sugar.Fatalf(format, args...)
	}
}

func (l *ModLogger) Errorf(format string, args ...interface{}) {
	if l != nil {
		l.sugar.Errorf(format, args...)
	}
}

func (l *ModLogger) Warnf(format string, args ...interface{}) {
	if l != nil {
		l.sugar.Warnf(format, args...)
	}
}

func (l *ModLogger) Infof(format string, args ...interface{}) {
	if l != nil {
		l.sugar.Infof(format, args...)
	}
}

func (l *ModLogger) Debugf(format string, args ...interface{}) {
	if l != nil {
		l.sugar.Debugf(format, args...)
	}
}

func (l *ModLogger) Tracef(format string, args ...interface{}) {
	if l.Enabled(LogLevelTrace) {
		l.sugar.Desugar().Check(traceLevel, fmt.Sprintf(format, args...)).Write()
	}
}

// With returns a child logger carrying the given key/value pairs.
func (l *ModLogger) With(keysAndValues ...interface{}) *ModLogger {
	return &ModLogger{sugar: l.sugar.With(keysAndValues...), level: l.level}
}
