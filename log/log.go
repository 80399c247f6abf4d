// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log is a thin structured-logging facade, mirroring the shape
// of the teacher repo's own log package (github.com/luxfi/log: a
// Logger interface plus a NewNoOpLogger factory) without depending on
// its full external interface, whose method set is not available in
// this retrieval pack. See DESIGN.md's "log" entry.
package log

import "go.uber.org/zap"

// Logger is the narrow structured-logging surface every component
// takes at construction time.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

type zapLogger struct {
	*zap.Logger
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() Logger {
	return &zapLogger{zap.NewNop()}
}

// NewDevelopment returns a human-readable console logger suitable for
// cmd/replica and local debugging.
func NewDevelopment() Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		return NewNop()
	}
	return &zapLogger{l}
}

// With returns a child logger with the given fields always attached.
func With(l Logger, fields ...zap.Field) Logger {
	if zl, ok := l.(*zapLogger); ok {
		return &zapLogger{zl.Logger.With(fields...)}
	}
	return l
}
