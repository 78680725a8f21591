// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides structured leveled logging with per-package context,
// backed by log/slog.
package log

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger emits key/value structured records.
type Logger interface {
	With(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

func (l *logger) Debug(msg string, ctx ...any) { l.inner.Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.inner.Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.inner.Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.inner.Error(msg, ctx...) }

var root atomic.Pointer[logger]

func init() {
	root.Store(&logger{inner: slog.New(newDefaultHandler(os.Stderr))})
}

func newDefaultHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level slog.Level) Logger {
	return &logger{inner: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

// NewWithHandler creates a logger with a custom slog handler.
func NewWithHandler(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

// SetRoot replaces the process-wide root logger.
func SetRoot(l Logger) {
	if lg, ok := l.(*logger); ok {
		root.Store(lg)
	}
}

// WithContext returns a child of the root logger carrying the given context.
func WithContext(ctx ...any) Logger {
	return root.Load().With(ctx...)
}

// Debug logs at debug level on the root logger.
func Debug(msg string, ctx ...any) { root.Load().Debug(msg, ctx...) }

// Info logs at info level on the root logger.
func Info(msg string, ctx ...any) { root.Load().Info(msg, ctx...) }

// Warn logs at warn level on the root logger.
func Warn(msg string, ctx ...any) { root.Load().Warn(msg, ctx...) }

// Error logs at error level on the root logger.
func Error(msg string, ctx ...any) { root.Load().Error(msg, ctx...) }
