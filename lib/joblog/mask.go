// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package joblog

import (
	"context"
	"log/slog"
)

// Mask selects which record classes reach the log file.
type Mask int

const (
	MaskError  Mask = 1
	MaskStatus Mask = 2
	MaskDebug  Mask = 4

	// MaskAll enables every class.
	MaskAll = MaskError | MaskStatus | MaskDebug
)

// Allows reports whether records at level pass the mask. Warnings
// count as errors and info records as status.
func (m Mask) Allows(level slog.Level) bool {
	switch {
	case level >= slog.LevelWarn:
		return m&MaskError != 0
	case level >= slog.LevelInfo:
		return m&MaskStatus != 0
	default:
		return m&MaskDebug != 0
	}
}

// maskHandler drops records the mask does not allow.
type maskHandler struct {
	mask  Mask
	inner slog.Handler
}

func (h maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.mask.Allows(level) && h.inner.Enabled(ctx, level)
}

func (h maskHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.inner.Handle(ctx, record)
}

func (h maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return maskHandler{mask: h.mask, inner: h.inner.WithAttrs(attrs)}
}

func (h maskHandler) WithGroup(name string) slog.Handler {
	return maskHandler{mask: h.mask, inner: h.inner.WithGroup(name)}
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
