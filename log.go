// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/blockstream

package blockstream

import "log/slog"

// Package logger used by readers and engines that were not given their own.
var log = slog.Default()

// SetLogger configures the package logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	log = l
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return log
}
