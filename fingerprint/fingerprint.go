// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package fingerprint computes change-detection hashes of result tables.
//
// A fingerprint is the hex MD5 of the table's canonical text (header plus rows
// in their current order). It detects drift between two snapshots of the same
// query; it is not an integrity check. Callers that want order-independent
// fingerprints must sort the table first.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"log/slog"

	"github.com/danielhkuo/surveyview/table"
)

// Unavailable is returned when a fingerprint could not be computed.
// It never equals a real fingerprint and always counts as stale.
const Unavailable = "fingerprint-unavailable"

// Of returns the fingerprint of t, or Unavailable on any failure
func Of(t *table.Table) (fp string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("fingerprint failed", "panic", r)
			fp = Unavailable
		}
	}()

	if t == nil {
		slog.Warn("fingerprint failed", "error", "nil table")
		return Unavailable
	}

	text, err := t.CanonicalText()
	if err != nil {
		slog.Warn("fingerprint failed", "error", err)
		return Unavailable
	}

	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// IsStale reports whether a stored fingerprint no longer describes live data
func IsStale(stored, live string) bool {
	if stored == Unavailable || live == Unavailable {
		return true
	}
	return stored != live
}
