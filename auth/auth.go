// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidAdminKey = errors.New("invalid admin key")

// GenerateAdminKey creates an HMAC-based admin key for a view
// This is deterministic and verifiable
func GenerateAdminKey(viewName, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(viewName))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the view.
// An empty salt disables admin keys entirely.
func ValidateAdminKey(viewName, adminKey, salt string) error {
	if salt == "" || adminKey == "" {
		return ErrInvalidAdminKey
	}
	expected := GenerateAdminKey(viewName, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}
