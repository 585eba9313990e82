// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth guards the one mutating HTTP endpoint.

# Admin Keys

Admin keys use HMAC-SHA256 over the view name:

	adminKey := auth.GenerateAdminKey(viewName, salt)
	err := auth.ValidateAdminKey(viewName, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same view name and salt always produce the same key, so nothing is
stored. An empty salt rejects every key.
*/
package auth
