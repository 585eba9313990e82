// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the survey data API.

# Route Registration

NewRouter builds the executor, checkpoint store and reconciler for a store
and returns a configured http.ServeMux:

	mux, err := router.NewRouter(store, cfg)

# Endpoints

Health:

	GET /health
	GET /

Survey data (public, read-only):

	GET  /survey-data              - Live data as CSV (?format=json for JSON)
	GET  /checkpoint               - Stored view fingerprint
	POST /query                    - Ad-hoc SELECT, {"sql": "..."}

View maintenance (admin, requires X-Admin-Key):

	POST /survey-data/refresh      - Reconcile the persisted view

Every route except health and root is wrapped in middleware.WithLogging.
*/
package router
