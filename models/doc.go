// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request and response types for the HTTP surface.

# Request Types

  - QueryRequest: Ad-hoc read-only SQL for POST /query

# Response Types

  - TableResponse: Columns and rows of a result set
  - RefreshResponse: Outcome of a view reconciliation
  - CheckpointResponse: The stored view fingerprint
  - ErrorResponse: Standard error format

# JSON Conventions

All types use snake_case JSON tags. Result cells keep their database types:
integers and floats as numbers, text as strings and NULL as null. Answer
columns use null for "question not in this survey" and -1 for "in the
survey but unanswered".
*/
package models
