// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the survey data API.

# Handler Types

  - SurveyDataHandler: Export, view refresh and checkpoint lookup
  - QueryHandler: Ad-hoc read-only queries

Handlers depend on small interfaces rather than the database handle:

	surveyHandler := handlers.NewSurveyDataHandler(reconciler, cfg)
	queryHandler := handlers.NewQueryHandler(executor)

*reconcile.Reconciler satisfies SurveyService and *query.Executor satisfies
QueryService.

# Refresh

POST /survey-data/refresh requires the X-Admin-Key header:

	adminKey := auth.GenerateAdminKey(cfg.ViewName, cfg.AdminKeySalt)

Refreshes are serialized within the process. Concurrent callers wait and
then observe no_change.

# Error Mapping

  - Non-permitted query: 400
  - No surveys: 404
  - Connection failure: 503
  - Anything else on the data path: 500

Errors use models.ErrorResponse via middleware.ErrorResponse.
*/
package handlers
