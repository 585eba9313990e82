// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the surveyview command.

surveyview flattens survey answers into one row per (user, survey) with one
ans_q<N> column per question, and keeps a persisted view of that dataset in
step with the live tables. The view is rebuilt only when the MD5 fingerprint
of the live data differs from the checkpoint stored on disk.

# Answer Columns

  - NULL: the question is not part of that survey
  - -1: the question is part of the survey but the user did not answer it
  - otherwise the stored answer value

# Commands

	surveyview                 # interactive menu
	surveyview export -o data/all_survey_data.csv [--update]
	surveyview refresh
	surveyview query "SELECT * FROM vw_AllSurveyData"
	surveyview query --file query.txt -o results.csv
	surveyview checkpoint
	surveyview init
	surveyview serve
	surveyview admin-key        # X-Admin-Key for POST /survey-data/refresh

CSV goes to stdout; view status lines and save summaries go to stderr, so
"export --update > data.csv" stays clean. The menu prints everything to stdout.

# Configuration

Flags win over environment variables (a .env file is loaded first), which
win over config.toml, which wins over defaults:

  - DATABASE_URL (-d): postgres:// URL or SQLite file path (required)
  - DATABASE_TYPE (-t): postgres or sqlite (inferred from the URL)
  - VIEW_NAME (--view): default vw_AllSurveyData
  - CHECKPOINT_PATH (--checkpoint): default data/survey_data_last_checkpoint.txt
  - LOG_FILE (--log-file), LOG_LEVEL (--log-level): default data/surveyview.log, info
  - PORT (-p), ADMIN_KEY_SALT (--admin-salt): serve only

# Architecture

  - viewquery: dynamic view SQL from survey structure
  - fingerprint, checkpoint: staleness detection
  - reconcile: drop, create, then checkpoint
  - query, db, table: allowlisted execution and result sets
  - menu: interactive front end
  - handlers, router, middleware, auth, models: HTTP surface
  - cliparse, logging, fileutil: configuration, logs and paths

See package documentation for each component.
*/
package main
