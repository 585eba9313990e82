// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands built with cobra register the same flags with AddFlags and call
Resolve once cobra has parsed them.

# Config Fields

  - DatabaseURL: postgres:// URL or a SQLite file path (required)
  - DatabaseType: postgres or sqlite (inferred from the URL when unset)
  - ViewName: View kept in sync with survey data (default: vw_AllSurveyData)
  - CheckpointPath: Fingerprint file (default: data/survey_data_last_checkpoint.txt)
  - LogFile: Rotating log file, or - for stderr (default: data/surveyview.log)
  - LogLevel: debug, info, warn or error (default: info)
  - Port: HTTP port for serve (default: 3318)
  - AdminKeySalt: Secret for the refresh endpoint admin key

# CLI Flags

	-d, --database-url   Database URL
	-t, --database-type  Database type
	--view               View name
	--checkpoint         Checkpoint file
	-c, --config         TOML config file (default: config.toml)
	--env-file           dotenv file (default: .env)
	--log-file           Log file
	--log-level          Log level
	-p, --port           Server port
	--admin-salt         Admin key salt

# Environment Variables

Flags fall back to environment variables. A .env file is loaded first and
never overrides variables that are already set.

	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	VIEW_NAME       → --view
	CHECKPOINT_PATH → --checkpoint
	LOG_FILE        → --log-file
	LOG_LEVEL       → --log-level
	PORT            → -p
	ADMIN_KEY_SALT  → --admin-salt

# Config File

Anything still unset is read from config.toml:

	[db_connection]
	type = "postgres"
	url = "postgres://analyst@localhost/survey_sample?sslmode=disable"

	[view]
	name = "vw_AllSurveyData"
	checkpoint = "data/survey_data_last_checkpoint.txt"

	[log]
	file = "data/surveyview.log"
	level = "info"

	[server]
	port = 3318
	admin_key_salt = "..."

CLI flags take precedence over environment variables, which take precedence
over the config file.

# Validation

ParseFlags returns an error if:

  - no database URL is provided
  - the database type is not postgres or sqlite
  - PORT is not a number
  - an explicitly named config or dotenv file cannot be read
*/
package cliparse
