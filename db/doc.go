// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db owns the store handle and the survey schema.

# Opening a Store

Open connects with either lib/pq or the pure-Go SQLite driver and pings the
database before returning:

	store, err := db.Open(ctx, "postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

There is no package-level connection. Callers pass the *Store to whatever
needs it.

# Scoped Connections

WithConn borrows one connection for the duration of a single operation and
always returns it to the pool, on success, error or panic:

	err := store.WithConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, "DROP VIEW IF EXISTS vw_AllSurveyData")
		return err
	})

Failures to open, ping or acquire are reported as *ConnectionError so the
interactive layer can print configuration guidance and keep going.

# Schema Creation

CreateSchema initializes the survey tables for local and demo databases.
Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - survey: Survey identifiers
  - question: Question identifiers and text
  - survey_structure: Which questions belong to which survey
  - survey_user: Respondents
  - answer: One value per (user, survey, question)

# Relationships

	survey 1──* survey_structure *──1 question
	survey_user 1──* answer
	survey 1──* answer
	question 1──* answer
*/
package db
