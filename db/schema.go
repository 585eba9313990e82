// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates the survey tables if they are missing.
// Safe to call multiple times - uses IF NOT EXISTS.
func (s *Store) CreateSchema(ctx context.Context) error {
	return s.WithConn(ctx, func(conn *sql.Conn) error {
		for _, stmt := range schema {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create schema: %w", err)
			}
		}
		return nil
	})
}

// Statements are kept apart so both lib/pq and sqlite run them one at a time.
var schema = []string{
	// Surveys
	`CREATE TABLE IF NOT EXISTS survey (
    survey_id INTEGER PRIMARY KEY,
    title TEXT
)`,

	// Questions
	`CREATE TABLE IF NOT EXISTS question (
    question_id INTEGER PRIMARY KEY,
    question_text TEXT
)`,

	// Survey membership
	`CREATE TABLE IF NOT EXISTS survey_structure (
    survey_id INTEGER NOT NULL REFERENCES survey(survey_id) ON DELETE CASCADE,
    question_id INTEGER NOT NULL REFERENCES question(question_id) ON DELETE CASCADE,
    PRIMARY KEY (survey_id, question_id)
)`,

	// Respondents
	`CREATE TABLE IF NOT EXISTS survey_user (
    user_id INTEGER PRIMARY KEY,
    user_name TEXT
)`,

	// Answers
	`CREATE TABLE IF NOT EXISTS answer (
    user_id INTEGER NOT NULL REFERENCES survey_user(user_id) ON DELETE CASCADE,
    survey_id INTEGER NOT NULL REFERENCES survey(survey_id) ON DELETE CASCADE,
    question_id INTEGER NOT NULL REFERENCES question(question_id) ON DELETE CASCADE,
    answer_value INTEGER,
    PRIMARY KEY (user_id, survey_id, question_id)
)`,

	`CREATE INDEX IF NOT EXISTS idx_answer_survey ON answer(survey_id, user_id)`,
}
