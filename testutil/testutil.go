// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/surveyview/cliparse"
	"github.com/danielhkuo/surveyview/db"
)

// SetupTestDB creates a fresh SQLite database under t.TempDir() with the full schema
func SetupTestDB(t *testing.T) *db.Store {
	t.Helper()

	store, err := db.Open(context.Background(), db.TypeSQLite, filepath.Join(t.TempDir(), "survey.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.CreateSchema(context.Background()); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return store
}

// GetTestConfig returns a standard test configuration rooted in t.TempDir()
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()

	dir := t.TempDir()
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    filepath.Join(dir, "survey.db"),
		DatabaseType:   db.TypeSQLite,
		ViewName:       cliparse.DefaultViewName,
		CheckpointPath: filepath.Join(dir, "data", "survey_data_last_checkpoint.txt"),
		LogFile:        "-",
		LogLevel:       "info",
		AdminKeySalt:   "test-admin-salt",
	}
}

// CreateTestSurvey inserts a survey with the given question ids as members.
// Questions are created if they do not exist yet.
func CreateTestSurvey(t *testing.T, store *db.Store, surveyID int64, questionIDs ...int64) {
	t.Helper()

	raw := store.RawDB()
	if _, err := raw.Exec(`INSERT INTO survey (survey_id, title) VALUES (?, ?)`, surveyID, "Survey"); err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}

	for _, qid := range questionIDs {
		CreateTestQuestion(t, store, qid)
		if _, err := raw.Exec(`INSERT INTO survey_structure (survey_id, question_id) VALUES (?, ?)`, surveyID, qid); err != nil {
			t.Fatalf("Failed to link question %d to survey %d: %v", qid, surveyID, err)
		}
	}
}

// CreateTestQuestion inserts a question if it does not exist yet
func CreateTestQuestion(t *testing.T, store *db.Store, questionID int64) {
	t.Helper()

	_, err := store.RawDB().Exec(`
		INSERT INTO question (question_id, question_text)
		VALUES (?, ?)
		ON CONFLICT (question_id) DO NOTHING
	`, questionID, "Question")
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}
}

// CreateTestUser inserts a respondent
func CreateTestUser(t *testing.T, store *db.Store, userID int64) {
	t.Helper()

	if _, err := store.RawDB().Exec(`INSERT INTO survey_user (user_id, user_name) VALUES (?, ?)`, userID, "User"); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
}

// AddTestAnswer records one answer value
func AddTestAnswer(t *testing.T, store *db.Store, userID, surveyID, questionID, value int64) {
	t.Helper()

	_, err := store.RawDB().Exec(`
		INSERT INTO answer (user_id, survey_id, question_id, answer_value)
		VALUES (?, ?, ?, ?)
	`, userID, surveyID, questionID, value)
	if err != nil {
		t.Fatalf("Failed to create test answer: %v", err)
	}
}

// SeedScenario loads two surveys over three questions:
// survey 1 = {Q1, Q2}, survey 2 = {Q2, Q3}.
// User 10 answers Q1 in survey 1 only; user 20 answers Q2 and Q3 in survey 2.
func SeedScenario(t *testing.T, store *db.Store) {
	t.Helper()

	CreateTestSurvey(t, store, 1, 1, 2)
	CreateTestSurvey(t, store, 2, 2, 3)

	CreateTestUser(t, store, 10)
	CreateTestUser(t, store, 20)
	CreateTestUser(t, store, 30) // never answers

	AddTestAnswer(t, store, 10, 1, 1, 4)
	AddTestAnswer(t, store, 20, 2, 2, 5)
	AddTestAnswer(t, store, 20, 2, 3, 1)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
