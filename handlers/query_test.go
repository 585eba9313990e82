// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielhkuo/surveyview/db"
	"github.com/danielhkuo/surveyview/models"
	"github.com/danielhkuo/surveyview/query"
	"github.com/danielhkuo/surveyview/table"
	"github.com/danielhkuo/surveyview/testutil"
)

type failingQuery struct{ err error }

func (f failingQuery) ExecuteSelect(ctx context.Context, sqlText string) (*table.Table, error) {
	return nil, f.err
}

func TestRunQuery(t *testing.T) {
	store := testutil.SetupTestDB(t)
	testutil.SeedScenario(t, store)
	handler := NewQueryHandler(query.NewExecutor(store))

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		checkResponse  func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:           "select surveys",
			body:           models.QueryRequest{SQL: "SELECT survey_id FROM survey ORDER BY survey_id"},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp models.TableResponse
				testutil.AssertJSON(t, w, &resp)
				want := models.TableResponse{
					Columns:  []string{"survey_id"},
					Rows:     [][]any{{float64(1)}, {float64(2)}},
					RowCount: 2,
				}
				if diff := cmp.Diff(want, resp); diff != "" {
					t.Errorf("response mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:           "empty result keeps columns",
			body:           models.QueryRequest{SQL: "SELECT user_id FROM survey_user WHERE user_id < 0"},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				if !strings.Contains(w.Body.String(), `"rows":[]`) {
					t.Errorf("Expected empty rows array, got %s", w.Body.String())
				}
			},
		},
		{
			name:           "forbidden keyword",
			body:           models.QueryRequest{SQL: "DELETE FROM answer"},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if !strings.Contains(resp.Message, "DELETE") {
					t.Errorf("Expected message to name the keyword, got %q", resp.Message)
				}
			},
		},
		{
			name:           "keyword inside identifier is still rejected",
			body:           models.QueryRequest{SQL: "SELECT updated_at FROM survey"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing sql",
			body:           models.QueryRequest{SQL: "   "},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "syntax error",
			body:           models.QueryRequest{SQL: "SELECT FROM WHERE"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/query", tt.body, nil)
			w := httptest.NewRecorder()
			handler.RunQuery(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestRunQuery_InvalidJSON(t *testing.T) {
	handler := NewQueryHandler(failingQuery{})

	req := httptest.NewRequest("POST", "/query", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.RunQuery(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestRunQuery_ConnectionError(t *testing.T) {
	handler := NewQueryHandler(failingQuery{err: &db.ConnectionError{Op: "acquire", Err: errors.New("refused")}})

	req := testutil.MakeRequest("POST", "/query", models.QueryRequest{SQL: "SELECT 1"}, nil)
	w := httptest.NewRecorder()
	handler.RunQuery(w, req)

	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
}
