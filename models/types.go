package models

import "time"

// Export format constants
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Request types

type QueryRequest struct {
	SQL string `json:"sql"`
}

// Response types

type TableResponse struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

type RefreshResponse struct {
	View        string    `json:"view"`
	Outcome     string    `json:"outcome"`
	Rebuilt     bool      `json:"rebuilt"`
	Previous    string    `json:"previous_checkpoint,omitempty"`
	Checkpoint  string    `json:"checkpoint"`
	RowCount    int       `json:"row_count"`
	CompletedAt time.Time `json:"completed_at"`
}

type CheckpointResponse struct {
	View        string `json:"view"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Exists      bool   `json:"exists"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
