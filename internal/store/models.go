package store

import "time"

// QueryRecord is one handled question: what was asked, how it was classified,
// and the SQL that came out (empty for chat and data-less report requests).
type QueryRecord struct {
	ID           string    `json:"id"` // UUID
	Question     string    `json:"question"`
	ActionType   string    `json:"action_type"`
	GeneratedSQL string    `json:"generated_sql,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SQLExample is a curated question/SQL pair submitted as feedback; examples
// are also pushed into the vector index so retrieval can surface them as
// hints.
type SQLExample struct {
	ID        int64     `json:"id"`
	Prompt    string    `json:"prompt"`
	SQL       string    `json:"sql"`
	CreatedAt time.Time `json:"created_at"`
}
