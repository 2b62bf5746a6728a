package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS query_history (
        id TEXT PRIMARY KEY, -- UUID
        question TEXT NOT NULL,
        action_type TEXT NOT NULL CHECK (action_type IN ('SQL', 'REPORT', 'GENERAL_CHAT')),
        generated_sql TEXT NOT NULL DEFAULT '',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS sql_examples (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        prompt TEXT NOT NULL,
        sql_text TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// RecordQuery appends one handled question to the history.
func (s *SQLiteStore) RecordQuery(question string, actionType string, generatedSQL string) error {
	stmt, err := s.db.Prepare("INSERT INTO query_history (id, question, action_type, generated_sql, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(uuid.NewString(), question, actionType, generatedSQL, time.Now())
	if err != nil {
		return fmt.Errorf("failed to execute history insert: %w", err)
	}
	return nil
}

// ListQueries returns the most recent history entries, newest first.
func (s *SQLiteStore) ListQueries(limit, offset int) ([]QueryRecord, error) {
	query := "SELECT id, question, action_type, generated_sql, created_at FROM query_history ORDER BY created_at DESC LIMIT ? OFFSET ?"
	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []QueryRecord
	for rows.Next() {
		var rec QueryRecord
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.ActionType, &rec.GeneratedSQL, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// AddExample stores a curated question/SQL pair.
func (s *SQLiteStore) AddExample(prompt, sqlText string) (*SQLExample, error) {
	res, err := s.db.Exec("INSERT INTO sql_examples (prompt, sql_text, created_at) VALUES (?, ?, ?)", prompt, sqlText, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to insert sql example: %w", err)
	}
	id, _ := res.LastInsertId()

	var example SQLExample
	err = s.db.QueryRow("SELECT id, prompt, sql_text, created_at FROM sql_examples WHERE id = ?", id).
		Scan(&example.ID, &example.Prompt, &example.SQL, &example.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read back sql example: %w", err)
	}
	return &example, nil
}

// ListExamples returns all curated examples in insertion order.
func (s *SQLiteStore) ListExamples() ([]SQLExample, error) {
	rows, err := s.db.Query("SELECT id, prompt, sql_text, created_at FROM sql_examples ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query sql examples: %w", err)
	}
	defer rows.Close()

	var examples []SQLExample
	for rows.Next() {
		var example SQLExample
		if err := rows.Scan(&example.ID, &example.Prompt, &example.SQL, &example.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sql example row: %w", err)
		}
		examples = append(examples, example)
	}
	return examples, rows.Err()
}
