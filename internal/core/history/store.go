package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages upload history persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a new history store at the given path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS uploads (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			file_name   TEXT NOT NULL,
			file_type   INTEGER NOT NULL,
			company_id  TEXT,
			size        INTEGER,
			success     INTEGER NOT NULL,
			error       TEXT,
			response    TEXT,
			duration_ns INTEGER,
			timestamp   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_uploads_timestamp ON uploads(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_uploads_name ON uploads(file_name);
	`)
	if err != nil {
		return fmt.Errorf("creating uploads table: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, file_name, file_type, company_id, size, success, error, response, duration_ns, timestamp FROM uploads`

// Add inserts a new history entry.
func (s *Store) Add(e Entry) (int64, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	result, err := s.db.Exec(`
		INSERT INTO uploads (file_name, file_type, company_id, size, success, error, response, duration_ns, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.FileName, e.FileType, e.CompanyID, e.Size, e.Success,
		e.Error, e.Response, e.Duration.Nanoseconds(),
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting history: %w", err)
	}
	return result.LastInsertId()
}

// List returns the most recent entries.
func (s *Store) List(limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(selectColumns+`
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListFiltered returns entries matching every non-zero field of f.
func (s *Store) ListFiltered(f Filter) ([]Entry, error) {
	var where []string
	var args []any
	if f.FileName != "" {
		where = append(where, "file_name LIKE ?")
		args = append(args, "%"+f.FileName+"%")
	}
	if f.FileType != 0 {
		where = append(where, "file_type = ?")
		args = append(args, f.FileType)
	}
	if f.CompanyID != "" {
		where = append(where, "company_id = ?")
		args = append(args, f.CompanyID)
	}
	if f.Failed {
		where = append(where, "success = 0")
	}
	if !f.Since.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("filtering history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM uploads").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

// Delete removes a single entry.
func (s *Store) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM uploads WHERE id = ?", id)
	return err
}

// Clear removes all history entries.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM uploads")
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var companyID, errText, response sql.NullString
		var durationNs int64
		var ts string
		err := rows.Scan(&e.ID, &e.FileName, &e.FileType, &companyID, &e.Size,
			&e.Success, &errText, &response, &durationNs, &ts)
		if err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.CompanyID = companyID.String
		e.Error = errText.String
		e.Response = response.String
		e.Duration = time.Duration(durationNs)
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
