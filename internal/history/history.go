// Package history keeps a SQLite log of the documents each merge batch
// produced.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"pdfmerge/internal/errors"
	"pdfmerge/internal/log"
	"pdfmerge/pkg/types"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed db/schema.sql
var dbFS embed.FS

// Entry is one subdirectory outcome within a batch.
type Entry struct {
	ID        string
	BatchID   string
	CreatedAt time.Time
	Root      string
	Subdir    string
	Mode      string
	Output    string
	Inputs    []string
	Success   bool
	Error     string
}

// Repository stores merge history in SQLite.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path. An empty path opens
// an in-memory database.
func Open(path string) (*Repository, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.NewFileError("cannot create history directory", filepath.Dir(path), errors.FileOperationFailed, err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to open SQLite database", err).
			WithOperation("open").WithContext("path", dsn)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	schema, err := dbFS.ReadFile("db/schema.sql")
	if err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("failed to read schema SQL", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("failed to initialize database schema", err).WithOperation("migrate")
	}

	return &Repository{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Record stores every non-skipped result under a fresh batch ID.
func (r *Repository) Record(ctx context.Context, root string, mode types.SelectionMode, results []types.MergeResult) (string, error) {
	batchID := uuid.New().String()
	created := r.now().UTC().Format(time.RFC3339Nano)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.NewDatabaseError("failed to begin transaction", err).WithOperation("record")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO merges (id, batch_id, created_at, root, subdir, mode, output, inputs, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", errors.NewDatabaseError("failed to prepare insert", err).WithOperation("record")
	}
	defer stmt.Close()

	n := 0
	for _, res := range results {
		if res.Skipped {
			continue
		}
		inputs, err := json.Marshal(res.Inputs)
		if err != nil {
			return "", errors.NewDatabaseError("failed to encode inputs", err).WithOperation("record")
		}
		var msg string
		if res.Error != nil {
			msg = res.Error.Error()
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), batchID, created, root, filepath.Base(res.Dir),
			mode.String(), res.Output, string(inputs), res.Error == nil, msg,
		); err != nil {
			return "", errors.NewDatabaseError("failed to save merge record", err).
				WithOperation("record").WithContext("output", res.Output)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return "", errors.NewDatabaseError("failed to commit merge records", err).WithOperation("record")
	}
	log.LogWithFields(log.F("batch", batchID), log.F("entries", n)).Debug("Recorded merge batch")
	return batchID, nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, batch_id, created_at, root, subdir, mode, output, inputs, success, error
		FROM merges
		ORDER BY created_at DESC, rowid DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

// Batch returns the entries of one batch in insertion order.
func (r *Repository) Batch(ctx context.Context, batchID string) ([]Entry, error) {
	if batchID == "" {
		return nil, errors.NewInvalidInputError("batch ID cannot be empty", nil)
	}
	return r.query(ctx, `
		SELECT id, batch_id, created_at, root, subdir, mode, output, inputs, success, error
		FROM merges
		WHERE batch_id = ?
		ORDER BY rowid
	`, batchID)
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to query merge history", err).WithOperation("query")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
			inputs  string
		)
		if err := rows.Scan(&e.ID, &e.BatchID, &created, &e.Root, &e.Subdir, &e.Mode,
			&e.Output, &inputs, &e.Success, &e.Error); err != nil {
			return nil, errors.NewDatabaseError("failed to scan merge record", err).WithOperation("query")
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, errors.NewDatabaseError("invalid timestamp in merge record", err).WithContext("id", e.ID)
		}
		if err := json.Unmarshal([]byte(inputs), &e.Inputs); err != nil {
			return nil, errors.NewDatabaseError("invalid inputs in merge record", err).WithContext("id", e.ID)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("failed to read merge history", err).WithOperation("query")
	}
	return entries, nil
}
