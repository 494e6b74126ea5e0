// Package store handles SQLite persistence of correction history.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/anprowh/LanguageCorrector/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for correction history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS corrections (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			classifier TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS correction_tokens (
			correction_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			PRIMARY KEY (correction_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_corrections_created_at ON corrections(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertCorrection stores a correction and its tokens.
func (s *Store) InsertCorrection(ctx context.Context, c model.Correction) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO corrections (created_at, input, output, classifier) VALUES (?, ?, ?, ?)`,
		c.CreatedAt.UTC().Format(timeLayout),
		c.Input,
		c.Output,
		c.Classifier,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(c.Tokens) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO correction_tokens (correction_id, position, input, output, source, target)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, tok := range c.Tokens {
			if _, err := stmt.ExecContext(ctx, id, tok.Position, tok.Input, tok.Output, tok.Source, tok.Target); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListCorrections returns the most recent corrections, newest first, without tokens.
func (s *Store) ListCorrections(ctx context.Context, limit int) ([]model.Correction, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, input, output, classifier
		 FROM corrections
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Correction
	for rows.Next() {
		var c model.Correction
		var createdAt string
		if err := rows.Scan(&c.ID, &createdAt, &c.Input, &c.Output, &c.Classifier); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		c.CreatedAt = parsed
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListTokens returns the tokens of one correction in position order.
func (s *Store) ListTokens(ctx context.Context, correctionID int64) ([]model.TokenRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, input, output, source, target
		 FROM correction_tokens
		 WHERE correction_id = ?
		 ORDER BY position ASC`, correctionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.TokenRecord
	for rows.Next() {
		var tok model.TokenRecord
		if err := rows.Scan(&tok.Position, &tok.Input, &tok.Output, &tok.Source, &tok.Target); err != nil {
			return nil, err
		}
		result = append(result, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LayoutAggregates counts tokens per source/target pair over corrections
// created at or after since. A zero since counts everything.
func (s *Store) LayoutAggregates(ctx context.Context, since time.Time) ([]model.LayoutAggregate, error) {
	sinceArg := ""
	if !since.IsZero() {
		sinceArg = since.UTC().Format(timeLayout)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.source, t.target, COUNT(*) AS tokens,
			SUM(CASE WHEN t.input <> t.output THEN 1 ELSE 0 END) AS changed
		 FROM correction_tokens t
		 JOIN corrections c ON c.id = t.correction_id
		 WHERE (? = '' OR c.created_at >= ?)
		 GROUP BY t.source, t.target
		 ORDER BY tokens DESC, t.source ASC, t.target ASC`, sinceArg, sinceArg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LayoutAggregate
	for rows.Next() {
		var agg model.LayoutAggregate
		if err := rows.Scan(&agg.Source, &agg.Target, &agg.Tokens, &agg.Changed); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
