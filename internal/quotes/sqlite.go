package quotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository stores quotes in the quotes table.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, q Quote) (Quote, error) {
	inputJSON, err := json.Marshal(q.Input)
	if err != nil {
		return Quote{}, fmt.Errorf("encode quote input: %w", err)
	}
	breakdownJSON, err := json.Marshal(q.Breakdown)
	if err != nil {
		return Quote{}, fmt.Errorf("encode quote breakdown: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO quotes (id, created_at, title, notes, ratecard_version, total, input_json, breakdown_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, formatTime(q.CreatedAt), nullIfEmpty(q.Title), nullIfEmpty(q.Notes),
		q.Breakdown.RateCardVersion, q.Breakdown.Total, string(inputJSON), string(breakdownJSON))
	if err != nil {
		if isConstraintError(err) {
			return Quote{}, ErrDuplicate
		}
		return Quote{}, fmt.Errorf("insert quote: %w", err)
	}
	return q, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (Quote, error) {
	var (
		q                        Quote
		createdAt                string
		title, notes             sql.NullString
		inputJSON, breakdownJSON string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, title, notes, input_json, breakdown_json
		FROM quotes
		WHERE id = ?
	`, id).Scan(&q.ID, &createdAt, &title, &notes, &inputJSON, &breakdownJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, ErrNotFound
	}
	if err != nil {
		return Quote{}, fmt.Errorf("query quote %s: %w", id, err)
	}

	if q.CreatedAt, err = parseTime(createdAt); err != nil {
		return Quote{}, fmt.Errorf("parse quote created_at %q: %w", createdAt, err)
	}
	q.Title = title.String
	q.Notes = notes.String
	if err := json.Unmarshal([]byte(inputJSON), &q.Input); err != nil {
		return Quote{}, fmt.Errorf("decode quote input: %w", err)
	}
	if err := json.Unmarshal([]byte(breakdownJSON), &q.Breakdown); err != nil {
		return Quote{}, fmt.Errorf("decode quote breakdown: %w", err)
	}
	return q, nil
}

func (r *SQLiteRepository) List(ctx context.Context, query string) ([]ListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, COALESCE(title, ''), COALESCE(notes, ''), ratecard_version, total
		FROM quotes
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	// Filtering happens here rather than with LIKE, which folds ASCII only.
	items := make([]ListItem, 0)
	for rows.Next() {
		var item ListItem
		var createdAt, notes string
		if err := rows.Scan(&item.ID, &createdAt, &item.Title, &notes, &item.RateCardVersion, &item.Total); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		if !matches(item.Title, notes, query) {
			continue
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse quote created_at %q: %w", createdAt, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return items, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isConstraintError(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
