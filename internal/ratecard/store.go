package ratecard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoActiveCard   = errors.New("no active rate card")
	ErrVersionExists  = errors.New("rate card version already exists")
	ErrUnknownVersion = errors.New("unknown rate card version")
)

// TimeLayout is the fixed-width UTC layout used for created_at columns, so
// text ordering matches chronological ordering.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Version describes a stored rate card without its body.
type Version struct {
	Version   string    `json:"version"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists rate card versions in the rate_cards table. Exactly one
// version is active at a time.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Active returns the currently active card.
func (s *Store) Active(ctx context.Context) (Card, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body_json
		FROM rate_cards
		WHERE active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, ErrNoActiveCard
	}
	if err != nil {
		return Card{}, fmt.Errorf("query active rate card: %w", err)
	}
	return Parse([]byte(body))
}

// Get returns a stored card by version.
func (s *Store) Get(ctx context.Context, version string) (Card, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body_json FROM rate_cards WHERE version = ?`, version).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, ErrUnknownVersion
	}
	if err != nil {
		return Card{}, fmt.Errorf("query rate card %s: %w", version, err)
	}
	return Parse([]byte(body))
}

// Save stores a new version. Versions are immutable; saving an existing
// version returns ErrVersionExists. When activate is set the new version
// replaces the active one in the same transaction.
func (s *Store) Save(ctx context.Context, card Card, activate bool) error {
	if err := card.Validate(); err != nil {
		return err
	}
	body, err := Marshal(card)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rate card transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rate_cards WHERE version = ?)`, card.Version).Scan(&exists); err != nil {
		return fmt.Errorf("check rate card existence: %w", err)
	}
	if exists {
		return ErrVersionExists
	}

	if activate {
		if _, err := tx.ExecContext(ctx, `UPDATE rate_cards SET active = FALSE WHERE active = TRUE`); err != nil {
			return fmt.Errorf("deactivate rate cards: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rate_cards (version, body_json, active, created_at)
		VALUES (?, ?, ?, ?)
	`, card.Version, string(body), activate, time.Now().UTC().Format(TimeLayout)); err != nil {
		return fmt.Errorf("insert rate card: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rate card: %w", err)
	}
	return nil
}

// Activate makes a stored version the active one.
func (s *Store) Activate(ctx context.Context, version string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE rate_cards SET active = FALSE WHERE active = TRUE`); err != nil {
		return fmt.Errorf("deactivate rate cards: %w", err)
	}
	result, err := tx.ExecContext(ctx, `UPDATE rate_cards SET active = TRUE WHERE version = ?`, version)
	if err != nil {
		return fmt.Errorf("activate rate card: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate rate card: %w", err)
	}
	if affected == 0 {
		return ErrUnknownVersion
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activate: %w", err)
	}
	return nil
}

// List returns all stored versions, newest first.
func (s *Store) List(ctx context.Context) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version, active, created_at
		FROM rate_cards
		ORDER BY created_at DESC, version DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rate cards: %w", err)
	}
	defer rows.Close()

	versions := make([]Version, 0)
	for rows.Next() {
		var v Version
		var createdAt string
		if err := rows.Scan(&v.Version, &v.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("scan rate card: %w", err)
		}
		if v.CreatedAt, err = time.Parse(TimeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse rate card created_at %q: %w", createdAt, err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate cards: %w", err)
	}
	return versions, nil
}
