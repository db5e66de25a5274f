package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/renoquote/internal/ratecard"
)

// Config contains the values required by startup seed.
type Config struct {
	// Card is always stored. It becomes active only when nothing else is.
	Card ratecard.Card
	// Override, when set, is stored and made the active card.
	Override *ratecard.Card
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureCard(ctx, tx, cfg.Card, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	target := ""
	if cfg.Override != nil {
		if err := ensureCard(ctx, tx, *cfg.Override, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
		target = cfg.Override.Version
	}

	active, err := activeVersion(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if target == "" && active == "" {
		target = cfg.Card.Version
	}
	if target != "" && target != active {
		if err := activate(ctx, tx, target, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureCard(ctx context.Context, tx *sql.Tx, card ratecard.Card, stats *Stats) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("seed rate card %s: %w", card.Version, err)
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rate_cards WHERE version = ? LIMIT 1)`, card.Version).Scan(&exists); err != nil {
		return fmt.Errorf("check rate card existence: %w", err)
	}
	if exists {
		return nil
	}

	body, err := ratecard.Marshal(card)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rate_cards (version, body_json, active, created_at)
		VALUES (?, ?, ?, ?)
	`, card.Version, string(body), false, time.Now().UTC().Format(ratecard.TimeLayout)); err != nil {
		return fmt.Errorf("insert rate card %s: %w", card.Version, err)
	}
	stats.Inserts++
	return nil
}

func activeVersion(ctx context.Context, tx *sql.Tx) (string, error) {
	var version string
	err := tx.QueryRowContext(ctx, `SELECT version FROM rate_cards WHERE active = TRUE LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query active rate card: %w", err)
	}
	return version, nil
}

func activate(ctx context.Context, tx *sql.Tx, version string, stats *Stats) error {
	if _, err := tx.ExecContext(ctx, `UPDATE rate_cards SET active = FALSE WHERE active = TRUE`); err != nil {
		return fmt.Errorf("deactivate rate cards: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE rate_cards SET active = TRUE WHERE version = ?`, version); err != nil {
		return fmt.Errorf("activate rate card %s: %w", version, err)
	}
	stats.Updates++
	return nil
}
