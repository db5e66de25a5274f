// Package quotes stores priced estimates as immutable snapshots. A saved
// quote keeps the input and the breakdown exactly as computed; reading it
// back never re-prices it against a newer rate card.
package quotes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/Simplici0/renoquote/internal/pricing"
)

var (
	ErrNotFound  = errors.New("quote not found")
	ErrDuplicate = errors.New("quote already exists")
)

// TimeLayout is the fixed-width UTC layout used for created_at, so text
// ordering matches chronological ordering in every backend.
const TimeLayout = "2006-01-02T15:04:05.000Z"

type Quote struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Title     string            `json:"title,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	Input     pricing.Input     `json:"input"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// ListItem is the summary returned by List.
type ListItem struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Title           string    `json:"title,omitempty"`
	RateCardVersion string    `json:"ratecard_version"`
	Total           float64   `json:"total"`
}

// Repository persists quotes.
type Repository interface {
	Create(ctx context.Context, q Quote) (Quote, error)
	Get(ctx context.Context, id string) (Quote, error)
	// List returns quotes newest first. A non-empty query keeps quotes whose
	// title or notes contain it, ignoring case.
	List(ctx context.Context, query string) ([]ListItem, error)
}

// New builds a quote snapshot with a fresh id.
func New(title, notes string, in pricing.Input, b pricing.Breakdown, now time.Time) Quote {
	return Quote{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC().Truncate(time.Millisecond),
		Title:     strings.TrimSpace(title),
		Notes:     strings.TrimSpace(notes),
		Input:     in,
		Breakdown: b,
	}
}

// ValidID reports whether id is a canonical quote id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

// matches reports whether title or notes contain query under Unicode case
// folding. Both repositories filter through it.
func matches(title, notes, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	fold := cases.Fold()
	q := fold.String(query)
	return strings.Contains(fold.String(title), q) || strings.Contains(fold.String(notes), q)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
