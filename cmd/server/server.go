package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Simplici0/renoquote/internal/logging"
	"github.com/Simplici0/renoquote/internal/pricing"
	"github.com/Simplici0/renoquote/internal/quotes"
	"github.com/Simplici0/renoquote/internal/ratecard"
)

// cardStore is the part of ratecard.Store the handlers use.
type cardStore interface {
	Active(ctx context.Context) (ratecard.Card, error)
	Get(ctx context.Context, version string) (ratecard.Card, error)
	Save(ctx context.Context, card ratecard.Card, activate bool) error
	Activate(ctx context.Context, version string) error
	List(ctx context.Context) ([]ratecard.Version, error)
}

type server struct {
	logger *slog.Logger
	cards  cardStore
	quotes quotes.Repository
	admin  *adminAuth
	engine atomic.Pointer[pricing.Engine]
	now    func() time.Time
}

func newServer(logger *slog.Logger, cards cardStore, repo quotes.Repository, adminToken string) *server {
	return &server{
		logger: logger,
		cards:  cards,
		quotes: repo,
		admin:  newAdminAuth(adminToken),
		now:    time.Now,
	}
}

// reloadEngine swaps in an engine built from the active card. Requests
// already running keep the engine they started with.
func (s *server) reloadEngine(ctx context.Context) error {
	card, err := s.cards.Active(ctx)
	if err != nil {
		return err
	}
	engine := pricing.NewEngine(card)
	s.engine.Store(&engine)
	s.logger.Info("rate card active", "version", card.Version)
	return nil
}

func (s *server) currentEngine() (*pricing.Engine, error) {
	engine := s.engine.Load()
	if engine == nil {
		return nil, ratecard.ErrNoActiveCard
	}
	return engine, nil
}

func (s *server) routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
			ExposedHeaders:   []string{"X-Trace-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/estimates", s.handleEstimate)
		r.Post("/estimates/range", s.handleEstimateRange)

		r.Get("/ratecard", s.handleActiveCard)
		r.Get("/ratecards", s.handleListCards)
		r.Get("/ratecards/{version}", s.handleGetCard)
		r.Group(func(r chi.Router) {
			r.Use(s.admin.middleware)
			r.Put("/ratecards/{version}", s.handlePutCard)
			r.Post("/ratecards/{version}/activate", s.handleActivateCard)
		})

		r.Post("/quotes", s.handleCreateQuote)
		r.Get("/quotes", s.handleListQuotes)
		r.Get("/quotes/{id}", s.handleGetQuote)
		r.Get("/quotes/{id}/text", s.handleQuoteText)
	})

	return r
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var in pricing.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if ferr := validateInput(&in); ferr != nil {
		writeError(w, http.StatusBadRequest, ferr.Message, ferr.Field)
		return
	}

	engine, err := s.currentEngine()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, engine.Estimate(in))
}

func (s *server) handleEstimateRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if ferr := validateRange(req); ferr != nil {
		writeError(w, http.StatusBadRequest, ferr.Message, ferr.Field)
		return
	}

	engine, err := s.currentEngine()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, engine.EstimateRange(req.AreaSqm, req.Bedrooms, req.Bathrooms, req.Kitchens))
}

func (s *server) handleActiveCard(w http.ResponseWriter, r *http.Request) {
	engine, err := s.currentEngine()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, engine.Card())
}

func (s *server) handleListCards(w http.ResponseWriter, r *http.Request) {
	versions, err := s.cards.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.cards.Get(r.Context(), chi.URLParam(r, "version"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *server) handlePutCard(w http.ResponseWriter, r *http.Request) {
	version := chi.URLParam(r, "version")
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	card, err := ratecard.Parse(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if card.Version != version {
		writeError(w, http.StatusBadRequest, "version in body does not match the URL", "version")
		return
	}

	activate := parseFlag(r.URL.Query().Get("activate"))
	if err := s.cards.Save(r.Context(), card, activate); err != nil {
		s.fail(w, r, err)
		return
	}
	loggerFrom(r.Context(), s.logger).Info("rate card saved", "version", version, "activate", activate)

	if activate {
		if err := s.reloadEngine(r.Context()); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, ratecard.Version{Version: card.Version, Active: activate, CreatedAt: s.now().UTC()})
}

func (s *server) handleActivateCard(w http.ResponseWriter, r *http.Request) {
	version := chi.URLParam(r, "version")
	if err := s.cards.Activate(r.Context(), version); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.reloadEngine(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"active": version})
}

func (s *server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if ferr := validateQuote(&req); ferr != nil {
		writeError(w, http.StatusBadRequest, ferr.Message, ferr.Field)
		return
	}

	engine, err := s.currentEngine()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := quotes.New(req.Title, req.Notes, req.Input, engine.Estimate(req.Input), s.now())
	saved, err := s.quotes.Create(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	loggerFrom(r.Context(), s.logger).Info("quote saved", "quote_id", saved.ID, "total", saved.Breakdown.Total)

	w.Header().Set("Location", "/api/v1/quotes/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	items, err := s.quotes.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	q, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(quotes.RenderText(q)))
}

func (s *server) loadQuote(w http.ResponseWriter, r *http.Request) (quotes.Quote, bool) {
	id := chi.URLParam(r, "id")
	if !quotes.ValidID(id) {
		s.fail(w, r, quotes.ErrNotFound)
		return quotes.Quote{}, false
	}
	q, err := s.quotes.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return quotes.Quote{}, false
	}
	return q, true
}

// fail maps known errors to their status code. Anything else is logged and
// reported as a 500 without details.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, quotes.ErrNotFound):
		writeError(w, http.StatusNotFound, "quote not found", "")
	case errors.Is(err, ratecard.ErrUnknownVersion):
		writeError(w, http.StatusNotFound, "rate card version not found", "")
	case errors.Is(err, ratecard.ErrInvalidCard):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "")
	case errors.Is(err, ratecard.ErrVersionExists), errors.Is(err, quotes.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, ratecard.ErrNoActiveCard):
		writeError(w, http.StatusServiceUnavailable, "no active rate card", "")
	default:
		loggerFrom(r.Context(), s.logger).Error("request failed", "http_path", r.URL.Path, logging.Err(err))
		writeError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func parseFlag(v string) bool {
	ok, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && ok
}
