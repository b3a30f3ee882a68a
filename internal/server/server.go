// Package server exposes the search page and the JSON/HTML endpoints it calls.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/vicinity/internal/models"
	"github.com/UnknownOlympus/vicinity/internal/presenter"
	"github.com/UnknownOlympus/vicinity/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionCookie holds the id of the browser's search session.
const SessionCookie = "vicinity_session"

// historyLimit caps the entries returned by /api/history.
const historyLimit = 20

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Locator resolves the submitted location into the search origin.
type Locator interface {
	Resolve(ctx context.Context, placeID, address string) (*models.Place, error)
}

// Suggester lists address suggestions for a partial input.
type Suggester interface {
	Autocomplete(ctx context.Context, input string) ([]models.Suggestion, error)
}

// HistoryReader lists the latest searches of a session.
type HistoryReader interface {
	RecentSearches(ctx context.Context, sessionID string, limit int) ([]models.SearchRecord, error)
}

// Pinger checks the health of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options collects the collaborators of a Server. History and DB are optional.
type Options struct {
	Log       *slog.Logger
	Sessions  *session.Store
	Locator   Locator
	Suggester Suggester
	Popups    *presenter.PopupRenderer
	History   HistoryReader
	DB        Pinger
	Gatherer  prometheus.Gatherer
	MapsKey   string // MapsKey is handed to the page for the map tiles script.
}

// Server serves the search page and its API.
type Server struct {
	log       *slog.Logger
	sessions  *session.Store
	locator   Locator
	suggester Suggester
	popups    *presenter.PopupRenderer
	history   HistoryReader
	db        Pinger
	gatherer  prometheus.Gatherer
	mapsKey   string
}

// New creates a Server.
func New(opts Options) *Server {
	return &Server{
		log:       opts.Log,
		sessions:  opts.Sessions,
		locator:   opts.Locator,
		suggester: opts.Suggester,
		popups:    opts.Popups,
		history:   opts.History,
		db:        opts.DB,
		gatherer:  opts.Gatherer,
		mapsKey:   opts.MapsKey,
	}
}

// Handler returns the router with every endpoint registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/autocomplete", s.handleAutocomplete)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("GET /api/markers", s.handleMarkers)
	mux.HandleFunc("GET /api/places/{id}/popup", s.handlePopup)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return mux
}

// Run listens on port until ctx is canceled, then shuts the server down gracefully.
//
// Parameters:
// - ctx: A context.Context whose cancellation stops the server.
// - port: The port number on which the server will listen.
func (s *Server) Run(ctx context.Context, port int) error {
	readTimeout := 5
	writeTimeout := 30
	shutdownTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting http server", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(shutdownTimeout)*time.Second)
	defer cancel()

	s.log.InfoContext(ctx, "Shutting down http server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	return nil
}

// session returns the caller's session, starting one and setting the cookie when needed.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		id = cookie.Value
	}

	sess, created := s.sessions.GetOrCreate(id)
	if created {
		s.log.DebugContext(r.Context(), "New session started", "session", sess.ID)
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return sess
}
