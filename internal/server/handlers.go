package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/UnknownOlympus/vicinity/internal/models"
	"github.com/UnknownOlympus/vicinity/internal/service"
	"github.com/UnknownOlympus/vicinity/internal/session"
)

// Texts returned to the page for unusable location input.
const (
	MsgEnterAddress = "Ingrese una direccion"
	msgNoDetails    = "No hay detalles disponibles para: '%s'"
)

type pageView struct {
	MapsKey string
	Center  models.Location
	Radius  int
	Table   template.HTML
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	snapshot := sess.Snapshot()

	var table bytes.Buffer
	if err := sess.RenderTable(&table); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render results table", "session", sess.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	view := pageView{
		MapsKey: s.mapsKey,
		Center:  snapshot.Center,
		Radius:  snapshot.Radius,
		// The table template escapes every value it prints.
		Table: template.HTML(table.String()),
	}

	var page bytes.Buffer
	if err := pageTmpl.Execute(&page, view); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.write(w, r, page.Bytes())
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	input := strings.TrimSpace(r.URL.Query().Get("input"))
	if input == "" {
		s.writeJSON(w, r, http.StatusOK, []models.Suggestion{})
		return
	}

	suggestions, err := s.suggester.Autocomplete(r.Context(), input)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Autocomplete failed", "input", input, "error", err)
		s.writeJSON(w, r, http.StatusBadGateway, []models.Suggestion{})
		return
	}

	s.writeJSON(w, r, http.StatusOK, suggestions)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, MsgEnterAddress, http.StatusBadRequest)
		return
	}

	sess := s.session(w, r)
	placeID := r.PostFormValue("place_id")
	address := r.PostFormValue("address")

	origin, err := s.locator.Resolve(ctx, placeID, address)
	if errors.Is(err, service.ErrEmptyAddress) {
		http.Error(w, MsgEnterAddress, http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.WarnContext(ctx, "Could not resolve search origin", "session", sess.ID, "error", err)
		http.Error(w, fmt.Sprintf(msgNoDetails, inputName(placeID, address)), http.StatusUnprocessableEntity)
		return
	}

	if _, err = sess.Search(ctx, *origin, r.PostFormValue("radius")); err != nil {
		if errors.Is(err, session.ErrNoGeometry) {
			http.Error(w, fmt.Sprintf(msgNoDetails, origin.Name), http.StatusUnprocessableEntity)
			return
		}
		s.log.ErrorContext(ctx, "Search failed", "session", sess.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var table bytes.Buffer
	if err = sess.RenderTable(&table); err != nil {
		s.log.ErrorContext(ctx, "Failed to render results table", "session", sess.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.write(w, r, table.Bytes())
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.session(w, r).Snapshot())
}

func (s *Server) handlePopup(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	var popup bytes.Buffer
	err := sess.Popup(r.Context(), &popup, r.PathValue("id"), s.popups)
	if errors.Is(err, session.ErrMarkerNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render popup", "session", sess.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.write(w, r, popup.Bytes())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.NotFound(w, r)
		return
	}

	sess := s.session(w, r)
	records, err := s.history.RecentSearches(r.Context(), sess.ID, historyLimit)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to read search history", "session", sess.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, r, http.StatusOK, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
	}

	w.WriteHeader(status)
	s.write(w, r, []byte(body))

	s.log.DebugContext(ctx, "Health checks completed", "status", status)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	s.write(w, r, body)
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, body []byte) {
	if _, err := w.Write(body); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

func inputName(placeID, address string) string {
	if address != "" {
		return address
	}
	return placeID
}
