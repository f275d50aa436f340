// Package http is the service's web boundary: the consult page, the
// consultation JSON API, the PDF download and the archive endpoints.
package http

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/DeepikaKgithub/PharmaGEN/internal/core"
	"github.com/DeepikaKgithub/PharmaGEN/internal/db"
	"github.com/DeepikaKgithub/PharmaGEN/internal/export"
	"github.com/DeepikaKgithub/PharmaGEN/internal/language"
	"github.com/DeepikaKgithub/PharmaGEN/internal/observability"
	"github.com/DeepikaKgithub/PharmaGEN/internal/session"
	"github.com/DeepikaKgithub/PharmaGEN/pkg"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 64 << 10

// Server bundles the dependencies the handlers need. It implements
// http.Handler; route dispatch is done by hand on the URL path. Archive
// and Events are nil when no database is configured, which disables the
// /api/archive endpoints.
type Server struct {
	consults  *core.Service
	archive   *db.Repository
	events    *db.Listener
	logger    *slog.Logger
	templates *template.Template
}

// NewServer constructs the HTTP boundary. The consult page template is
// embedded in the binary, so the server runs from any working directory.
func NewServer(consults *core.Service, archive *db.Repository, events *db.Listener, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		consults:  consults,
		archive:   archive,
		events:    events,
		logger:    logger,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Handler wraps the server in its middleware stack.
func (s *Server) Handler() http.Handler {
	return chain(s, withBodyLimit(maxBodyBytes), withCORS, withRequestLog(s.logger))
}

// ServeHTTP dispatches incoming requests based on the URL path.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleConsultPage(w, r)

	case path == "/healthz":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	case path == "/api/languages":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"languages": language.All()})

	case path == "/api/consultations":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleCreateConsultation(w, r)

	case strings.HasPrefix(path, "/api/consultations/"):
		s.routeConsultation(w, r, strings.TrimPrefix(path, "/api/consultations/"))

	case path == "/api/archive/recent":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleArchiveRecent(w, r)

	case path == "/api/archive/events":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleArchiveEvents(w, r)

	default:
		notFound(w)
	}
}

// routeConsultation handles /api/consultations/{id}[/...].
func (s *Server) routeConsultation(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		notFound(w)
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetConsultation(w, r, id)
	case len(parts) == 2 && parts[1] == "messages":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleMessage(w, r, id)
	case len(parts) == 2 && parts[1] == "reset":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleReset(w, r, id)
	case len(parts) == 2 && parts[1] == "report":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleReport(w, r, id)
	default:
		notFound(w)
	}
}

// handleConsultPage renders the chat UI.
func (s *Server) handleConsultPage(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Languages []language.Pair
	}{language.All()}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "consult.html", data); err != nil {
		observability.LoggerFromContext(r.Context()).Error("render consult page", "err", err)
	}
}

// handleCreateConsultation starts a fresh session. The body is ignored.
func (s *Server) handleCreateConsultation(w http.ResponseWriter, r *http.Request) {
	c, err := s.consults.Start(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"consultation_id": c.ID,
		"stage":           c.Stage,
	})
}

// handleGetConsultation returns the read-side view of a session.
func (s *Server) handleGetConsultation(w http.ResponseWriter, r *http.Request, id string) {
	c, err := s.consults.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

// handleMessage runs one dialogue turn. Empty text is forwarded as-is:
// the sequencer decides what an empty answer means at each stage.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request, id string) {
	var req pkg.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		badRequest(w, "invalid JSON body")
		return
	}

	res, c, err := s.consults.Message(r.Context(), id, req.Text)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg.MessageResponse{
		Reply:             res.Reply,
		Notice:            res.Notice,
		Stage:             c.Stage,
		EnglishSummary:    c.EnglishSummary,
		TranslatedSummary: c.TranslatedSummary,
		ReportReady:       c.ReportReady(),
	})
}

// handleReset starts the scripted dialogue over, keeping the same
// consultation ID.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, id string) {
	c, err := s.consults.Reset(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

// handleReport streams the rendered PDF, or 404s while no report exists.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, id string) {
	c, err := s.consults.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	doc, err := export.Render(c.TranslatedSummary, c.Language)
	if errors.Is(err, export.ErrNoSummary) {
		writeError(w, http.StatusNotFound, "report not ready")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	if _, err := w.Write(doc); err != nil {
		observability.LoggerFromContext(r.Context()).Warn("write report", "err", err)
	}
}

// handleArchiveRecent lists recently active consultations from the
// archive database.
func (s *Server) handleArchiveRecent(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "archive not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	rows, err := s.archive.ListRecent(r.Context(), limit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if rows == nil {
		rows = []pkg.ConsultationPreview{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"consultations": rows})
}

// handleArchiveEvents streams report-archived events over SSE until the
// client goes away.
func (s *Server) handleArchiveEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, "archive not configured")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub, cancel := s.events.Subscribe()
	defer cancel()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case id, open := <-sub:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: report\ndata: {\"consultation_id\":%q}\n\n", id)
			flusher.Flush()
		}
	}
}

// writeStoreError maps session store failures onto HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "consultation not found")
	case errors.Is(err, session.ErrVersionConflict):
		writeError(w, http.StatusConflict, "consultation was updated concurrently, retry")
	default:
		internalError(w, r, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
