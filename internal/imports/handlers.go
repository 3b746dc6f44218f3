package imports

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tarekulislam03/medix-v1-sub001/internal/common"
	"github.com/tarekulislam03/medix-v1-sub001/internal/obs"
)

// Handler wires staging sessions to HTTP.
type Handler struct {
	Manager        *Manager
	Extractor      Extractor
	Reconciler     Reconciler
	Logger         zerolog.Logger
	MaxUploadBytes int64
}

// Routes mounts the import endpoints on the provided router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/file", h.SelectFile)
	r.Post("/{id}/submit", h.Submit)
	r.Patch("/{id}/rows/{index}", h.UpdateRow)
	r.Delete("/{id}/rows/{index}", h.DeleteRow)
	r.Post("/{id}/confirm", h.Confirm)
	r.Post("/{id}/reset", h.Reset)
	r.Delete("/{id}", h.Dispose)
}

// Create starts a new idle staging session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Manager == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "import manager not configured", nil)
		return
	}
	s := h.Manager.Create()
	common.JSON(w, http.StatusCreated, map[string]any{"data": s.Snapshot()})
}

// Get returns the session snapshot.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": s.Snapshot()})
}

// SelectFile stages the uploaded document locally; no extraction happens yet.
func (h *Handler) SelectFile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	maxBytes := h.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart payload", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "file field is required", nil)
		return
	}
	defer func() { _ = file.Close() }()
	contents, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unable to read file", nil)
		return
	}
	if err := s.SelectFile(header.Filename, contents); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": s.Snapshot()})
}

// Submit sends the staged document to the extraction service and populates
// the review list from its response.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.Extractor == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "extraction service not configured", nil)
		return
	}
	gen, name, contents, err := s.BeginUpload()
	if err != nil {
		h.writeError(w, err)
		return
	}
	lines, err := h.Extractor.Extract(r.Context(), name, contents)
	if err != nil {
		if s.FailUpload(gen, err.Error()) {
			h.Logger.Warn().Err(err).Str("session", s.ID.String()).Msg("bill extraction failed")
		}
		countExtraction("error")
		common.JSONError(w, http.StatusBadGateway, "EXTRACTION_FAILED", err.Error(), nil)
		return
	}
	if !s.CompleteUpload(gen, lines) {
		// the session was reset while the request was in flight
		common.JSONError(w, http.StatusConflict, "SESSION_RESET", "session was reset during upload", nil)
		return
	}
	countExtraction("ok")
	common.JSON(w, http.StatusOK, map[string]any{"data": s.Snapshot()})
}

// UpdateRow edits one staged row in place.
func (h *Handler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := h.rowIndex(w, r)
	if !ok {
		return
	}
	var upd RowUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if upd.Quantity != nil && *upd.Quantity < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "quantity must not be negative", nil)
		return
	}
	if err := s.UpdateRow(index, upd); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": s.Snapshot()})
}

// DeleteRow removes one staged row.
func (h *Handler) DeleteRow(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := h.rowIndex(w, r)
	if !ok {
		return
	}
	if err := s.DeleteRow(index); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": s.Snapshot()})
}

// Confirm commits the staged list through the reconciler. A failed commit
// keeps the rows for correction and retry.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.Reconciler == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "reconciler not configured", nil)
		return
	}
	gen, lines, err := s.BeginCommit()
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.Reconciler.Apply(r.Context(), lines); err != nil {
		if s.FailCommit(gen, err.Error()) {
			h.Logger.Warn().Err(err).Str("session", s.ID.String()).Int("rows", len(lines)).Msg("import commit failed")
		}
		countCommit("error", 0)
		common.JSONError(w, http.StatusBadGateway, "COMMIT_FAILED", err.Error(), nil)
		return
	}
	if !s.CompleteCommit(gen) {
		common.JSONError(w, http.StatusConflict, "SESSION_RESET", "session was reset during commit", nil)
		return
	}
	countCommit("ok", len(lines))
	h.Logger.Info().Str("session", s.ID.String()).Int("rows", len(lines)).Msg("import committed")
	common.JSON(w, http.StatusOK, map[string]any{"data": s.Snapshot()})
}

// Reset returns the session to idle, abandoning any in-flight work.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Reset()
	common.JSON(w, http.StatusOK, map[string]any{"data": s.Snapshot()})
}

// Dispose removes the session entirely.
func (h *Handler) Dispose(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Reset()
	h.Manager.Remove(s.ID)
	common.JSON(w, http.StatusOK, map[string]any{"data": nil})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	if h.Manager == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "import manager not configured", nil)
		return nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid session id", nil)
		return nil, false
	}
	s, ok := h.Manager.Get(id)
	if !ok {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "session not found", nil)
		return nil, false
	}
	return s, true
}

func (h *Handler) rowIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index := common.AtoiDefault(chi.URLParam(r, "index"), -1)
	if index < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid row index", nil)
		return 0, false
	}
	return index, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoFile):
		err = common.NewAppError("NO_FILE", err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrNoRows):
		err = common.NewAppError("NO_ROWS", err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrRowOutOfRange):
		err = common.NewAppError("ROW_NOT_FOUND", err.Error(), http.StatusNotFound, err)
	case errors.Is(err, ErrWrongState):
		err = common.NewAppError("WRONG_STATE", err.Error(), http.StatusConflict, err)
	}
	if !common.IsAppError(err) {
		h.Logger.Error().Err(err).Msg("import handler")
	}
	common.Render(w, err)
}

func countExtraction(result string) {
	if obs.ImportExtractionTotal != nil {
		obs.ImportExtractionTotal.WithLabelValues(result).Inc()
	}
}

func countCommit(result string, rows int) {
	if obs.ImportCommitTotal != nil {
		obs.ImportCommitTotal.WithLabelValues(result).Inc()
	}
	if result == "ok" && obs.ImportCommitRows != nil {
		obs.ImportCommitRows.Observe(float64(rows))
	}
}
