package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tarekulislam03/medix-v1-sub001/internal/common"
)

// Handler exposes product CRUD over HTTP.
type Handler struct {
	Service *Service
	Logger  zerolog.Logger
}

// Routes mounts catalog endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, 0)
	q := r.URL.Query()
	params := ListParams{
		Page:     page,
		Limit:    limit,
		Search:   q.Get("search"),
		LowStock: q.Get("lowStock") == "true",
		Expiring: q.Get("expiring") == "true",
	}
	result, err := h.Service.List(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": result.Items,
		"pagination": common.Pagination{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
		},
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	p, err := h.Service.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": p})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var upd UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	p, err := h.Service.Update(r.Context(), id, upd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "product id must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		err = common.NewAppError("PRODUCT_NOT_FOUND", "product not found", http.StatusNotFound, err)
	case errors.Is(err, ErrInvalidInput):
		err = common.NewAppError("INVALID_INPUT", err.Error(), http.StatusBadRequest, err)
	}
	if !common.IsAppError(err) {
		h.Logger.Error().Err(err).Msg("catalog handler")
	}
	common.Render(w, err)
}
