package customer

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tarekulislam03/medix-v1-sub001/internal/common"
)

// Handler exposes customer search and registration.
type Handler struct {
	Store       Store
	Logger      zerolog.Logger
	SearchLimit int
}

// Routes mounts customer endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Search)
	r.Post("/", h.Create)
	return r
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	customers, err := h.Store.Search(r.Context(), query, h.SearchLimit)
	if err != nil {
		h.Logger.Error().Err(err).Msg("customer search")
		common.Render(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": customers})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string  `json:"name"`
		Phone   string  `json:"phone"`
		Email   *string `json:"email"`
		Address *string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Phone = strings.TrimSpace(body.Phone)
	if body.Name == "" || body.Phone == "" {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "name and phone are required", nil)
		return
	}
	c := Customer{
		ID:        uuid.New(),
		Name:      body.Name,
		Phone:     body.Phone,
		Email:     body.Email,
		Address:   body.Address,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.Create(r.Context(), c); err != nil {
		h.Logger.Error().Err(err).Msg("customer create")
		common.Render(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": c})
}
