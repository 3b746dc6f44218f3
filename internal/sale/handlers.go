package sale

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tarekulislam03/medix-v1-sub001/internal/catalog"
	"github.com/tarekulislam03/medix-v1-sub001/internal/common"
	"github.com/tarekulislam03/medix-v1-sub001/internal/obs"
)

// Handler exposes cart and checkout endpoints.
type Handler struct {
	Service  *Service
	Logger   zerolog.Logger
	Currency string
}

// Routes mounts sale endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateCart)
	r.Get("/{id}", h.GetCart)
	r.Delete("/{id}", h.CancelCart)
	r.Post("/{id}/lines", h.AddLine)
	r.Patch("/{id}/lines/{index}", h.UpdateLine)
	r.Delete("/{id}/lines/{index}", h.RemoveLine)
	r.Patch("/{id}/settlement", h.UpdateSettlement)
	r.Post("/{id}/checkout", h.Checkout)
	return r
}

func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	cart := h.Service.Carts.Create()
	common.JSON(w, http.StatusCreated, map[string]any{"data": cart.Snapshot(), "currency": h.Currency})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cart.Snapshot(), "currency": h.Currency})
}

func (h *Handler) CancelCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	h.Service.Carts.Remove(cart.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	var body struct {
		ProductID uuid.UUID `json:"productId"`
		Quantity  int       `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	if body.ProductID == uuid.Nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INPUT", "productId is required", nil)
		return
	}
	view, err := h.Service.AddProduct(r.Context(), cart.ID(), body.ProductID, body.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	index, ok := h.lineIndex(w, r)
	if !ok {
		return
	}
	var upd LineUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	view, err := cart.UpdateLine(index, upd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	index, ok := h.lineIndex(w, r)
	if !ok {
		return
	}
	view, err := cart.RemoveLine(index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

func (h *Handler) UpdateSettlement(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	var upd SettlementUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	view, err := cart.UpdateSettlement(upd)
	if err != nil {
		common.Render(w, common.NewAppError("INVALID_INPUT", err.Error(), http.StatusBadRequest, err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	method := string(cart.Snapshot().Settlement.PaymentMethod)
	rec, err := h.Service.Checkout(r.Context(), cart.ID())
	if err != nil {
		h.countCheckout(method, "error")
		h.writeError(w, err)
		return
	}
	h.countCheckout(method, "ok")
	common.JSON(w, http.StatusCreated, map[string]any{"data": rec, "currency": h.Currency})
}

func (h *Handler) cart(w http.ResponseWriter, r *http.Request) (*Cart, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_ID", "cart id must be a UUID", nil)
		return nil, false
	}
	cart, err := h.Service.Carts.Get(id)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return cart, true
}

func (h *Handler) lineIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		common.JSONError(w, http.StatusBadRequest, "INVALID_INDEX", "line index must be a non-negative integer", nil)
		return 0, false
	}
	return index, true
}

func (h *Handler) countCheckout(method, result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(method, result).Inc()
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCartNotFound):
		err = common.NewAppError("CART_NOT_FOUND", "cart not found", http.StatusNotFound, err)
	case errors.Is(err, ErrLineNotFound):
		err = common.NewAppError("LINE_NOT_FOUND", "cart line not found", http.StatusNotFound, err)
	case errors.Is(err, ErrEmptyCart):
		err = common.NewAppError("EMPTY_CART", "cart has no billable amount", http.StatusConflict, err)
	case errors.Is(err, ErrNegativeAmount):
		err = common.NewAppError("INVALID_INPUT", err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, catalog.ErrNotFound):
		err = common.NewAppError("PRODUCT_NOT_FOUND", "product not found", http.StatusNotFound, err)
	}
	if !common.IsAppError(err) {
		h.Logger.Error().Err(err).Msg("sale handler")
	}
	common.Render(w, err)
}
