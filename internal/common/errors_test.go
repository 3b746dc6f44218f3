package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeErrorEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	return envelope.Error
}

func TestRenderAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	Render(rr, NewAppError("CART_NOT_FOUND", "cart not found", http.StatusNotFound, nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	body := decodeErrorEnvelope(t, rr)
	require.Equal(t, "CART_NOT_FOUND", body["code"])
	require.Equal(t, "cart not found", body["message"])
}

func TestRenderWrappedAppError(t *testing.T) {
	inner := NewAppError("INVALID_INPUT", "quantity must not be negative", http.StatusBadRequest, errors.New("qty=-1"))
	wrapped := fmt.Errorf("update row: %w", inner)

	rr := httptest.NewRecorder()
	Render(rr, wrapped)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "INVALID_INPUT", decodeErrorEnvelope(t, rr)["code"])
	require.True(t, IsAppError(wrapped))
}

func TestRenderUnknownErrorIsInternal(t *testing.T) {
	rr := httptest.NewRecorder()
	Render(rr, errors.New("connection reset"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeErrorEnvelope(t, rr)
	require.Equal(t, "INTERNAL", body["code"])
	require.Equal(t, "internal server error", body["message"])
	require.False(t, IsAppError(errors.New("connection reset")))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("no rows")
	app := NewAppError("PRODUCT_NOT_FOUND", "product not found", http.StatusNotFound, cause)
	require.ErrorIs(t, app, cause)
	require.Equal(t, "no rows", app.Error())
	require.Equal(t, "product not found", (&AppError{Message: "product not found"}).Error())
}
