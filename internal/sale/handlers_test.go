package sale

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tarekulislam03/medix-v1-sub001/internal/catalog"
)

func newTestServer(t *testing.T, products ...catalog.Product) (*httptest.Server, *captureStore) {
	t.Helper()
	svc, store, _ := newTestSaleService(products...)
	h := &Handler{Service: svc, Logger: zerolog.Nop()}
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope map[string]json.RawMessage
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	}
	return resp, envelope
}

func cartView(t *testing.T, envelope map[string]json.RawMessage) View {
	t.Helper()
	var view View
	require.NoError(t, json.Unmarshal(envelope["data"], &view))
	return view
}

func TestSaleFlowOverHTTP(t *testing.T) {
	p := testProduct()
	srv, store := newTestServer(t, p)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cartID := cartView(t, envelope).ID

	resp, envelope = doJSON(t, http.MethodPost, fmt.Sprintf("%s/%s/lines", srv.URL, cartID),
		map[string]any{"productId": p.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := cartView(t, envelope)
	require.Len(t, view.Lines, 1)
	require.Equal(t, "84", view.GrandTotal.String())

	resp, envelope = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/%s/settlement", srv.URL, cartID),
		map[string]any{"amountPaid": "100", "paymentMethod": "UPI"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = cartView(t, envelope)
	require.Equal(t, "16", view.Change.String())

	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/%s/checkout", srv.URL, cartID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, store.records, 1)
	require.Equal(t, "UPI", store.records[0].PaymentMethod)

	// the cart is gone after a successful checkout
	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/%s", srv.URL, cartID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckoutEmptyCartOverHTTP(t *testing.T) {
	srv, store := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cartID := cartView(t, envelope).ID

	resp, envelope = doJSON(t, http.MethodPost, fmt.Sprintf("%s/%s/checkout", srv.URL, cartID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, string(envelope["error"]), "EMPTY_CART")
	require.Empty(t, store.records)
}

func TestRemoveLineOverHTTP(t *testing.T) {
	p := testProduct()
	srv, _ := newTestServer(t, p)

	_, envelope := doJSON(t, http.MethodPost, srv.URL+"/", nil)
	cartID := cartView(t, envelope).ID

	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/%s/lines", srv.URL, cartID),
			map[string]any{"productId": p.ID, "quantity": i + 1})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, envelope := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/%s/lines/1", srv.URL, cartID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := cartView(t, envelope)
	require.Len(t, view.Lines, 2)
	require.Equal(t, 1, view.Lines[0].Quantity)
	require.Equal(t, 3, view.Lines[1].Quantity)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/%s/lines/5", srv.URL, cartID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNegativeSettlementRejectedOverHTTP(t *testing.T) {
	p := testProduct()
	srv, store := newTestServer(t, p)

	_, envelope := doJSON(t, http.MethodPost, srv.URL+"/", nil)
	cartID := cartView(t, envelope).ID
	resp, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/%s/lines", srv.URL, cartID),
		map[string]any{"productId": p.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/%s/settlement", srv.URL, cartID),
		map[string]any{"globalDiscount": "-20"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, string(envelope["error"]), "INVALID_INPUT")

	// nothing was stored: the checkout snapshot carries a zero discount
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/%s/checkout", srv.URL, cartID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, store.records, 1)
	require.True(t, store.records[0].GlobalDiscount.IsZero())
}

func TestUnknownCartOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/6e8bc430-9c3a-11d9-9669-0800200c9a66", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
