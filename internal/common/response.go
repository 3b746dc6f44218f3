package common

import (
	"encoding/json"
	"net/http"
)

// errorBody is the payload nested under the "error" key of every failure
// response: {"error": {"code": ..., "message": ..., "details": ...}}.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON encodes v with the given status. Encode failures are dropped; the
// status line is already on the wire by the time Encode runs.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes the error envelope shared by every handler.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": errorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
