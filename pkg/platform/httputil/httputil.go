// Package httputil centralizes JSON response and error envelope writing so
// every handler renders failures the same way.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "github.com/MatheusPlinio/DotWysion/pkg/domain-errors"
)

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders a domain error as a JSON envelope. Internal errors omit
// the description so store failures never leak details to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}

	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) && de.Message != "" {
		body["error_description"] = de.Message
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
