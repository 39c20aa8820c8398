package httpapi

import (
	"encoding/json"
	"net/http"

	"meshd/internal/proxy"
	"meshd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor is the single mapping from the service error taxonomy to HTTP
// statuses. Provider-reported failures never reach here; they relay verbatim
// through the result path.
func statusFor(err error) int {
	switch {
	case proxy.IsValidation(err):
		return http.StatusBadRequest
	case proxy.IsConfig(err):
		return http.StatusInternalServerError
	case proxy.IsStaging(err):
		return http.StatusInternalServerError
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}
