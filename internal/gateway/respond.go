package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/medlawhq/medlaw-gateway/pkg/domain"
)

// writeJSON writes a JSON response with the given status.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("Failed to encode response", "error", err)
	}
}

// writeError logs the underlying error and sends the uniform JSON error
// shape. The public message never carries internal detail; the status is
// derived from the domain error category.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		g.logger.Error("Request failed", "path", r.URL.Path, "method", r.Method, "status", status, "error", err)
	} else {
		g.logger.Warn("Request rejected", "path", r.URL.Path, "method", r.Method, "status", status, "error", err)
	}
	g.writeJSON(w, status, domain.ErrorResponse{Error: message})
}

// decodeJSON decodes a request body, tolerating an empty body by leaving the
// destination zero-valued.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
