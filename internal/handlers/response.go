package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/storefront/internal/models"
)

// WriteJSON encodes v as the response body with the given status
func WriteJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "status", status, "error", err)
	}
}

// WriteError answers with the API's error envelope
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, models.ErrorResponse{Error: message}, logger)
}

// DecodeJSON reads a single JSON document of at most limit bytes into dst.
// Unknown fields and trailing data are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, "decode body")
	}
	if dec.More() {
		return errors.New("decode body: unexpected data after JSON document")
	}
	return nil
}
