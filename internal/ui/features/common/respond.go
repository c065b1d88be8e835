// Package common provides shared helpers for UI features.
package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/extractor"
	"github.com/leapstack-labs/catalognav/internal/tabledata"
)

// ErrorBody is the JSON body of every failed API call.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err with the status StatusFor picks.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), ErrorBody{Error: err.Error()})
}

// StatusFor maps catalog and extraction errors to HTTP statuses.
func StatusFor(err error) int {
	var toolErr *extractor.ToolError
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, tabledata.ErrTableNotFound),
		errors.Is(err, tabledata.ErrLinkNotFound):
		return http.StatusNotFound
	case errors.Is(err, tabledata.ErrNoColumns):
		return http.StatusUnprocessableEntity
	case errors.As(err, &toolErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
