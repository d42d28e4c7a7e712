// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/turismo-admin/internal/model"
)

// apiResponse is the envelope of every JSON answer.
type apiResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       any               `json:"data,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set(HeaderContentType, "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeJSONSuccess writes a 200 success envelope.
func writeJSONSuccess(w http.ResponseWriter, resp apiResponse) {
	resp.Success = true
	writeJSON(w, http.StatusOK, resp)
}

// writeJSONError writes a JSON error response. The error detail is included
// only when showDetail is set.
func writeJSONError(w http.ResponseWriter, statusCode int, message string, err error, showDetail bool) {
	resp := apiResponse{Success: false, Message: message}
	if err != nil && showDetail {
		resp.Error = err.Error()
	}
	writeJSON(w, statusCode, resp)
}

// nonNil turns a nil slice into an empty one so it encodes as [].
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
