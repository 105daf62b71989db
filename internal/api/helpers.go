// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/robprofile/robprofile/internal/logging"
	"github.com/robprofile/robprofile/internal/models"
	"github.com/robprofile/robprofile/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent
// log injection. Newlines and other control bytes could otherwise forge
// log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with caching headers. maxAge sets
// the Cache-Control hint; zero disables caching.
func respondJSON(w http.ResponseWriter, status int, maxAge time.Duration, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	if maxAge > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends an error response. Errors are never cached.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondJSON(w, status, 0, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondClassified maps a classified pipeline error onto the right HTTP
// status. Only invalid input is the caller's fault.
func respondClassified(w http.ResponseWriter, err error) {
	class, code := models.ClassUpstreamUnavailable, "UPSTREAM_UNAVAILABLE"
	if classified, ok := asClassified(err); ok {
		class = classified.Class
	}

	status := http.StatusBadGateway
	switch class {
	case models.ClassInvalidInput:
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case models.ClassDataEmpty:
		status, code = http.StatusServiceUnavailable, "DATA_EMPTY"
	case models.ClassParseCorrupt:
		status, code = http.StatusInternalServerError, "PARSE_CORRUPT"
	}

	respondError(w, status, code, err.Error(), err)
}

func asClassified(err error) (*models.ClassifiedError, bool) {
	var classified *models.ClassifiedError
	if errors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// validateRequest validates a struct using the shared validator,
// translating failures into the INVALID_INPUT error format.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// parseUserID parses a path segment into a positive user ID.
func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", sanitizeLogValue(raw))
	}
	return id, nil
}
