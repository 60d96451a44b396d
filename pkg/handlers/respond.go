package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"cheatsheets/pkg/errors"
)

var errInvalidJSON = errors.New(errors.ErrTypeValidation, "INVALID_JSON", "request body is not valid JSON").
	WithUserMessage("Invalid JSON")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs server faults and sends err as an API error body
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	if errors.StatusFor(err) >= http.StatusInternalServerError {
		if appErr, ok := errors.As(err); ok {
			appErr.Log(logger)
		} else {
			logger.Error().Err(err).Msg("Request failed")
		}
	}
	errors.WriteJSON(w, err)
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidJSON.WithCause(err)
	}
	return nil
}
