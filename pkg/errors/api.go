package errors

import (
	"encoding/json"
	"net/http"
)

// APIError is the JSON error body exchanged with the catalog API
type APIError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// DefaultMessage is used when an error body carries no message
const DefaultMessage = "An error occurred"

// StatusFor maps an error to the HTTP status the API reports for it
func StatusFor(err error) int {
	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case ErrTypeValidation:
		if appErr.Code == ErrEmailTaken.Code || appErr.Code == ErrCategoryExists.Code {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case ErrTypeAuth:
		return http.StatusUnauthorized
	case ErrTypePrecondition:
		if appErr.Code == ErrCategoryInUse.Code {
			return http.StatusConflict
		}
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ToAPIError converts an error to the API's error body
func ToAPIError(err error) *APIError {
	status := StatusFor(err)
	if appErr, ok := As(err); ok {
		return &APIError{Message: appErr.GetUserMessage(), StatusCode: status}
	}
	return &APIError{Message: DefaultMessage, StatusCode: status}
}

// WriteJSON writes err as an API error body with the matching status
func WriteJSON(w http.ResponseWriter, err error) {
	body := ToAPIError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.StatusCode)
	_ = json.NewEncoder(w).Encode(body)
}
