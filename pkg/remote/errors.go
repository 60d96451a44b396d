package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Category determines whether a failed request may be retried
type Category int

const (
	// Recoverable errors may succeed on retry: 5xx, 408, 429 and network failures
	Recoverable Category = iota
	// Irrecoverable errors fail the same way every time: other 4xx and decode failures
	Irrecoverable
)

// String returns a human-readable representation of the category
func (c Category) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// defaultMessage is used when the API sends no message of its own
const defaultMessage = "An error occurred"

// APIError is a failed catalog API call. StatusCode is 0 for transport failures.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Category   Category
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether err is an APIError worth retrying
func IsRecoverable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Category == Recoverable
}

// StatusCode extracts the HTTP status from err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func classifyStatus(statusCode int) Category {
	switch {
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusTooManyRequests:
		return Recoverable
	case statusCode >= 400 && statusCode < 500:
		return Irrecoverable
	default:
		return Recoverable
	}
}

func newHTTPError(op string, statusCode int, message string) *APIError {
	if message == "" {
		message = defaultMessage
	}
	return &APIError{
		Op:         op,
		StatusCode: statusCode,
		Message:    message,
		Category:   classifyStatus(statusCode),
	}
}

func newNetworkError(op string, err error) *APIError {
	return &APIError{
		Op:       op,
		Message:  err.Error(),
		Category: Recoverable,
		Err:      err,
	}
}

func newDecodeError(op string, err error) *APIError {
	return &APIError{
		Op:       op,
		Message:  "invalid response body",
		Category: Irrecoverable,
		Err:      err,
	}
}
