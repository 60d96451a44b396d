package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// Authentication errors
	ErrTypeAuth ErrorType = "authentication"
	// Durable store errors
	ErrTypeStorage ErrorType = "storage"
	// Configuration errors
	ErrTypeConfig ErrorType = "configuration"
	// Validation errors
	ErrTypeValidation ErrorType = "validation"
	// Remote catalog API errors
	ErrTypeRemote ErrorType = "remote"
	// Logical precondition failures such as a missing id
	ErrTypePrecondition ErrorType = "precondition"
	// Generic application errors
	ErrTypeApp ErrorType = "application"
)

// AppError represents a structured application error
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	UserMessage string                 `json:"userMessage"`
	InternalErr error                  `json:"-"`
	Retryable   bool                   `json:"retryable"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.InternalErr != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.InternalErr)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap exposes the wrapped error to errors.As and errors.Is
func (e *AppError) Unwrap() error {
	return e.InternalErr
}

// Is matches another AppError with the same type and code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// GetUserMessage returns a user-friendly error message
func (e *AppError) GetUserMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

func (e *AppError) clone() *AppError {
	c := *e
	if e.Context != nil {
		c.Context = make(map[string]interface{}, len(e.Context))
		for k, v := range e.Context {
			c.Context[k] = v
		}
	}
	return &c
}

// WithContext returns a copy of the error carrying an extra context value
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	c := e.clone()
	if c.Context == nil {
		c.Context = make(map[string]interface{})
	}
	c.Context[key] = value
	return c
}

// WithUserMessage returns a copy of the error with a user-friendly message
func (e *AppError) WithUserMessage(msg string) *AppError {
	c := e.clone()
	c.UserMessage = msg
	return c
}

// WithRetryable returns a copy of the error marked as retryable or not
func (e *AppError) WithRetryable(retryable bool) *AppError {
	c := e.clone()
	c.Retryable = retryable
	return c
}

// WithCause returns a copy of the error wrapping err
func (e *AppError) WithCause(err error) *AppError {
	c := e.clone()
	c.InternalErr = err
	return c
}

// IsRetryable checks if the error can be retried
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// Log logs the error with its type, code and context
func (e *AppError) Log(logger zerolog.Logger) {
	ev := logger.Error().
		Str("type", string(e.Type)).
		Str("code", e.Code)
	if e.InternalErr != nil {
		ev = ev.Err(e.InternalErr)
	}
	if len(e.Context) > 0 {
		ev = ev.Fields(e.Context)
	}
	ev.Msg(e.Message)
}

// New creates a new AppError
func New(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:        errType,
		Code:        code,
		Message:     message,
		InternalErr: err,
	}
}

// As finds the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errType
}

// Predefined errors for common scenarios
var (
	// Authentication errors
	ErrNotAuthenticated = New(ErrTypeAuth, "NOT_AUTHENTICATED", "user not authenticated").
				WithUserMessage("Please log in to continue")

	ErrInvalidCredentials = New(ErrTypeAuth, "INVALID_CREDENTIALS", "invalid credentials").
				WithUserMessage("Invalid email or password")

	ErrCredentialsRequired = New(ErrTypeValidation, "CREDENTIALS_REQUIRED", "email and password are required").
				WithUserMessage("Email and password are required")

	ErrFieldsRequired = New(ErrTypeValidation, "FIELDS_REQUIRED", "all fields are required").
				WithUserMessage("All fields are required")

	ErrPasswordTooShort = New(ErrTypeValidation, "PASSWORD_TOO_SHORT", "password too short").
				WithUserMessage("Password must be at least 6 characters long")

	ErrPasswordMismatch = New(ErrTypeValidation, "PASSWORD_MISMATCH", "passwords do not match").
				WithUserMessage("Passwords do not match")

	ErrEmailTaken = New(ErrTypeValidation, "EMAIL_TAKEN", "email already registered").
			WithUserMessage("An account with this email already exists")

	// Catalog errors
	ErrRecordNotFound = New(ErrTypePrecondition, "RECORD_NOT_FOUND", "cheat sheet not found").
				WithUserMessage("The requested cheat sheet could not be found")

	ErrCategoryNotFound = New(ErrTypePrecondition, "CATEGORY_NOT_FOUND", "category not found").
				WithUserMessage("The requested category could not be found")

	ErrCategoryInUse = New(ErrTypePrecondition, "CATEGORY_IN_USE", "category has cheat sheets").
				WithUserMessage("Cannot delete a category that still has cheat sheets")

	ErrCategoryExists = New(ErrTypeValidation, "CATEGORY_EXISTS", "category already exists").
				WithUserMessage("Category already exists")

	ErrTitleRequired = New(ErrTypeValidation, "TITLE_REQUIRED", "title is required").
				WithUserMessage("Title is required")

	ErrCategoryNameEmpty = New(ErrTypeValidation, "CATEGORY_EMPTY", "category name cannot be empty").
				WithUserMessage("Category name cannot be empty")

	// Remote errors
	ErrRemoteFailed = New(ErrTypeRemote, "REMOTE_FAILED", "remote catalog request failed").
			WithUserMessage("An error occurred")

	// Storage errors
	ErrStorageUnavailable = New(ErrTypeStorage, "STORAGE_UNAVAILABLE", "durable store unavailable").
				WithUserMessage("Unable to open local storage")

	// Configuration errors
	ErrConfigLoadFailed = New(ErrTypeConfig, "CONFIG_LOAD_FAILED", "failed to load configuration").
				WithUserMessage("Configuration could not be loaded")
)
