package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"cheatsheets/pkg/models"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

// ValidationResult holds validation results
type ValidationResult struct {
	IsValid bool
	Errors  []*AppError
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(err *AppError) {
	vr.IsValid = false
	vr.Errors = append(vr.Errors, err)
}

// GetFirstError returns the first error or nil
func (vr *ValidationResult) GetFirstError() *AppError {
	if len(vr.Errors) > 0 {
		return vr.Errors[0]
	}
	return nil
}

// Err returns the first error as an error value, or nil when valid
func (vr *ValidationResult) Err() error {
	if first := vr.GetFirstError(); first != nil {
		return first
	}
	return nil
}

// Validator provides validation utilities
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateStruct runs the struct tag rules of s
func (v *Validator) ValidateStruct(s interface{}) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	err := v.validate.Struct(s)
	if err == nil {
		return result
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		result.AddError(Wrap(err, ErrTypeValidation, "INVALID_INPUT", "invalid input").
			WithUserMessage("Invalid input"))
		return result
	}

	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		result.AddError(New(ErrTypeValidation, "FIELD_"+strings.ToUpper(fe.Tag()),
			fmt.Sprintf("%s failed %s validation", field, fe.Tag())).
			WithUserMessage(fieldMessage(field, fe)).
			WithContext("field", field))
	}
	return result
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "eqfield":
		return ErrPasswordMismatch.UserMessage
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidatePassword validates password requirements
func (v *Validator) ValidatePassword(password string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(password) == "" {
		result.AddError(New(ErrTypeValidation, "PASSWORD_EMPTY", "password cannot be empty").
			WithUserMessage("Password cannot be empty"))
		return result
	}

	if len(password) < MinPasswordLength {
		result.AddError(ErrPasswordTooShort)
	}

	return result
}

// ValidatePasswordMatch validates that passwords match
func (v *Validator) ValidatePasswordMatch(password, confirmPassword string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if password != confirmPassword {
		result.AddError(ErrPasswordMismatch)
	}

	return result
}

// ValidateCredentials checks that both login fields are present
func (v *Validator) ValidateCredentials(c models.Credentials) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if c.Email == "" || c.Password == "" {
		result.AddError(ErrCredentialsRequired)
	}

	return result
}

// ValidateRegistration checks presence, confirmation and length in that order
func (v *Validator) ValidateRegistration(r models.Registration) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if r.Email == "" || r.Password == "" || r.Name == "" {
		result.AddError(ErrFieldsRequired)
		return result
	}

	if match := v.ValidatePasswordMatch(r.Password, r.ConfirmPassword); !match.IsValid {
		return match
	}

	if len(r.Password) < MinPasswordLength {
		result.AddError(ErrPasswordTooShort)
	}

	return result
}

// ValidateRecordInput validates the fields of a new cheat sheet
func (v *Validator) ValidateRecordInput(in models.RecordInput) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(in.Title) == "" {
		result.AddError(ErrTitleRequired)
	}

	return result
}

// ValidateRecordUpdate rejects updates that would blank the title
func (v *Validator) ValidateRecordUpdate(upd models.RecordUpdate) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		result.AddError(ErrTitleRequired)
	}

	return result
}

// ValidateCategoryName validates a category name
func (v *Validator) ValidateCategoryName(name string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(name) == "" {
		result.AddError(ErrCategoryNameEmpty)
	}

	return result
}

// ValidateRecordID validates a cheat sheet id
func (v *Validator) ValidateRecordID(id string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(id) == "" {
		result.AddError(New(ErrTypeValidation, "ID_EMPTY", "cheat sheet ID cannot be empty").
			WithUserMessage("Cheat sheet ID is required"))
	}

	return result
}
