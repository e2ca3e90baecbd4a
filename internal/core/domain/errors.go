package domain

import "errors"

// Messages on the session errors are shown to users verbatim.
var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUserExists         = errors.New("User with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoSession          = errors.New("no active session")
	ErrForbidden          = errors.New("access forbidden")

	ErrQuestionNotFound     = errors.New("question not found")
	ErrConfirmationRequired = errors.New("delete requires explicit confirmation")
	ErrValidation           = errors.New("validation failed")
)

// ValidationError is raised before any network call when user input is
// incomplete or malformed. errors.Is(err, ErrValidation) matches it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
