package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidRunStatus     = NewDomainError(ErrCodeValidation, "invalid search run status")
	ErrInvalidDatasetSource = NewDomainError(ErrCodeValidation, "invalid dataset source")
	ErrEmptyDataset         = NewDomainError(ErrCodeValidation, "dataset contains no numeric cells")
)

// Not found errors
var (
	ErrWorkspaceNotFound = NewDomainError(ErrCodeNotFound, "workspace not found")
	ErrDatasetNotFound   = NewDomainError(ErrCodeNotFound, "dataset not found")
	ErrRunNotFound       = NewDomainError(ErrCodeNotFound, "search run not found")
	ErrResultNotFound    = NewDomainError(ErrCodeNotFound, "search result not found")
	ErrAPIKeyNotFound    = NewDomainError(ErrCodeNotFound, "api key not found")
)

// Already exists errors
var (
	ErrWorkspaceAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "workspace already exists")
)

// Authorization errors
var (
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Operation errors
var (
	ErrRunNotCancellable = NewDomainError(ErrCodeInvalidOperation, "search run already finished")
	ErrStorageDisabled   = NewDomainError(ErrCodeInvalidOperation, "object storage is not configured")
)
