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
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidChunkSize    = NewDomainError(ErrCodeValidation, "chunk size must be greater than 0")
	ErrInvalidChunkOverlap = NewDomainError(ErrCodeValidation, "chunk overlap must be in [0, chunk size)")
	ErrInvalidItemID       = NewDomainError(ErrCodeValidation, "invalid knowledge item id")
	ErrEmptyContent        = NewDomainError(ErrCodeValidation, "content cannot be empty")
	ErrEmptyQuery          = NewDomainError(ErrCodeValidation, "query cannot be empty")
)

// Not found errors
var (
	ErrItemNotFound       = NewDomainError(ErrCodeNotFound, "knowledge item not found")
	ErrRawContentNotFound = NewDomainError(ErrCodeNotFound, "raw content not found")
	ErrAttachmentNotFound = NewDomainError(ErrCodeNotFound, "attachment not found")
)

// Upstream service errors. These wrap failures from the semantic index,
// the completion service and the web search service.
var (
	ErrIndexUnavailable      = NewDomainError(ErrCodeUpstream, "semantic index unavailable")
	ErrCompletionUnavailable = NewDomainError(ErrCodeUpstream, "completion service unavailable")
	ErrWebSearchUnavailable  = NewDomainError(ErrCodeUpstream, "web search service unavailable")
)

// Operation errors
var (
	ErrUnsupportedDocument = NewDomainError(ErrCodeInvalidOperation, "unsupported document type")
)

// WrapUpstream wraps a collaborator failure as an upstream service error.
func WrapUpstream(collaborator string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeUpstream, collaborator+" call failed", err)
}
