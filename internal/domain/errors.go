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
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeConfig        = "CONFIG_ERROR"
	ErrCodeIndexBuild    = "INDEX_BUILD_ERROR"
	ErrCodeExtraction    = "EXTRACTION_ERROR"
	ErrCodeGeneration    = "GENERATION_ERROR"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Configuration errors, fatal at setup.
var (
	ErrOverlapTooLarge  = NewDomainError(ErrCodeConfig, "chunk overlap must be smaller than chunk size")
	ErrInvalidChunkSize = NewDomainError(ErrCodeConfig, "chunk size must be positive")
	ErrInvalidLambda    = NewDomainError(ErrCodeConfig, "diversity lambda must be in [0,1]")
	ErrInvalidTopK      = NewDomainError(ErrCodeConfig, "retrieval k must be positive")
)

// Validation errors
var (
	ErrEmptyDocument     = NewDomainError(ErrCodeValidation, "document is empty")
	ErrEmptyProblem      = NewDomainError(ErrCodeValidation, "problem text or image is required")
	ErrMissingEmbedding  = NewDomainError(ErrCodeValidation, "chunk has no embedding")
	ErrDimensionMismatch = NewDomainError(ErrCodeValidation, "embedding dimension mismatch")
	ErrIndexNotReady     = NewDomainError(ErrCodeNotFound, "no curriculum index has been built")
	ErrDocumentNotFound  = NewDomainError(ErrCodeNotFound, "source document not found")
	ErrInvalidAPIKey     = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// IsDomainError reports whether err carries the given domain error code.
func IsDomainError(err error, code string) bool {
	if err == nil {
		return false
	}
	de, ok := err.(*DomainError)
	if !ok {
		return false
	}
	return de.Code == code
}
