package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies domain errors so callers can decide how to surface them.
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeExtraction     ErrorType = "extraction"
	ErrorTypeEmptyDocument  ErrorType = "empty_document"
	ErrorTypeClassification ErrorType = "classification"
	ErrorTypeInference      ErrorType = "inference"
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeIO             ErrorType = "io"
	ErrorTypeNotFound       ErrorType = "not_found"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

func EmptyDocumentError(message string) *DomainError {
	return NewError(ErrorTypeEmptyDocument, message, nil)
}

func ClassificationError(message string, err error) *DomainError {
	return NewError(ErrorTypeClassification, message, err)
}

func InferenceError(message string, err error) *DomainError {
	return NewError(ErrorTypeInference, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

func NotFoundError(message string) *DomainError {
	return NewError(ErrorTypeNotFound, message, nil)
}

// TypeOf returns the ErrorType of the first DomainError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// IsType reports whether err wraps a DomainError of the given type.
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// UserMessage renders err as the text shown to the user. Domain errors show
// their message only; wrapped causes stay in the logs.
func UserMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
