package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := InferenceError("model call failed", errors.New("connection refused"))
	assert.Equal(t, "[inference] model call failed: connection refused", err.Error())

	err = EmptyDocumentError("no text found")
	assert.Equal(t, "[empty_document] no text found", err.Error())
}

func TestTypeOf_ThroughWrapping(t *testing.T) {
	base := ValidationError("question cannot be empty", nil)
	wrapped := fmt.Errorf("answer: %w", base)

	assert.Equal(t, ErrorTypeValidation, TypeOf(wrapped))
	assert.True(t, IsType(wrapped, ErrorTypeValidation))
	assert.False(t, IsType(wrapped, ErrorTypeInference))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("upload: %w", ExtractionError("could not read the PDF", errors.New("xref broken")))
	assert.Equal(t, "could not read the PDF", UserMessage(err))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
}
