package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical/pdf-assistant/internal/domain"
)

var pdfMagic = []byte("%PDF-")

// Validator provides input validation for uploaded PDF files
type Validator struct {
	maxSize int64
}

// NewValidator creates a validator. maxSize <= 0 disables the size check.
func NewValidator(maxSize int64) *Validator {
	return &Validator{maxSize: maxSize}
}

// MaxSize returns the size limit in bytes, or zero when unlimited.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// ValidateUpload checks the client-supplied file name and size before anything is written.
func (v *Validator) ValidateUpload(name string, size int64) error {
	if strings.TrimSpace(name) == "" {
		return domain.ValidationError("file name cannot be empty", nil)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".pdf" {
		return domain.ValidationError(fmt.Sprintf("only PDF files are accepted (got %q)", ext), nil)
	}

	if size == 0 {
		return domain.ValidationError("uploaded file is empty", nil)
	}

	if v.maxSize > 0 && size > v.maxSize {
		return domain.ValidationError(fmt.Sprintf("file is too large: %d MB (limit %d MB)",
			size/(1024*1024), v.maxSize/(1024*1024)), nil)
	}

	return nil
}

// ValidatePDFPath validates that a file path is valid and points to a PDF
func (v *Validator) ValidatePDFPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ValidationError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err)
	}

	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" {
		return domain.ValidationError(fmt.Sprintf("file is not a PDF (has extension %s)", ext), nil)
	}

	if v.maxSize > 0 && info.Size() > v.maxSize {
		return domain.ValidationError(fmt.Sprintf("file is too large: %d MB", info.Size()/(1024*1024)), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.ValidationError(fmt.Sprintf("cannot open file: %s", path), err)
	}
	defer file.Close()

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(file, header); err != nil || !bytes.Equal(header, pdfMagic) {
		return domain.ExtractionError("file is not a readable PDF document", err)
	}

	return nil
}
