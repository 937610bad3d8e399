package errors

import (
	"strings"
)

// MaxNoteSize caps the content accepted for a single note.
const MaxNoteSize = 10 * 1024 * 1024

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

// Validator provides validation utilities
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePath rejects paths that can never be resolved: blank strings and
// strings with NUL bytes.
func (v *Validator) ValidatePath(path string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(path) == "" {
		result.AddError(New(ErrTypeValidation, "PATH_EMPTY", "path cannot be empty").
			WithUserMessage("File path cannot be empty"))
		return result
	}

	if strings.ContainsRune(path, 0) {
		result.AddError(New(ErrTypeValidation, "PATH_INVALID", "path contains a NUL byte").
			WithUserMessage("File path is not valid"))
	}

	return result
}

// ValidateNoteContent validates note content
func (v *Validator) ValidateNoteContent(content string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if len(content) > MaxNoteSize {
		result.AddError(New(ErrTypeValidation, "CONTENT_TOO_LARGE", "note content too large").
			WithUserMessage("Note content is too large. Maximum size is 10MB").
			WithContext("size", len(content)))
	}

	return result
}
