package service

import (
	"errors"
	"sort"
	"strings"

	"shopfront/internal/upload"
)

var ErrValidation = errors.New("validation failed")

// FieldError is a rule violation tied to one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a submission. The handler echoes the form back
// together with Fields.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(fields ...FieldError) error {
	return &ValidationError{Fields: fields}
}

// fieldErrors turns a field→message map into a stable list.
func fieldErrors(violations map[string]string) []FieldError {
	fields := make([]FieldError, 0, len(violations))
	for field, message := range violations {
		fields = append(fields, FieldError{Field: field, Message: message})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return fields
}

// imageError reports the first rejected upload on the image field.
func imageError(err error) error {
	var fileErr *upload.FileError
	if errors.As(err, &fileErr) {
		return invalid(FieldError{Field: fileErr.Field, Message: fileErr.Error()})
	}
	return err
}
