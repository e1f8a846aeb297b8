package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateItem checks an Item for constraint violations. Collection-specific
// fields are checked separately by ValidateFields.
func ValidateItem(it *Item) error {
	var ve ValidationError

	title := strings.TrimSpace(it.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	} else if len([]rune(title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 500 characters or fewer"})
	}

	if !it.Collection.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "collection",
			Message: fmt.Sprintf("invalid value %q", it.Collection),
		})
	}

	if len([]rune(it.Category)) > 100 {
		ve.Errors = append(ve.Errors, FieldError{Field: "category", Message: "must be 100 characters or fewer"})
	}
	if strings.EqualFold(it.Category, "all") {
		ve.Errors = append(ve.Errors, FieldError{Field: "category", Message: `"all" is reserved`})
	}

	if it.Date.IsZero() {
		ve.Errors = append(ve.Errors, FieldError{Field: "date", Message: "is required"})
	}

	if len(it.Fields) > 0 {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(it.Fields, &obj); err != nil {
			ve.Errors = append(ve.Errors, FieldError{Field: "fields", Message: "must be a JSON object"})
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
