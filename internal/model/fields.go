package model

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"
)

// FieldType identifies the JSON type of a collection-specific field.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeStrings FieldType = "string[]"
	FieldTypeNumber  FieldType = "number"
	FieldTypeCount   FieldType = "count" // non-negative integer
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date" // YYYY-MM-DD or RFC 3339
	FieldTypeEnum    FieldType = "enum"
)

// FieldDef describes a single typed field of a collection.
type FieldDef struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Values   []string  `json:"values,omitempty"` // allowed values for enum
}

// ValidateFields checks fields JSON against a collection's definitions.
// Unknown keys are rejected. Returns a *ValidationError on failure.
func ValidateFields(fields json.RawMessage, defs []FieldDef) error {
	var m map[string]any
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &m); err != nil {
			return &ValidationError{Errors: []FieldError{{
				Field:   "fields",
				Message: "must be a JSON object",
			}}}
		}
	}

	known := make(map[string]FieldDef, len(defs))
	for _, d := range defs {
		known[d.Name] = d
	}

	var ve ValidationError
	for key := range m {
		if _, ok := known[key]; !ok {
			ve.Errors = append(ve.Errors, FieldError{Field: key, Message: "unknown field"})
		}
	}
	for _, d := range defs {
		val, present := m[d.Name]
		if !present || val == nil {
			if d.Required {
				ve.Errors = append(ve.Errors, FieldError{Field: d.Name, Message: "is required"})
			}
			continue
		}
		if err := validateFieldValue(d, val); err != nil {
			ve.Errors = append(ve.Errors, FieldError{Field: d.Name, Message: err.Error()})
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func validateFieldValue(d FieldDef, val any) error {
	switch d.Type {
	case FieldTypeString:
		if _, ok := val.(string); !ok {
			return fmt.Errorf("must be a string")
		}
	case FieldTypeStrings:
		arr, ok := val.([]any)
		if !ok {
			return fmt.Errorf("must be an array of strings")
		}
		for _, elem := range arr {
			if _, ok := elem.(string); !ok {
				return fmt.Errorf("must be an array of strings")
			}
		}
	case FieldTypeNumber:
		if _, ok := val.(float64); !ok {
			return fmt.Errorf("must be a number")
		}
	case FieldTypeCount:
		n, ok := val.(float64)
		if !ok || n != math.Trunc(n) || n < 0 {
			return fmt.Errorf("must be a non-negative integer")
		}
	case FieldTypeBoolean:
		if _, ok := val.(bool); !ok {
			return fmt.Errorf("must be a boolean")
		}
	case FieldTypeDate:
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("must be a date string")
		}
		if _, err := ParseDay(s); err != nil {
			return fmt.Errorf("must be a date string")
		}
	case FieldTypeEnum:
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("must be a string")
		}
		if !slices.Contains(d.Values, s) {
			return fmt.Errorf("must be one of %v", d.Values)
		}
	default:
		return fmt.Errorf("unknown field type %q", d.Type)
	}
	return nil
}

// ParseDay parses a calendar date ("2006-01-02") or an RFC 3339 timestamp.
func ParseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
