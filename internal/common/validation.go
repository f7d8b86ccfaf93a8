package common

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors. Rules after the first failure
// for the same field are skipped.
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
			break
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Err returns an AppError wrapping ErrInvalidInput, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return NewAppError("INVALID_INPUT", v.ErrorMessage(), ErrInvalidInput)
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}

// Present fails on nil values and nil string pointers only; empty strings pass.
func Present(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Message: "is required"}
	}
	if p, ok := value.(*string); ok && p == nil {
		return &ValidationError{Field: fieldName, Message: "is required"}
	}
	if _, ok := stringValue(value); !ok {
		return &ValidationError{Field: fieldName, Message: "must be a string"}
	}
	return nil
}

// Required fails on nil and blank strings.
func Required(fieldName string, value interface{}) *ValidationError {
	if err := Present(fieldName, value); err != nil {
		return err
	}
	if s, _ := stringValue(value); strings.TrimSpace(s) == "" {
		return &ValidationError{Field: fieldName, Message: "is required"}
	}
	return nil
}

// MaxLength limits the number of characters (runes).
func MaxLength(max int) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := stringValue(value)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(str) > max {
			return &ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("must be at most %d characters", max),
			}
		}
		return nil
	}
}

// MaxBytes limits the encoded size of a string.
func MaxBytes(max int) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := stringValue(value)
		if !ok {
			return nil
		}
		if len(str) > max {
			return &ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("exceeds size limit of %d bytes", max),
			}
		}
		return nil
	}
}

const unsafeFileNameChars = `<>:"/\|?*`

// SafeFileName rejects control characters and filesystem-reserved characters.
func SafeFileName(fieldName string, value interface{}) *ValidationError {
	str, ok := stringValue(value)
	if !ok {
		return nil
	}
	if !utf8.ValidString(str) {
		return &ValidationError{Field: fieldName, Message: "must be valid UTF-8"}
	}
	for _, r := range str {
		if unicode.IsControl(r) {
			return &ValidationError{Field: fieldName, Message: "contains control characters"}
		}
		if strings.ContainsRune(unsafeFileNameChars, r) {
			return &ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("contains invalid character %q", r),
			}
		}
	}
	return nil
}

// Base64 requires standard base64 encoding.
func Base64(fieldName string, value interface{}) *ValidationError {
	str, ok := stringValue(value)
	if !ok {
		return nil
	}
	if _, err := base64.StdEncoding.DecodeString(str); err != nil {
		return &ValidationError{Field: fieldName, Message: "must be valid base64"}
	}
	return nil
}

// OneOf restricts a string to a fixed set.
func OneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := stringValue(value)
		if !ok {
			return nil
		}
		for _, a := range allowed {
			if str == a {
				return nil
			}
		}
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
		}
	}
}
