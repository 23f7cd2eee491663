package utils

import (
	"strings"
	"unicode"
)

const MaxLoginIDLength = 64

// MaxPasswordLength is the most bcrypt will hash; longer input is rejected
// rather than truncated.
const MaxPasswordLength = 72

// ValidationError describes a single invalid input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every invalid field of a request.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Add records a failure for field.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, &ValidationError{Field: field, Message: message})
}

// Required records a failure when value is blank.
func (v *ValidationErrors) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "must not be empty")
	}
}

// Err returns nil when nothing failed.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ValidateLoginID checks that a login handle is non-empty, bounded and free
// of whitespace and control characters.
func ValidateLoginID(id string) *ValidationError {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}
	if len(id) > MaxLoginIDLength {
		return &ValidationError{Field: "id", Message: "must be at most 64 characters"}
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return &ValidationError{Field: "id", Message: "must not contain whitespace"}
		}
	}
	return nil
}

// ValidatePassword checks that a password is non-blank and fits bcrypt.
func ValidatePassword(pw string) *ValidationError {
	if strings.TrimSpace(pw) == "" {
		return &ValidationError{Field: "password", Message: "must not be empty"}
	}
	if len(pw) > MaxPasswordLength {
		return &ValidationError{Field: "password", Message: "must be at most 72 bytes"}
	}
	return nil
}
