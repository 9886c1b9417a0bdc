package errors

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidationError represents a field-specific validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Validator collects field errors and turns them into a single AppError
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, rule, message string, value ...interface{}) {
	var valueStr string
	if len(value) > 0 {
		valueStr = fmt.Sprintf("%v", value[0])
	}

	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   valueStr,
		Rule:    rule,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// GetErrors returns all validation errors
func (v *Validator) GetErrors() []ValidationError {
	return v.errors
}

// ToAppError converts validation errors to an AppError, or nil when there are none
func (v *Validator) ToAppError() *AppError {
	if !v.HasErrors() {
		return nil
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}

	appErr := NewError(ErrConfigurationError, "Validation failed")
	appErr.Details = strings.Join(messages, "; ")
	_ = appErr.WithContext("validation_errors", v.errors)

	return appErr
}

// Err returns the collected errors as an error value, or nil
func (v *Validator) Err() error {
	if appErr := v.ToAppError(); appErr != nil {
		return appErr
	}
	return nil
}

// RequiredField validates that a field is not empty
func (v *Validator) RequiredField(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "required", "Field is required", value)
	}
	return v
}

// ValidateURL validates an absolute http(s) URL with a host
func (v *Validator) ValidateURL(field, raw string) *Validator {
	if raw == "" {
		return v
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		// never echo the URL itself, it embeds the webhook credential
		v.AddError(field, "url_format", "URL must be an absolute http:// or https:// URL")
	}
	return v
}

// Unique records an error when value was already seen
func (v *Validator) Unique(field, value string, seen map[string]struct{}) *Validator {
	if value == "" {
		return v
	}
	key := strings.ToLower(value)
	if _, exists := seen[key]; exists {
		v.AddError(field, "unique", "Value must be unique", value)
		return v
	}
	seen[key] = struct{}{}
	return v
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateUsername validates a platform username or alias handle
func (v *Validator) ValidateUsername(field, username string) *Validator {
	if username == "" {
		return v
	}

	if len(username) > 100 {
		v.AddError(field, "username_length", "Username too long (max 100 characters)", username)
	}

	// Team handles like org/team are allowed as aliases
	if !usernameRegex.MatchString(strings.ReplaceAll(username, "/", "")) {
		v.AddError(field, "username_format",
			"Username can only contain letters, numbers, underscores, hyphens, dots and slashes", username)
	}

	return v
}
