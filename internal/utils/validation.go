package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate performs validation on a struct.
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range errs {
			messages = append(messages, strings.ToLower(e.Field())+" failed the "+e.Tag()+" check")
		}
		return strings.Join(messages, ", ")
	}
	return err.Error()
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether the address has the basic user@domain.tld
// shape. Full RFC validation is deliberately not attempted.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Sanitize trims surrounding whitespace and strips angle brackets from
// free-text input before it reaches the store.
func Sanitize(input string) string {
	input = strings.TrimSpace(input)
	return strings.NewReplacer("<", "", ">", "").Replace(input)
}
