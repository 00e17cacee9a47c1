package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// maxDescriptionRunes is the longest description the gateway accepts.
const maxDescriptionRunes = 100

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateEmail reports whether the address has standard email syntax.
func ValidateEmail(email string) bool {
	if email == "" || strings.TrimSpace(email) != email {
		return false
	}
	return validate.Var(email, "required,email") == nil
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
