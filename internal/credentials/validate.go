package credentials

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail requires local@domain with at least one dot in the domain.
func ValidateEmail(email string) error {
	return validation.Validate(email,
		validation.Required,
		validation.Match(emailPattern).Error("must be a valid email address"),
	)
}

// ValidatePassword requires at least MinPasswordLength characters.
func ValidatePassword(password string) error {
	return validation.Validate(password,
		validation.Required,
		validation.RuneLength(MinPasswordLength, 0),
	)
}

func ValidEmail(email string) bool {
	return ValidateEmail(email) == nil
}

func ValidPassword(password string) bool {
	return ValidatePassword(password) == nil
}
