package goSignup

import (
	"regexp"
	"strings"
)

const minPasswordLength = 6

var (
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailRe = regexp.MustCompile(`^[\w\-.]+@([\w\-]+\.)+[\w\-]{2,4}$`)
	phoneRe = regexp.MustCompile(`^\d{10,11}$`)
)

// normalizeIdentity lower-cases and trims an email so pending and
// verified records share one key namespace.
func normalizeIdentity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeSignupInput(input SignupInput) SignupInput {
	return SignupInput{
		Name:     strings.TrimSpace(input.Name),
		Email:    normalizeIdentity(input.Email),
		Password: strings.TrimSpace(input.Password),
		Phone:    strings.TrimSpace(input.Phone),
		Birthday: strings.TrimSpace(input.Birthday),
		Address:  strings.TrimSpace(input.Address),
	}
}

// validateSignupInput applies the registration policy in fixed order and
// reports the first failing rule. Name, email, password, and phone are
// mandatory; birthday and address are optional.
func validateSignupInput(input SignupInput) error {
	if input.Name == "" || input.Email == "" || input.Password == "" || input.Phone == "" {
		return ErrEmptyInput
	}
	if !nameRe.MatchString(input.Name) {
		return ErrInvalidName
	}
	if !emailRe.MatchString(input.Email) {
		return ErrInvalidEmail
	}
	if !phoneRe.MatchString(input.Phone) {
		return ErrInvalidPhone
	}
	if len(input.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
