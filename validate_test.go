package goSignup

import (
	"errors"
	"testing"
)

func TestNormalizeIdentity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Alice@Example.COM", "alice@example.com"},
		{"  bob@example.com  ", "bob@example.com"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := normalizeIdentity(tc.in); got != tc.want {
			t.Fatalf("normalizeIdentity(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSignupInputTrimsEverything(t *testing.T) {
	got := normalizeSignupInput(SignupInput{
		Name:     "  Alice Example ",
		Email:    " ALICE@example.com ",
		Password: " secret-horse ",
		Phone:    " 01712345678 ",
		Birthday: " 1990-01-02 ",
		Address:  " 1 Example Road ",
	})

	want := SignupInput{
		Name:     "Alice Example",
		Email:    "alice@example.com",
		Password: "secret-horse",
		Phone:    "01712345678",
		Birthday: "1990-01-02",
		Address:  "1 Example Road",
	}
	if got != want {
		t.Fatalf("normalizeSignupInput = %+v, want %+v", got, want)
	}
}

func TestValidateSignupInput(t *testing.T) {
	valid := SignupInput{
		Name:     "Alice Example",
		Email:    "alice@example.com",
		Password: "secret-horse",
		Phone:    "01712345678",
	}

	if err := validateSignupInput(valid); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*SignupInput)
		wantErr error
	}{
		{"empty name", func(in *SignupInput) { in.Name = "" }, ErrEmptyInput},
		{"empty phone", func(in *SignupInput) { in.Phone = "" }, ErrEmptyInput},
		{"hyphenated name", func(in *SignupInput) { in.Name = "Anne-Marie" }, ErrInvalidName},
		{"unicode name", func(in *SignupInput) { in.Name = "Алиса" }, ErrInvalidName},
		{"no tld", func(in *SignupInput) { in.Email = "alice@example" }, ErrInvalidEmail},
		{"long tld", func(in *SignupInput) { in.Email = "alice@example.engineering" }, ErrInvalidEmail},
		{"nine digit phone", func(in *SignupInput) { in.Phone = "123456789" }, ErrInvalidPhone},
		{"twelve digit phone", func(in *SignupInput) { in.Phone = "123456789012" }, ErrInvalidPhone},
		{"phone with dashes", func(in *SignupInput) { in.Phone = "017-1234-567" }, ErrInvalidPhone},
		{"five char password", func(in *SignupInput) { in.Password = "12345" }, ErrPasswordTooShort},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			if err := validateSignupInput(input); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	optional := valid
	optional.Birthday = ""
	optional.Address = ""
	if err := validateSignupInput(optional); err != nil {
		t.Fatalf("optional fields must not be required: %v", err)
	}

	sixChars := valid
	sixChars.Password = "123456"
	if err := validateSignupInput(sixChars); err != nil {
		t.Fatalf("six character password must pass: %v", err)
	}
}

func TestIsValidation(t *testing.T) {
	for _, err := range []error{
		ErrEmptyInput, ErrInvalidName, ErrInvalidEmail, ErrInvalidPhone, ErrPasswordTooShort,
	} {
		if !IsValidation(err) {
			t.Fatalf("expected %v to classify as validation", err)
		}
	}

	for _, err := range []error{
		ErrDuplicateIdentity, ErrOTPInvalid, ErrPendingNotFound, ErrInvalidCredentials, nil,
	} {
		if IsValidation(err) {
			t.Fatalf("expected %v to not classify as validation", err)
		}
	}
}
