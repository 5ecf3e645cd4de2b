package goSignup

import "errors"

var (
	// ErrEmptyInput is an exported constant or variable used by the registration engine.
	ErrEmptyInput = errors.New("empty input fields")
	// ErrInvalidName is an exported constant or variable used by the registration engine.
	ErrInvalidName = errors.New("invalid name entered")
	// ErrInvalidEmail is an exported constant or variable used by the registration engine.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPhone is an exported constant or variable used by the registration engine.
	ErrInvalidPhone = errors.New("invalid phone number")
	// ErrPasswordTooShort is an exported constant or variable used by the registration engine.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrDuplicateIdentity is an exported constant or variable used by the registration engine.
	ErrDuplicateIdentity = errors.New("account already exists or is pending verification")
	// ErrPendingNotFound is an exported constant or variable used by the registration engine.
	ErrPendingNotFound = errors.New("no pending registration found")
	// ErrOTPInvalid is an exported constant or variable used by the registration engine.
	ErrOTPInvalid = errors.New("invalid otp")
	// ErrInvalidCredentials is an exported constant or variable used by the registration engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountUnverified is an exported constant or variable used by the registration engine.
	ErrAccountUnverified = errors.New("please verify your email first")
	// ErrAlreadyVerified is an exported constant or variable used by the registration engine.
	ErrAlreadyVerified = errors.New("already verified")
	// ErrNotificationFailure is an exported constant or variable used by the registration engine.
	ErrNotificationFailure = errors.New("verification email delivery failed")
	// ErrStoreUnavailable is an exported constant or variable used by the registration engine.
	ErrStoreUnavailable = errors.New("registration backend unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the registration engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrStoreDuplicateIdentity is an exported constant or variable used by the registration engine.
	ErrStoreDuplicateIdentity = errors.New("account store duplicate identity")
	// ErrAccountNotFound is an exported constant or variable used by the registration engine.
	ErrAccountNotFound = errors.New("account not found")
)

// IsValidation reports whether err is one of the input-validation
// failures produced by signup, verify, resend, or login.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrEmptyInput),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrPasswordTooShort):
		return true
	default:
		return false
	}
}
