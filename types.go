package goSignup

import "context"

// RegistrationStatus represents the lifecycle state reported back to
// callers for a given identity key.
type RegistrationStatus string

const (
	// StatusPending is an exported constant or variable used by the registration engine.
	StatusPending RegistrationStatus = "PENDING"
	// StatusSuccess is an exported constant or variable used by the registration engine.
	StatusSuccess RegistrationStatus = "SUCCESS"
	// StatusFailed is an exported constant or variable used by the registration engine.
	StatusFailed RegistrationStatus = "FAILED"
)

// Account is the full verified-account record returned by [AccountStore].
// It carries the credential hash and profile fields captured at signup.
type Account struct {
	AccountID      string
	Identity       string
	Name           string
	CredentialHash string
	Birthday       string
	Phone          string
	Address        string
	Verified       bool
	Admin          bool
	CreatedAt      int64
}

// CreateAccountInput defines a public type used by goSignup APIs.
//
// CreateAccountInput instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CreateAccountInput struct {
	Identity       string
	Name           string
	CredentialHash string
	Birthday       string
	Phone          string
	Address        string
	Verified       bool
}

// AccountStore is the durable backing store for verified accounts.
// Implementations must enforce identity uniqueness atomically: Create
// for an identity that already exists must fail with
// [ErrStoreDuplicateIdentity] even under concurrent callers.
//
// A Redis-backed implementation ships in the accounts subpackage;
// integrators may substitute their own database.
type AccountStore interface {
	FindByIdentity(ctx context.Context, identity string) (Account, error)
	Create(ctx context.Context, input CreateAccountInput) (Account, error)
	UpdateCredentialHash(ctx context.Context, accountID string, newHash string) error
}

// SignupInput defines a public type used by goSignup APIs.
//
// SignupInput instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Birthday string
	Address  string
}

// PublicAccount is the minimal profile returned after verification and
// login. It never carries the credential hash.
type PublicAccount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SignupResult defines a public type used by goSignup APIs.
//
// SignupResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignupResult struct {
	Status RegistrationStatus
	Email  string
}

// VerifyResult defines a public type used by goSignup APIs.
//
// VerifyResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VerifyResult struct {
	Status  RegistrationStatus
	Token   string
	Account PublicAccount
}

// ResendResult defines a public type used by goSignup APIs.
//
// ResendResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResendResult struct {
	Status RegistrationStatus
	Email  string
}

// LoginResult defines a public type used by goSignup APIs.
//
// LoginResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginResult struct {
	Token   string
	Account PublicAccount
}
