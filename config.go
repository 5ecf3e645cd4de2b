package goSignup

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by goSignup APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token        TokenConfig
	OTP          OTPConfig
	Registration RegistrationConfig
	Credential   CredentialConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by goSignup APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	TTL           time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines a public type used by goSignup APIs.
//
// OTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPConfig struct {
	Digits      int
	TTL         time.Duration
	RedisPrefix string
}

/*
====================================
REGISTRATION CONFIG
====================================
*/

// RegistrationConfig defines a public type used by goSignup APIs.
//
// RegistrationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegistrationConfig struct {
	MailSubject    string
	UpgradeOnLogin bool
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig defines a public type used by goSignup APIs.
//
// CredentialConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CredentialConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by goSignup APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSignup APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the engine defaults: 6-digit OTP with a 1-hour
// window, 1-hour session tokens, and argon2id cost parameters sized for
// interactive logins.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:           1 * time.Hour,
			SigningMethod: "ed25519",
			Leeway:        30 * time.Second,
		},
		OTP: OTPConfig{
			Digits:      6,
			TTL:         1 * time.Hour,
			RedisPrefix: "preg",
		},
		Registration: RegistrationConfig{
			MailSubject:    "Verify Your Email",
			UpgradeOnLogin: true,
		},
		Credential: CredentialConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Token
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be > 0")
	}
	if c.Token.SigningMethod != "ed25519" && c.Token.SigningMethod != "hs256" {
		return errors.New("unsupported token signing method")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2 minutes")
	}

	// OTP
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		return errors.New("OTP Digits must be between 4 and 10")
	}
	if c.OTP.TTL < time.Minute {
		return errors.New("OTP TTL must be >= 1 minute")
	}
	if strings.TrimSpace(c.OTP.RedisPrefix) == "" {
		return errors.New("OTP RedisPrefix must not be empty")
	}
	if strings.Contains(c.OTP.RedisPrefix, ":") {
		return errors.New("OTP RedisPrefix must not contain ':'")
	}

	// Registration
	if strings.TrimSpace(c.Registration.MailSubject) == "" {
		return errors.New("Registration MailSubject must not be empty")
	}

	// Credential
	if c.Credential.Memory < 8*1024 {
		return errors.New("Credential memory must be >= 8192 KB")
	}
	if c.Credential.Time < 1 {
		return errors.New("Credential time must be >= 1")
	}
	if c.Credential.Parallelism < 1 {
		return errors.New("Credential parallelism must be >= 1")
	}
	if c.Credential.SaltLength < 16 {
		return errors.New("Credential salt length must be >= 16")
	}
	if c.Credential.KeyLength < 16 {
		return errors.New("Credential key length must be >= 16")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
