// Package goSignup provides an OTP-gated registration engine: signup requests are
// parked as pending records in Redis until the applicant proves control of their
// email address, at which point a verified account is created and a JWT session
// token is issued.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goSignup is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (SignupResult, VerifyResult, MetricsSnapshot, etc.). Pending-record encoding, audit
// dispatch, and metric counters live in unexported files; credential hashing, token
// issuance, and mail delivery live in their own sub-packages behind small interfaces.
//
// # What this package must NOT do
//
//   - Expose Redis clients, the pending-record codec, or hash formats in its public API.
//   - Log or persist a plaintext OTP or password anywhere, including audit metadata.
//   - Import any sub-package that re-imports goSignup (no import cycles; account storage
//     is injected through [AccountStore]).
//
// # Consistency contract
//
// A verification code is bound to the exact pending record it was mailed for: a resend
// replaces the record atomically, and verification of an older code can neither promote
// the account nor destroy the fresher record. Nothing is persisted for a signup whose
// verification mail could not be handed to the mail backend.
package goSignup
