// Package httpapi exposes the registration engine over a small JSON HTTP surface.
//
// # Endpoints
//
//   - POST /signup      — start a registration and mail a verification code.
//   - POST /verify-otp  — redeem a code, create the account, return a session token.
//   - POST /resend-otp  — re-mail a fresh code for a pending registration.
//   - POST /login       — authenticate a verified account, return a session token.
//   - GET  /healthz     — liveness probe.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// registration logic itself — all decisions are delegated to the engine, and error
// sentinels are mapped onto status codes here and nowhere else.
//
// # What this package must NOT do
//
//   - Access Redis or the account store directly (Engine handles I/O).
//   - Leak internal error detail for non-client faults (5xx bodies stay generic).
//   - Echo back passwords or verification codes in any response.
package httpapi
