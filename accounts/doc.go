// Package accounts provides the Redis-backed implementation of the
// engine's account store. Integrators with their own user database can
// implement goSignup.AccountStore directly instead.
package accounts
