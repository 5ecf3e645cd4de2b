// Package token manages session-credential issuance and verification using configured
// signing keys. Tokens carry the account identifier as their only custom claim.
package token
