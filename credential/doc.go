// Package credential implements secret hashing and verification with Argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The same [Hasher] serves account passwords and one-time passcodes; the
// salt drawn per Hash call keeps equal inputs from producing equal hashes.
// A stored hash that fails to parse surfaces [ErrMalformedHash] so callers
// can distinguish corrupt data from a plain mismatch.
package credential
