// Package mail delivers one-time passcodes over SMTP with hard transport
// timeouts: 10s to connect and 5s per read or write by default. Delivery
// failures are returned to the caller; nothing is retried here.
package mail
