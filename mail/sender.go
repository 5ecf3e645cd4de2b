package mail

import (
	"context"
	"log"
)

// Sender delivers a single message to one recipient. Implementations
// must bound their own network time: a stuck transport surfaces as an
// error, never as an indefinitely blocked request.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogSender is a development stand-in that records the delivery attempt
// without the body, so one-time passcodes never reach process logs.
type LogSender struct{}

// Send describes the send operation and its observable behavior.
//
// Send may return an error when input validation, dependency calls, or security checks fail.
// Send does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("mail: delivery suppressed to=%s subject=%q", to, subject)
	return nil
}
