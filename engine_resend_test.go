package goSignup

import (
	"context"
	"errors"
	"testing"
)

func TestResendOTPReplacesRecord(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	sender := &captureMailSender{}
	engine := newTestEngine(t, rdb, newMockAccountStore(), sender)

	signupPending(t, engine, sender)
	ctx := context.Background()

	before, err := engine.pending.Find(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	result, err := engine.ResendOTP(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("ResendOTP failed: %v", err)
	}
	if result.Status != StatusPending {
		t.Fatalf("expected status %q, got %q", StatusPending, result.Status)
	}
	if sender.count() != 2 {
		t.Fatalf("expected 2 mails, got %d", sender.count())
	}

	after, err := engine.pending.Find(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Find after resend failed: %v", err)
	}
	if after.RecordID == before.RecordID {
		t.Fatal("resend must write a new record generation")
	}
	if after.OTPHash == before.OTPHash {
		t.Fatal("resend must rotate the passcode hash")
	}
	if after.PassHash != before.PassHash || after.Name != before.Name || after.Phone != before.Phone {
		t.Fatal("resend must keep the profile payload")
	}
	if after.ExpiresAt < before.ExpiresAt {
		t.Fatal("resend must not shorten the expiry window")
	}
}

func TestResendOTPNoPendingRegistration(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, newMockAccountStore(), &captureMailSender{})

	_, err := engine.ResendOTP(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected ErrPendingNotFound, got %v", err)
	}
}

func TestResendOTPMissingPendingWinsOverVerifiedAccount(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMockAccountStore()
	store.put(Account{AccountID: "a1", Identity: "alice@example.com", Verified: true})
	engine := newTestEngine(t, rdb, store, &captureMailSender{})

	// With no live pending record the caller hears "not found", not
	// "already verified".
	_, err := engine.ResendOTP(context.Background(), "alice@example.com")
	if !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected ErrPendingNotFound, got %v", err)
	}
}

func TestResendOTPAlreadyVerified(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMockAccountStore()
	sender := &captureMailSender{}
	engine := newTestEngine(t, rdb, store, sender)

	signupPending(t, engine, sender)
	store.put(Account{AccountID: "a1", Identity: "alice@example.com", Verified: true})

	_, err := engine.ResendOTP(context.Background(), "alice@example.com")
	if !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
	if sender.count() != 1 {
		t.Fatalf("already-verified resend must not mail, got %d mails", sender.count())
	}
}

func TestResendOTPMailFailureKeepsOldRecord(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	sender := &captureMailSender{}
	engine := newTestEngine(t, rdb, newMockAccountStore(), sender)

	oldCode := signupPending(t, engine, sender)
	ctx := context.Background()

	sender.failErr = errors.New("smtp down")
	_, err := engine.ResendOTP(ctx, "alice@example.com")
	if !errors.Is(err, ErrNotificationFailure) {
		t.Fatalf("expected ErrNotificationFailure, got %v", err)
	}
	sender.failErr = nil

	// The previous record stays authoritative.
	if _, err := engine.VerifyOTP(ctx, "alice@example.com", oldCode); err != nil {
		t.Fatalf("VerifyOTP with original code failed: %v", err)
	}
}

func TestResendOTPEmptyInput(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, newMockAccountStore(), &captureMailSender{})

	_, err := engine.ResendOTP(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
