package goSignup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// VerifyOTP consumes the pending registration for email when code
// matches its stored passcode hash, promotes the payload into a verified
// account, and issues a session credential. A mismatching code leaves
// the record in place so the caller can retry until expiry.
//
// VerifyOTP may return an error when input validation, dependency calls, or security checks fail.
// VerifyOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyOTP(ctx context.Context, email, code string) (*VerifyResult, error) {
	if e == nil || e.hasher == nil || e.pending == nil || e.accounts == nil || e.tokenManager == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()

	identity := normalizeIdentity(email)
	code = strings.TrimSpace(code)

	if identity == "" || code == "" {
		e.emitAudit(ctx, auditEventOTPVerifyFailure, false, identity, "", ErrEmptyInput, nil)
		return nil, ErrEmptyInput
	}

	record, err := e.pending.Find(ctx, identity)
	if err != nil {
		mapped := mapPendingStoreError(err)
		if errors.Is(mapped, ErrPendingNotFound) {
			e.metricInc(MetricVerifyNotFound)
		}
		e.emitAudit(ctx, auditEventOTPVerifyFailure, false, identity, "", mapped, nil)
		return nil, mapped
	}

	ok, err := e.hasher.Verify(code, record.OTPHash)
	if err != nil {
		e.emitAudit(ctx, auditEventOTPVerifyFailure, false, identity, "", err, nil)
		return nil, fmt.Errorf("otp verify: %w", err)
	}
	if !ok {
		e.metricInc(MetricVerifyInvalidCode)
		e.emitAudit(ctx, auditEventOTPVerifyFailure, false, identity, "", ErrOTPInvalid, func() map[string]string {
			return map[string]string{
				"record_id": record.RecordID,
			}
		})
		return nil, ErrOTPInvalid
	}

	account, err := e.accounts.Create(ctx, CreateAccountInput{
		Identity:       record.Identity,
		Name:           record.Name,
		CredentialHash: record.PassHash,
		Birthday:       record.Birthday,
		Phone:          record.Phone,
		Address:        record.Address,
		Verified:       true,
	})
	if err != nil {
		if errors.Is(err, ErrStoreDuplicateIdentity) {
			// A concurrent verify already promoted this identity. Clear
			// the leftover record and report the terminal state.
			_ = e.pending.DeleteByID(ctx, identity, record.RecordID)
			e.emitAudit(ctx, auditEventOTPVerifyFailure, false, identity, "", ErrAlreadyVerified, nil)
			return nil, ErrAlreadyVerified
		}
		e.emitAudit(ctx, auditEventOTPVerifyFailure, false, identity, "", ErrStoreUnavailable, nil)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Delete by the record generation we actually read. A resend that
	// landed in between keeps its fresher record; best effort otherwise,
	// the key TTL purges stragglers.
	if err := e.pending.DeleteByID(ctx, identity, record.RecordID); err != nil {
		e.emitAudit(ctx, auditEventOTPVerifyFailure, false, identity, account.AccountID, mapPendingStoreError(err), func() map[string]string {
			return map[string]string{
				"stage": "pending_cleanup",
			}
		})
	}

	sessionToken, err := e.issueSessionToken(account.AccountID)
	if err != nil {
		e.emitAudit(ctx, auditEventOTPVerifyFailure, false, identity, account.AccountID, err, nil)
		return nil, err
	}

	e.metricInc(MetricVerifySuccess)
	if e.metrics != nil {
		e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}
	e.emitAudit(ctx, auditEventOTPVerifySuccess, true, identity, account.AccountID, nil, nil)

	return &VerifyResult{
		Status: StatusSuccess,
		Token:  sessionToken,
		Account: PublicAccount{
			ID:    account.AccountID,
			Name:  account.Name,
			Email: account.Identity,
		},
	}, nil
}
