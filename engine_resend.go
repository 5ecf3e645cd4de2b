package goSignup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSignup/internal"
)

// ResendOTP replaces the pending registration for email with a fresh
// passcode and a fresh expiry window, keeping the profile payload. The
// new code is mailed before the replacement lands; on delivery failure
// the previous record stays authoritative. After a successful resend the
// previous code can no longer verify.
//
// ResendOTP may return an error when input validation, dependency calls, or security checks fail.
// ResendOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResendOTP(ctx context.Context, email string) (*ResendResult, error) {
	if e == nil || e.hasher == nil || e.pending == nil || e.accounts == nil || e.mailer == nil {
		return nil, ErrEngineNotReady
	}

	identity := normalizeIdentity(email)
	if identity == "" {
		e.metricInc(MetricResendFailure)
		e.emitAudit(ctx, auditEventOTPResendFailure, false, identity, "", ErrEmptyInput, nil)
		return nil, ErrEmptyInput
	}

	record, err := e.pending.Find(ctx, identity)
	if err != nil {
		mapped := mapPendingStoreError(err)
		e.metricInc(MetricResendFailure)
		e.emitAudit(ctx, auditEventOTPResendFailure, false, identity, "", mapped, nil)
		return nil, mapped
	}

	if err := e.checkAlreadyVerified(ctx, identity); err != nil {
		e.metricInc(MetricResendFailure)
		e.emitAudit(ctx, auditEventOTPResendFailure, false, identity, "", err, nil)
		return nil, err
	}

	otp, err := internal.NewOTP(e.config.OTP.Digits)
	if err != nil {
		e.metricInc(MetricResendFailure)
		e.emitAudit(ctx, auditEventOTPResendFailure, false, identity, "", err, nil)
		return nil, err
	}

	otpHash, err := e.hasher.Hash(otp)
	if err != nil {
		e.metricInc(MetricResendFailure)
		e.emitAudit(ctx, auditEventOTPResendFailure, false, identity, "", err, nil)
		return nil, err
	}

	if err := e.sendOTPMail(ctx, identity, otp); err != nil {
		e.metricInc(MetricResendFailure)
		e.emitAudit(ctx, auditEventOTPResendFailure, false, identity, "", err, nil)
		return nil, err
	}

	recordID, err := internal.NewRecordID()
	if err != nil {
		e.metricInc(MetricResendFailure)
		e.emitAudit(ctx, auditEventOTPResendFailure, false, identity, "", err, nil)
		return nil, err
	}

	now := time.Now()
	replacement := &pendingRegistration{
		RecordID:  recordID.String(),
		Identity:  record.Identity,
		Name:      record.Name,
		PassHash:  record.PassHash,
		OTPHash:   otpHash,
		Birthday:  record.Birthday,
		Phone:     record.Phone,
		Address:   record.Address,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(e.config.OTP.TTL).Unix(),
	}

	if err := e.pending.Replace(ctx, replacement, e.config.OTP.TTL); err != nil {
		mapped := mapPendingStoreError(err)
		e.metricInc(MetricResendFailure)
		e.emitAudit(ctx, auditEventOTPResendFailure, false, identity, "", mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricResendSuccess)
	e.emitAudit(ctx, auditEventOTPResendSuccess, true, identity, "", nil, func() map[string]string {
		return map[string]string{
			"record_id":          replacement.RecordID,
			"replaced_record_id": record.RecordID,
		}
	})

	return &ResendResult{
		Status: StatusPending,
		Email:  identity,
	}, nil
}

func (e *Engine) checkAlreadyVerified(ctx context.Context, identity string) error {
	account, err := e.accounts.FindByIdentity(ctx, identity)
	switch {
	case err == nil:
		if account.Verified {
			return ErrAlreadyVerified
		}
		return nil
	case errors.Is(err, ErrAccountNotFound):
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
