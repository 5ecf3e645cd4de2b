package goSignup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSignup/internal"
	"github.com/MrEthical07/goSignup/mail"
)

// Signup validates and records a new registration attempt for an
// identity that is neither pending nor verified. The generated passcode
// is mailed before anything is persisted; a delivery failure leaves no
// trace of the attempt.
//
// Signup may return an error when input validation, dependency calls, or security checks fail.
// Signup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Signup(ctx context.Context, input SignupInput) (*SignupResult, error) {
	if e == nil || e.hasher == nil || e.pending == nil || e.accounts == nil || e.mailer == nil {
		return nil, ErrEngineNotReady
	}

	input = normalizeSignupInput(input)
	identity := input.Email

	if err := validateSignupInput(input); err != nil {
		e.metricInc(MetricSignupValidationRejected)
		e.emitAudit(ctx, auditEventSignupFailure, false, identity, "", err, nil)
		return nil, err
	}

	// Collision check spans both stores; the caller learns neither which
	// store matched nor whether the pending window is still open.
	if err := e.checkIdentityCollision(ctx, identity); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			e.metricInc(MetricSignupDuplicate)
		}
		e.emitAudit(ctx, auditEventSignupFailure, false, identity, "", err, nil)
		return nil, err
	}

	passwordHash, err := e.hasher.Hash(input.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventSignupFailure, false, identity, "", err, nil)
		return nil, err
	}

	otp, err := internal.NewOTP(e.config.OTP.Digits)
	if err != nil {
		e.emitAudit(ctx, auditEventSignupFailure, false, identity, "", err, nil)
		return nil, err
	}

	otpHash, err := e.hasher.Hash(otp)
	if err != nil {
		e.emitAudit(ctx, auditEventSignupFailure, false, identity, "", err, nil)
		return nil, err
	}

	if err := e.sendOTPMail(ctx, identity, otp); err != nil {
		e.metricInc(MetricSignupMailFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, identity, "", err, nil)
		return nil, err
	}

	recordID, err := internal.NewRecordID()
	if err != nil {
		e.emitAudit(ctx, auditEventSignupFailure, false, identity, "", err, nil)
		return nil, err
	}

	now := time.Now()
	record := &pendingRegistration{
		RecordID:  recordID.String(),
		Identity:  identity,
		Name:      input.Name,
		PassHash:  passwordHash,
		OTPHash:   otpHash,
		Birthday:  input.Birthday,
		Phone:     input.Phone,
		Address:   input.Address,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(e.config.OTP.TTL).Unix(),
	}

	if err := e.pending.Save(ctx, record, e.config.OTP.TTL); err != nil {
		mapped := mapPendingStoreError(err)
		e.emitAudit(ctx, auditEventSignupFailure, false, identity, "", mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, auditEventSignupSuccess, true, identity, "", nil, func() map[string]string {
		return map[string]string{
			"record_id": record.RecordID,
		}
	})

	return &SignupResult{
		Status: StatusPending,
		Email:  identity,
	}, nil
}

func (e *Engine) checkIdentityCollision(ctx context.Context, identity string) error {
	_, err := e.accounts.FindByIdentity(ctx, identity)
	switch {
	case err == nil:
		return ErrDuplicateIdentity
	case errors.Is(err, ErrAccountNotFound):
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	exists, err := e.pending.Exists(ctx, identity)
	if err != nil {
		return mapPendingStoreError(err)
	}
	if exists {
		return ErrDuplicateIdentity
	}

	return nil
}

func (e *Engine) sendOTPMail(ctx context.Context, identity, otp string) error {
	body := mail.OTPMessage(otp, e.config.OTP.TTL)
	if err := e.mailer.Send(ctx, identity, e.config.Registration.MailSubject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailure, err)
	}
	return nil
}
