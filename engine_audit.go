package goSignup

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSignupSuccess    = "signup_success"
	auditEventSignupFailure    = "signup_failure"
	auditEventOTPVerifySuccess = "otp_verify_success"
	auditEventOTPVerifyFailure = "otp_verify_failure"
	auditEventOTPResendSuccess = "otp_resend_success"
	auditEventOTPResendFailure = "otp_resend_failure"
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
)

// AuditErrorCode defines a public type used by goSignup APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrValidation         AuditErrorCode = "validation_failed"
	auditErrDuplicate          AuditErrorCode = "duplicate_identity"
	auditErrPendingNotFound    AuditErrorCode = "pending_not_found"
	auditErrOTPInvalid         AuditErrorCode = "invalid_otp"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrUnverified         AuditErrorCode = "account_unverified"
	auditErrAlreadyVerified    AuditErrorCode = "already_verified"
	auditErrNotification       AuditErrorCode = "notification_failure"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identity string,
	accountID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadata["user_agent"] = ua
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Identity:  identity,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case IsValidation(err):
		return auditErrValidation
	case errors.Is(err, ErrDuplicateIdentity),
		errors.Is(err, ErrStoreDuplicateIdentity):
		return auditErrDuplicate
	case errors.Is(err, ErrPendingNotFound):
		return auditErrPendingNotFound
	case errors.Is(err, ErrOTPInvalid):
		return auditErrOTPInvalid
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAccountUnverified):
		return auditErrUnverified
	case errors.Is(err, ErrAlreadyVerified):
		return auditErrAlreadyVerified
	case errors.Is(err, ErrNotificationFailure):
		return auditErrNotification
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
