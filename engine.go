package goSignup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goSignup/credential"
	"github.com/MrEthical07/goSignup/mail"
	"github.com/MrEthical07/goSignup/token"
)

// Engine defines a public type used by goSignup APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	pending      *pendingRegistrationStore
	accounts     AccountStore
	mailer       mail.Sender
	audit        *auditDispatcher
	metrics      *Metrics
	hasher       *credential.Hasher
	tokenManager *token.Manager
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// ParseSessionToken verifies a session credential previously issued by
// VerifyOTP or Login and returns the account identifier it carries.
func (e *Engine) ParseSessionToken(tokenStr string) (string, error) {
	if e == nil || e.tokenManager == nil {
		return "", ErrEngineNotReady
	}
	claims, err := e.tokenManager.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.UID, nil
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if e == nil || e.hasher == nil || e.tokenManager == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}

	identity := normalizeIdentity(email)
	password = strings.TrimSpace(password)

	if identity == "" || password == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, identity, "", ErrEmptyInput, nil)
		return nil, ErrEmptyInput
	}

	account, err := e.accounts.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Unknown identity and wrong password must be observably
			// identical.
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, identity, "", ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, identity, "", ErrStoreUnavailable, nil)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := e.hasher.Verify(password, account.CredentialHash)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, identity, account.AccountID, err, nil)
		return nil, fmt.Errorf("credential verify: %w", err)
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, identity, account.AccountID, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	if !account.Verified {
		e.metricInc(MetricLoginUnverified)
		e.emitAudit(ctx, auditEventLoginFailure, false, identity, account.AccountID, ErrAccountUnverified, nil)
		return nil, ErrAccountUnverified
	}

	if e.config.Registration.UpgradeOnLogin {
		e.maybeUpgradeCredential(ctx, account, password)
	}

	sessionToken, err := e.tokenManager.Issue(account.AccountID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, identity, account.AccountID, err, nil)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventLoginSuccess, true, identity, account.AccountID, nil, nil)

	return &LoginResult{
		Token: sessionToken,
		Account: PublicAccount{
			ID:    account.AccountID,
			Name:  account.Name,
			Email: account.Identity,
		},
	}, nil
}

// maybeUpgradeCredential rehashes on login when the stored hash carries
// weaker parameters than the current configuration. Best effort: a
// failed upgrade never fails the login.
func (e *Engine) maybeUpgradeCredential(ctx context.Context, account Account, password string) {
	needs, err := e.hasher.NeedsUpgrade(account.CredentialHash)
	if err != nil || !needs {
		return
	}

	newHash, err := e.hasher.Hash(password)
	if err != nil {
		return
	}

	_ = e.accounts.UpdateCredentialHash(ctx, account.AccountID, newHash)
}

func (e *Engine) issueSessionToken(accountID string) (string, error) {
	sessionToken, err := e.tokenManager.Issue(accountID)
	if err != nil {
		return "", err
	}
	e.metricInc(MetricTokenIssued)
	return sessionToken, nil
}

func mapPendingStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errPendingNotFound):
		return ErrPendingNotFound
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
