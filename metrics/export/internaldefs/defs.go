package internaldefs

import (
	goSignup "github.com/MrEthical07/goSignup"
)

// CounterDef defines a public type used by goSignup APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSignup.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSignup APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSignup.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the registration engine.
var CounterDefs = []CounterDef{
	{ID: goSignup.MetricSignupSuccess, Name: "gosignup_signup_success_total", Help: "Signups accepted as pending registrations."},
	{ID: goSignup.MetricSignupValidationRejected, Name: "gosignup_signup_validation_rejected_total", Help: "Signups rejected by input validation."},
	{ID: goSignup.MetricSignupDuplicate, Name: "gosignup_signup_duplicate_total", Help: "Signups rejected as duplicate identities."},
	{ID: goSignup.MetricSignupMailFailure, Name: "gosignup_signup_mail_failure_total", Help: "Signups aborted by verification mail delivery failure."},
	{ID: goSignup.MetricVerifySuccess, Name: "gosignup_verify_success_total", Help: "Successful verifications promoting a pending registration."},
	{ID: goSignup.MetricVerifyInvalidCode, Name: "gosignup_verify_invalid_code_total", Help: "Verification attempts with a mismatched code."},
	{ID: goSignup.MetricVerifyNotFound, Name: "gosignup_verify_not_found_total", Help: "Verification attempts without a live pending registration."},
	{ID: goSignup.MetricResendSuccess, Name: "gosignup_resend_success_total", Help: "Successful verification-code resends."},
	{ID: goSignup.MetricResendFailure, Name: "gosignup_resend_failure_total", Help: "Failed verification-code resends."},
	{ID: goSignup.MetricLoginSuccess, Name: "gosignup_login_success_total", Help: "Successful login attempts."},
	{ID: goSignup.MetricLoginFailure, Name: "gosignup_login_failure_total", Help: "Failed login attempts."},
	{ID: goSignup.MetricLoginUnverified, Name: "gosignup_login_unverified_total", Help: "Login attempts against unverified accounts."},
	{ID: goSignup.MetricTokenIssued, Name: "gosignup_token_issued_total", Help: "Issued session tokens."},
}

// HistogramDefs is an exported constant or variable used by the registration engine.
var HistogramDefs = []HistogramDef{
	{ID: goSignup.MetricVerifyLatency, Name: "gosignup_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the registration engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the registration engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
