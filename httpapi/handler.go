package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	goSignup "github.com/MrEthical07/goSignup"
)

// Handler serves the registration endpoints on top of a built engine.
type Handler struct {
	engine *goSignup.Engine
	mux    *http.ServeMux
}

// NewHandler wires the route table for the given engine.
func NewHandler(engine *goSignup.Engine) *Handler {
	h := &Handler{engine: engine}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", h.handleSignup)
	mux.HandleFunc("POST /verify-otp", h.handleVerifyOTP)
	mux.HandleFunc("POST /resend-otp", h.handleResendOTP)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	h.mux = mux

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body goSignup.SignupInput
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.engine.Signup(withRequestContext(r), body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status": string(result.Status),
		"email":  result.Email,
	})
}

func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.engine.VerifyOTP(withRequestContext(r), body.Email, body.OTP)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": string(result.Status),
		"token":  result.Token,
		"user":   result.Account,
	})
}

func (h *Handler) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.engine.ResendOTP(withRequestContext(r), body.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  string(result.Status),
		"message": "verification code resent to " + result.Email,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.engine.Login(withRequestContext(r), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":    result.Account.ID,
		"name":  result.Account.Name,
		"email": result.Account.Email,
		"token": result.Token,
	})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps engine sentinels onto status codes. Client faults echo the
// sentinel message; anything else stays generic so backend detail never leaks.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case isClientFault(err):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, goSignup.ErrNotificationFailure):
		writeFailure(w, http.StatusBadGateway, err.Error())
	default:
		writeFailure(w, http.StatusInternalServerError, "internal error")
	}
}

func isClientFault(err error) bool {
	if goSignup.IsValidation(err) {
		return true
	}
	switch {
	case errors.Is(err, goSignup.ErrDuplicateIdentity),
		errors.Is(err, goSignup.ErrPendingNotFound),
		errors.Is(err, goSignup.ErrOTPInvalid),
		errors.Is(err, goSignup.ErrAlreadyVerified),
		errors.Is(err, goSignup.ErrInvalidCredentials),
		errors.Is(err, goSignup.ErrAccountUnverified):
		return true
	}
	return false
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  string(goSignup.StatusFailed),
		"message": message,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeFailure(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withRequestContext(r *http.Request) context.Context {
	ctx := r.Context()

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ctx = goSignup.WithClientIP(ctx, host)
	ctx = goSignup.WithUserAgent(ctx, r.UserAgent())

	return ctx
}
