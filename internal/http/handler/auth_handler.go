package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/platemenu/platemenu/internal/http/response"
	"github.com/platemenu/platemenu/internal/observability"
	"github.com/platemenu/platemenu/internal/service"
)

type AuthHandler struct {
	otpSvc service.OTPServiceInterface
}

func NewAuthHandler(otpSvc service.OTPServiceInterface) *AuthHandler {
	return &AuthHandler{otpSvc: otpSvc}
}

// SendOTP issues a passcode for the address. The reply carries no hint of
// whether delivery succeeded; by the time the mail goes out the request has
// already returned.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	if err := h.otpSvc.Issue(r.Context(), body.Email); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			observability.RecordAuthRequestDuration(r.Context(), "send_otp", "bad_request", time.Since(start))
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid email", nil)
			return
		}
		observability.RecordAuthRequestDuration(r.Context(), "send_otp", "error", time.Since(start))
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to send passcode", nil)
		return
	}

	observability.Audit(r, "auth.otp_sent", "email", body.Email)
	observability.RecordAuthRequestDuration(r.Context(), "send_otp", "ok", time.Since(start))
	response.JSON(w, r, http.StatusOK, map[string]any{"success": true})
}

// VerifyOTP exchanges a passcode for a session token, creating the account
// on first login. Every rejection looks the same to the caller.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	result, err := h.otpSvc.Verify(r.Context(), body.Email, body.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			observability.RecordAuthRequestDuration(r.Context(), "verify_otp", "bad_request", time.Since(start))
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid email", nil)
		case errors.Is(err, service.ErrInvalidOTP):
			observability.Audit(r, "auth.otp_rejected", "email", body.Email)
			observability.RecordAuthRequestDuration(r.Context(), "verify_otp", "rejected", time.Since(start))
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired passcode", nil)
		default:
			observability.RecordAuthRequestDuration(r.Context(), "verify_otp", "error", time.Since(start))
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to verify passcode", nil)
		}
		return
	}

	observability.Audit(r, "auth.otp_verified", "user_id", result.User.ID)
	observability.RecordAuthRequestDuration(r.Context(), "verify_otp", "ok", time.Since(start))
	response.JSON(w, r, http.StatusOK, result)
}
