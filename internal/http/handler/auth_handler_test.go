package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/service"
)

type fakeOTPService struct {
	issueErr  error
	verifyErr error
	result    *service.VerifyResult

	issuedEmail   string
	verifiedEmail string
	verifiedCode  string
}

func (f *fakeOTPService) Issue(_ context.Context, email string) error {
	f.issuedEmail = email
	return f.issueErr
}

func (f *fakeOTPService) Verify(_ context.Context, email, code string) (*service.VerifyResult, error) {
	f.verifiedEmail = email
	f.verifiedCode = code
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.result, nil
}

func (f *fakeOTPService) PurgeExpired(context.Context) (int64, error) { return 0, nil }

func TestSendOTP(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		issueErr   error
		wantStatus int
	}{
		{"ok", `{"email":"a@example.com"}`, nil, http.StatusOK},
		{"invalid email", `{"email":"nope"}`, service.ErrInvalidEmail, http.StatusBadRequest},
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"internal error", `{"email":"a@example.com"}`, context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeOTPService{issueErr: tc.issueErr}
			h := NewAuthHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/send", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.SendOTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if tc.wantStatus == http.StatusOK {
				var body map[string]any
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if body["success"] != true {
					t.Fatalf("expected success reply, got %v", body)
				}
				if svc.issuedEmail != "a@example.com" {
					t.Fatalf("expected issue called with email, got %q", svc.issuedEmail)
				}
			}
		})
	}
}

func TestVerifyOTP(t *testing.T) {
	user := &domain.User{ID: 7, Email: "a@example.com"}
	result := &service.VerifyResult{User: user, Token: "signed-token", ExpiresAt: time.Now().Add(time.Hour)}

	t.Run("ok", func(t *testing.T) {
		svc := &fakeOTPService{result: result}
		h := NewAuthHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/verify", strings.NewReader(`{"email":"a@example.com","otp":"123456"}`))
		rec := httptest.NewRecorder()
		h.VerifyOTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var got service.VerifyResult
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if got.Token != "signed-token" || got.User == nil || got.User.ID != 7 {
			t.Fatalf("unexpected response %+v", got)
		}
		if svc.verifiedCode != "123456" {
			t.Fatalf("expected verify called with code, got %q", svc.verifiedCode)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		h := NewAuthHandler(&fakeOTPService{verifyErr: service.ErrInvalidOTP})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/verify", strings.NewReader(`{"email":"a@example.com","otp":"000000"}`))
		rec := httptest.NewRecorder()
		h.VerifyOTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid or expired passcode") {
			t.Fatalf("expected generic rejection message, got %s", rec.Body.String())
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		h := NewAuthHandler(&fakeOTPService{verifyErr: service.ErrInvalidEmail})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/verify", strings.NewReader(`{"email":"nope","otp":"123456"}`))
		rec := httptest.NewRecorder()
		h.VerifyOTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("internal error", func(t *testing.T) {
		h := NewAuthHandler(&fakeOTPService{verifyErr: context.DeadlineExceeded})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/verify", strings.NewReader(`{"email":"a@example.com","otp":"123456"}`))
		rec := httptest.NewRecorder()
		h.VerifyOTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
