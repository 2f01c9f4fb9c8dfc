package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/platemenu/platemenu/internal/config"
	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/service"
)

func TestOTPLoginFlow(t *testing.T) {
	baseURL, client, mailer, closeFn := newTestServer(t)
	defer closeFn()

	resp, _ := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/otp/send", map[string]string{
		"email": "diner-owner@example.com",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send otp failed: status=%d", resp.StatusCode)
	}
	msg := mailer.waitForPasscode(t)

	resp, raw := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/otp/verify", map[string]string{
		"email": "diner-owner@example.com",
		"otp":   "000000",
	}, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong code, got %d", resp.StatusCode)
	}
	if env := decodeAPIError(t, raw); env.Error == nil || env.Error.Message != "invalid or expired passcode" {
		t.Fatalf("expected generic rejection message, got %s", raw)
	}

	var result service.VerifyResult
	resp, raw = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/otp/verify", map[string]string{
		"email": "diner-owner@example.com",
		"otp":   msg.Code,
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify failed: status=%d body=%s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode verify result: %v", err)
	}
	if result.User == nil || result.User.Email != "diner-owner@example.com" {
		t.Fatalf("expected account created on first login, got %+v", result.User)
	}

	// The passcode is single use.
	resp, _ = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/otp/verify", map[string]string{
		"email": "diner-owner@example.com",
		"otp":   msg.Code,
	}, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 on passcode reuse, got %d", resp.StatusCode)
	}

	var me domain.User
	resp, raw = doJSON(t, client, http.MethodGet, baseURL+"/api/v1/me", nil, result.Token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me failed: status=%d body=%s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != result.User.ID || me.Email != "diner-owner@example.com" {
		t.Fatalf("unexpected profile %+v", me)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	baseURL, client, _, closeFn := newTestServer(t)
	defer closeFn()

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/me"},
		{http.MethodGet, "/api/v1/restaurants/"},
		{http.MethodPost, "/api/v1/restaurants/"},
	} {
		resp, raw := doJSON(t, client, route.method, baseURL+route.path, nil, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without token, got %d", route.method, route.path, resp.StatusCode)
		}
		if env := decodeAPIError(t, raw); env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
			t.Fatalf("%s %s: expected UNAUTHORIZED envelope, got %s", route.method, route.path, raw)
		}
	}

	resp, _ := doJSON(t, client, http.MethodGet, baseURL+"/api/v1/me", nil, "not-a-token")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
}

func TestOTPBypassCode(t *testing.T) {
	baseURL, client, _, closeFn := newTestServerWithOptions(t, testServerOptions{
		cfgOverride: func(cfg *config.Config) {
			cfg.AuthOTPBypassEnabled = true
			cfg.AuthOTPBypassCode = "424242"
		},
	})
	defer closeFn()

	var result service.VerifyResult
	resp, raw := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/otp/verify", map[string]string{
		"email": "reviewer@example.com",
		"otp":   "424242",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bypass verify failed: status=%d body=%s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode verify result: %v", err)
	}
	if result.User == nil || result.User.Email != "reviewer@example.com" {
		t.Fatalf("expected account for bypass login, got %+v", result.User)
	}
}

func TestHealthEndpoints(t *testing.T) {
	baseURL, client, _, closeFn := newTestServer(t)
	defer closeFn()

	resp, _ := doJSON(t, client, http.MethodGet, baseURL+"/health/live", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("live probe failed: status=%d", resp.StatusCode)
	}
	resp, _ = doJSON(t, client, http.MethodGet, baseURL+"/health/ready", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready probe failed: status=%d", resp.StatusCode)
	}
}
