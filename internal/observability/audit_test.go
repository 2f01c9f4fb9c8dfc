package observability

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAuditEmitsEventAttributes(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	req := httptest.NewRequest("POST", "/api/v1/auth/otp/verify", nil)
	req.Header.Set("X-Request-Id", "req-test-1")

	Audit(req, "auth.otp_verified", "user_id", "42")

	out := buf.String()
	for _, want := range []string{
		"event=auth.otp_verified",
		"method=POST",
		"path=/api/v1/auth/otp/verify",
		"request_id=req-test-1",
		"user_id=42",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in audit line, got %q", want, out)
		}
	}
}
