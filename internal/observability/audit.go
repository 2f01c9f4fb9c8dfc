package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Audit emits a structured audit line for security-relevant events such as
// passcode issuance, verification outcomes and menu mutations. Trace and span
// IDs are stamped by the logging pipeline, not here.
func Audit(r *http.Request, event string, attrs ...any) {
	requestID := chimiddleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = r.Header.Get("X-Request-Id")
	}

	line := make([]any, 0, 8+len(attrs))
	line = append(line,
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID,
	)
	line = append(line, attrs...)
	slog.InfoContext(r.Context(), "audit", line...)
}
