package health

import (
	"context"
	"time"

	"github.com/platemenu/platemenu/internal/observability"
)

// CheckResult is one dependency's verdict, serialized as-is into the
// readiness response body.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type Checker interface {
	Check(ctx context.Context) CheckResult
}

// ProbeRunner evaluates a fixed set of dependency checkers for the readiness
// endpoint. A nil runner reports ready, so liveness-only deployments can skip
// wiring it.
type ProbeRunner struct {
	checkers []Checker
	timeout  time.Duration
	readyAt  time.Time
}

func NewProbeRunner(timeout, gracePeriod time.Duration, checkers ...Checker) *ProbeRunner {
	if timeout <= 0 {
		timeout = time.Second
	}
	active := make([]Checker, 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			active = append(active, c)
		}
	}
	r := &ProbeRunner{checkers: active, timeout: timeout}
	if gracePeriod > 0 {
		r.readyAt = time.Now().Add(gracePeriod)
	}
	return r
}

func (r *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	if r == nil {
		return true, nil
	}
	if !r.readyAt.IsZero() && time.Now().Before(r.readyAt) {
		return false, []CheckResult{{
			Name:  "startup_grace",
			Error: "startup grace period active",
		}}
	}

	ok := true
	results := make([]CheckResult, 0, len(r.checkers))
	for _, c := range r.checkers {
		res := r.run(ctx, c)
		observability.RecordHealthCheckResult(ctx, res.Name, res.Healthy)
		results = append(results, res)
		ok = ok && res.Healthy
	}
	return ok, results
}

func (r *ProbeRunner) run(ctx context.Context, c Checker) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return c.Check(checkCtx)
}
