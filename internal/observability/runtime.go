package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/platemenu/platemenu/internal/config"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime owns the OTel provider set for one process. Providers are nil when
// their signal is disabled in config.
type Runtime struct {
	LoggerProvider *sdklog.LoggerProvider
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider

	shutdowns []func(context.Context) error
}

func (r *Runtime) track(shutdown func(context.Context) error) {
	if shutdown != nil {
		r.shutdowns = append(r.shutdowns, shutdown)
	}
}

// InitRuntime brings up logs, metrics and tracing in order, unwinding the
// providers already started if a later one fails.
func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	lp, err := InitLogs(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.LoggerProvider = lp
	if lp != nil {
		rt.track(lp.Shutdown)
	}

	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		_ = rt.Shutdown(ctx)
		return nil, err
	}
	rt.MeterProvider = mp
	if mp != nil {
		rt.track(mp.Shutdown)
	}

	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		_ = rt.Shutdown(ctx)
		return nil, err
	}
	rt.TracerProvider = tp
	if tp != nil {
		rt.track(tp.Shutdown)
	}

	return rt, nil
}

// Shutdown flushes and stops every provider that was started, newest first.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.shutdowns) - 1; i >= 0; i-- {
		if err := r.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.shutdowns = nil
	return errors.Join(errs...)
}
