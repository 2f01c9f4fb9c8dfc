package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/platemenu/platemenu/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

type AppMetrics struct {
	otpIssuedCounter    metric.Int64Counter
	otpVerifiedCounter  metric.Int64Counter
	authReqDuration     metric.Float64Histogram
	tokenCheckCounter   metric.Int64Counter
	mailDeliveryCounter metric.Int64Counter
	menuOpCounter       metric.Int64Counter
	menuCacheCounter    metric.Int64Counter
	publicMenuDuration  metric.Float64Histogram
	repoOpCounter       metric.Int64Counter
	healthResultCounter metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := serviceResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	m, err := buildAppMetrics(mp.Meter("platemenu"))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func buildAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	m := &AppMetrics{}
	var err error

	counter := func(name string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = meter.Int64Counter(name)
		return c
	}

	m.otpIssuedCounter = counter("auth.otp.issued")
	m.otpVerifiedCounter = counter("auth.otp.verifications")
	m.tokenCheckCounter = counter("auth.session_token.validation.events")
	m.mailDeliveryCounter = counter("mail.delivery.events")
	m.menuOpCounter = counter("menu.operations")
	m.menuCacheCounter = counter("menu.public.cache.events")
	m.repoOpCounter = counter("repository.operations")
	m.healthResultCounter = counter("health.check.results")
	if err != nil {
		return nil, err
	}

	m.authReqDuration, err = meter.Float64Histogram("auth.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of auth endpoint requests in seconds"))
	if err != nil {
		return nil, err
	}
	m.publicMenuDuration, err = meter.Float64Histogram("menu.public.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of public menu builds in seconds"))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	return m
}

func RecordOTPIssued(ctx context.Context, status string) {
	m := current()
	if m == nil {
		return
	}
	m.otpIssuedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordOTPVerification(ctx context.Context, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.otpVerifiedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordAuthRequestDuration(ctx context.Context, operation, status string, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.authReqDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

func RecordTokenValidation(ctx context.Context, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.tokenCheckCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordMailDelivery(ctx context.Context, provider, status string) {
	m := current()
	if m == nil {
		return
	}
	m.mailDeliveryCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

func RecordMenuOperation(ctx context.Context, entity, action, status string) {
	m := current()
	if m == nil {
		return
	}
	m.menuOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("action", action),
		attribute.String("status", status),
	))
}

func RecordMenuCacheEvent(ctx context.Context, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.menuCacheCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordPublicMenuDuration(ctx context.Context, status string, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.publicMenuDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, status string) {
	m := current()
	if m == nil {
		return
	}
	m.repoOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

func RecordHealthCheckResult(ctx context.Context, name string, healthy bool) {
	m := current()
	if m == nil {
		return
	}
	m.healthResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", name),
		attribute.Bool("healthy", healthy),
	))
}
