package tracing

import (
	"context"

	"github.com/Kargones/emprev/internal/pkg/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName — имя tracer-а для span-ов бэкенда.
const InstrumentationName = "github.com/Kargones/emprev"

// Tracer возвращает tracer глобального TracerProvider.
// До вызова NewTracerProvider это no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// NewNopTracerProvider возвращает shutdown function без действий.
func NewNopTracerProvider() func(context.Context) error {
	return func(context.Context) error { return nil }
}

// NewTracerProvider регистрирует глобальный TracerProvider, отправляющий
// span-ы HTTP запросов и OperationTime в OTLP collector.
// Выключенный трейсинг даёт nop shutdown без ошибки.
func NewTracerProvider(cfg Config, logger logging.Logger) (func(context.Context) error, error) {
	if !cfg.Enabled {
		logger.Debug("трейсинг выключен")
		return NewNopTracerProvider(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}
	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplingRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator)

	logger.Info("трейсинг включён",
		"endpoint", cfg.Endpoint,
		"service_name", cfg.ServiceName,
		"environment", cfg.Environment,
		"sampling_rate", cfg.SamplingRate,
	)
	return tp.Shutdown, nil
}

// newResource описывает экземпляр сервиса. NewSchemaless: schema URL
// resource.Default() и semconv v1.26.0 различаются, Merge их не примиряет.
func newResource(cfg Config) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpointHost(cfg.Endpoint)),
		otlptracehttp.WithTimeout(cfg.Timeout),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(context.Background(), opts...)
}

// newSampler решает, сохранять ли трейс запроса.
//
// Запрос без traceparent получает trace ID из X-Request-ID, но без span ID.
// Такой родитель невалиден, решение принимает root sampler по доле
// SamplingRate. TraceIDRatioBased зависит только от trace ID, поэтому
// повтор запроса с тем же X-Request-ID попадает в выборку так же.
// traceparent вызывающего сервиса с флагом sampled тоже проходит через долю:
// сервис не пишет больше трейсов, чем настроено.
func newSampler(rate float64) sdktrace.Sampler {
	ratio := sdktrace.TraceIDRatioBased(rate)
	return sdktrace.ParentBased(ratio, sdktrace.WithRemoteParentSampled(ratio))
}
