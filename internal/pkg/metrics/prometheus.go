package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Kargones/emprev/internal/pkg/logging"
	"github.com/Kargones/emprev/internal/pkg/urlutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PrometheusCollector реализует Collector на собственном prometheus.Registry.
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry
	instance string

	events            *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	apiDuration       *prometheus.HistogramVec
}

// NewPrometheusCollector регистрирует метрики:
//   - <ns>_log_records_total{category, level} (counter)
//   - <ns>_operation_duration_seconds{operation, status} (histogram)
//   - <ns>_api_request_duration_seconds{method, route, code} (histogram)
func NewPrometheusCollector(config Config, logger logging.Logger) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	instance := config.InstanceLabel
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			logger.Warn("не удалось получить hostname для metrics instance label, используется 'unknown'",
				"error", err.Error())
			hostname = "unknown"
		}
		instance = hostname
	}

	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "log_records_total",
			Help:      "Total number of emitted log records by category and level",
		},
		[]string{"category", "level"},
	)

	// Бакеты от быстрых запросов к БД (5ms) до пакетных пересчётов выручки (1 минута).
	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of timed business operations in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 10, 60},
		},
		[]string{"operation", "status"},
	)

	apiDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of API calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	// Register вместо MustRegister: ошибка возможна только при дублировании имён.
	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{events, operationDuration, apiDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}

	return &PrometheusCollector{
		config:            config,
		logger:            logger,
		registry:          reg,
		instance:          instance,
		events:            events,
		operationDuration: operationDuration,
		apiDuration:       apiDuration,
	}, nil
}

// maxLabelLength ограничивает длину значения label (cardinality).
const maxLabelLength = 128

// sanitizeLabel заменяет невалидный UTF-8 и контрольные символы на '_'
// и обрезает значение до maxLabelLength рун.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, strings.ToValidUTF8(value, "_"))

	runes := []rune(clean)
	if len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}

var (
	numericSegment = regexp.MustCompile(`^[0-9]+$`)
	uuidSegment    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// NormalizeRoute заменяет идентификаторы в пути на ":id" и отбрасывает query,
// чтобы /employees/42 и /employees/43 попадали в один label.
func NormalizeRoute(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}

	segments := strings.Split(path, "/")
	for i, s := range segments {
		if numericSegment.MatchString(s) || uuidSegment.MatchString(s) {
			segments[i] = ":id"
		}
	}
	return sanitizeLabel(strings.Join(segments, "/"))
}

// codeClass возвращает класс статуса: "2xx", "4xx" и т.д.
func codeClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// RecordEvent увеличивает счётчик записей.
func (c *PrometheusCollector) RecordEvent(category, level string) {
	c.events.WithLabelValues(sanitizeLabel(category), sanitizeLabel(strings.ToLower(level))).Inc()
}

// RecordOperation записывает длительность операции со статусом success/error.
func (c *PrometheusCollector) RecordOperation(operation string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.operationDuration.WithLabelValues(sanitizeLabel(operation), status).Observe(duration.Seconds())
}

// RecordAPICall записывает длительность API вызова.
func (c *PrometheusCollector) RecordAPICall(method, path string, status int, duration time.Duration) {
	c.apiDuration.WithLabelValues(
		strings.ToUpper(sanitizeLabel(method)),
		NormalizeRoute(path),
		codeClass(status),
	).Observe(duration.Seconds())
}

// Handler возвращает http.Handler для эндпоинта /metrics.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Push отправляет метрики в Pushgateway. Ошибки логируются, возвращается nil.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if c.config.PushgatewayURL == "" {
		c.logger.Debug("metrics: pushgateway URL not configured, skipping push")
		return nil
	}

	select {
	case <-ctx.Done():
		c.logger.Debug("metrics push отменён")
		return nil
	default:
	}

	pusher := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance)

	pushCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := pusher.PushContext(pushCtx); err != nil {
		c.logger.Error("ошибка отправки метрик в Pushgateway",
			"error", err.Error(),
			"url", urlutil.MaskURL(c.config.PushgatewayURL),
			"job", c.config.JobName,
		)
		return nil
	}

	c.logger.Info("метрики отправлены в Pushgateway",
		"url", urlutil.MaskURL(c.config.PushgatewayURL),
		"job", c.config.JobName,
		"instance", c.instance,
	)
	return nil
}

// Registry возвращает внутренний registry (для тестов и дополнительных коллекторов).
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}
