package metrics

import (
	"github.com/Kargones/emprev/internal/pkg/logging"
)

// NewCollector возвращает NopCollector при выключенных метриках,
// иначе PrometheusCollector.
func NewCollector(config Config, logger logging.Logger) (Collector, error) {
	if !config.Enabled {
		return NewNopCollector(), nil
	}
	return NewPrometheusCollector(config, logger)
}
