package metrics

import (
	"context"
	"time"
)

// NopCollector — no-op реализация Collector.
type NopCollector struct{}

// NewNopCollector создаёт NopCollector.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

func (c *NopCollector) RecordEvent(_, _ string) {}

func (c *NopCollector) RecordOperation(_ string, _ time.Duration, _ bool) {}

func (c *NopCollector) RecordAPICall(_, _ string, _ int, _ time.Duration) {}

// Push всегда возвращает nil.
func (c *NopCollector) Push(_ context.Context) error {
	return nil
}
