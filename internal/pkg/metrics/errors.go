package metrics

import "errors"

var (
	// ErrPushgatewayURLInvalid — URL Pushgateway задан, но имеет невалидный формат.
	ErrPushgatewayURLInvalid = errors.New("pushgateway URL has invalid format")

	// ErrJobNameRequired — не указано имя job при заданном Pushgateway.
	ErrJobNameRequired = errors.New("job name is required")

	// ErrInvalidTimeout — таймаут не положительный.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrNamespaceRequired — пустой namespace метрик.
	ErrNamespaceRequired = errors.New("metrics namespace is required")
)
