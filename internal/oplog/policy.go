package oplog

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Значения Policy по умолчанию.
const (
	DefaultSlowThreshold     = time.Second
	DefaultClientErrorStatus = http.StatusBadRequest
	DefaultServerErrorStatus = http.StatusInternalServerError
)

// ErrInvalidPolicy — некорректные пороги Policy.
var ErrInvalidPolicy = errors.New("oplog: некорректные пороги policy")

// Policy задаёт пороги повышения уровня записей.
type Policy struct {
	// SlowThreshold — длительность, начиная с которой операция считается медленной (включительно).
	SlowThreshold time.Duration

	// ClientErrorStatus — статус, начиная с которого API вызов записывается как WARN.
	ClientErrorStatus int

	// ServerErrorStatus — статус, начиная с которого API вызов записывается как ERROR.
	ServerErrorStatus int
}

// DefaultPolicy возвращает пороги по умолчанию: 1s, 400, 500.
func DefaultPolicy() Policy {
	return Policy{
		SlowThreshold:     DefaultSlowThreshold,
		ClientErrorStatus: DefaultClientErrorStatus,
		ServerErrorStatus: DefaultServerErrorStatus,
	}
}

// Validate проверяет что пороги положительны и ClientErrorStatus < ServerErrorStatus.
func (p Policy) Validate() error {
	if p.SlowThreshold <= 0 || p.ClientErrorStatus <= 0 || p.ServerErrorStatus <= p.ClientErrorStatus {
		return ErrInvalidPolicy
	}
	return nil
}

// IsSlow сообщает, достигла ли длительность порога.
func (p Policy) IsSlow(d time.Duration) bool {
	return p.SlowThreshold > 0 && d >= p.SlowThreshold
}

// PerformanceLevel: WARN для медленных операций, иначе INFO.
func (p Policy) PerformanceLevel(d time.Duration) slog.Level {
	if p.IsSlow(d) {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// APICallLevel: ERROR для статусов от ServerErrorStatus, WARN для статусов
// от ClientErrorStatus или медленных вызовов, иначе INFO.
func (p Policy) APICallLevel(status int, d time.Duration) slog.Level {
	switch {
	case p.ServerErrorStatus > 0 && status >= p.ServerErrorStatus:
		return slog.LevelError
	case p.ClientErrorStatus > 0 && status >= p.ClientErrorStatus:
		return slog.LevelWarn
	case p.IsSlow(d):
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
