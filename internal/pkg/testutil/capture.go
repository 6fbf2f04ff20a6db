// Package testutil содержит общие утилиты для тестирования.
package testutil

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/Kargones/emprev/internal/pkg/logging"

	"github.com/stretchr/testify/require"
)

// Record — одна JSON запись лога.
type Record map[string]any

// Str возвращает строковое значение поля или "".
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Context возвращает группу полей контекста логирования или nil.
func (r Record) Context() map[string]any {
	m, _ := r[logging.ContextKey].(map[string]any)
	return m
}

// LogRecorder собирает JSON записи логгера в памяти.
type LogRecorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogRecorder создаёт Logger уровня DEBUG в формате JSON и LogRecorder для его записей.
func NewLogRecorder() (logging.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	logger := logging.NewLoggerWithWriter(logging.Config{
		Level:  logging.LevelDebug,
		Format: logging.FormatJSON,
	}, rec)
	return logger, rec
}

// Write реализует io.Writer.
func (r *LogRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// Raw возвращает накопленный вывод.
func (r *LogRecorder) Raw() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return bytes.Clone(r.buf.Bytes())
}

// Records разбирает накопленные записи.
func (r *LogRecorder) Records(t *testing.T) []Record {
	t.Helper()
	var out []Record
	for _, line := range bytes.Split(bytes.TrimSpace(r.Raw()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec Record
		require.NoError(t, json.Unmarshal(line, &rec), "запись не является JSON: %s", line)
		out = append(out, rec)
	}
	return out
}

// Only возвращает единственную запись; тест падает, если записей не одна.
func (r *LogRecorder) Only(t *testing.T) Record {
	t.Helper()
	records := r.Records(t)
	require.Len(t, records, 1)
	return records[0]
}

// Reset очищает накопленный вывод.
func (r *LogRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf.Reset()
}

// CaptureStderr выполняет fn, перехватывая stderr, и возвращает вывод.
func CaptureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err, "не удалось создать pipe для stderr")

	os.Stderr = w
	defer func() { os.Stderr = oldStderr }()

	fn()

	_ = w.Close() //nolint:errcheck // test helper pipe close

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err, "не удалось прочитать stderr")
	return buf.String()
}
