package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger создаёт Logger с заданной конфигурацией.
//
// Режимы вывода (config.Output):
//   - "stderr" или "" (default): логи пишутся в os.Stderr
//   - "file": логи пишутся в файл с ротацией через lumberjack
//
// Неизвестный output не прерывает запуск: пишем предупреждение и используем stderr.
func NewLogger(config Config) Logger {
	var w io.Writer

	switch config.Output {
	case OutputFile:
		w = newLumberjackWriter(config)
	case OutputStderr, "":
		w = os.Stderr
	default:
		_, _ = fmt.Fprintf(os.Stderr, //nolint:errcheck // bootstrap stderr
			"WARNING: неизвестный logging output %q, falling back to stderr\n", config.Output)
		w = os.Stderr
	}

	return NewLoggerWithWriter(config, w)
}

// newLumberjackWriter создаёт io.Writer с ротацией на основе lumberjack.
// Создаёт директорию для файла логов. При пустом FilePath или ошибке
// создания директории возвращает os.Stderr.
func newLumberjackWriter(config Config) io.Writer {
	if config.FilePath == "" {
		_, _ = os.Stderr.WriteString("WARNING: logging output=file but filePath is empty, falling back to stderr\n") //nolint:errcheck // bootstrap stderr
		return os.Stderr
	}

	dir := filepath.Dir(config.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, //nolint:errcheck // bootstrap stderr
				"WARNING: не удалось создать директорию логов %q: %v, falling back to stderr\n", dir, err)
			return os.Stderr
		}
	}

	return &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}
}

// NewLoggerWithWriter создаёт Logger с заданной конфигурацией и writer.
// Handler всегда оборачивается в ContextHandler.
func NewLoggerWithWriter(config Config, w io.Writer) Logger {
	w = encodeWriter(w, config.Charset)

	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}
	var handler slog.Handler

	switch config.Format {
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return NewSlogAdapter(slog.New(NewContextHandler(handler)))
}

// encodeWriter перекодирует вывод из UTF-8 в указанную кодировку.
// Символы, отсутствующие в целевой кодировке, заменяются на SUB (0x1A).
func encodeWriter(w io.Writer, charset string) io.Writer {
	switch strings.ToLower(charset) {
	case CharsetWindows1251, "cp1251":
		return &lineEncoder{w: w, enc: encoding.ReplaceUnsupported(charmap.Windows1251.NewEncoder())}
	default:
		return w
	}
}

// lineEncoder кодирует каждую запись целиком: slog вызывает Write один раз на запись,
// поэтому незавершённых UTF-8 последовательностей между вызовами нет.
type lineEncoder struct {
	w   io.Writer
	enc *encoding.Encoder
}

func (e *lineEncoder) Write(p []byte) (int, error) {
	out, _, err := transform.Bytes(e.enc, p)
	if err != nil {
		return 0, err
	}
	if _, err := e.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// parseLevel конвертирует строковый уровень в slog.Level.
// При неизвестном значении возвращает slog.LevelInfo.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
