package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Kargones/emprev/internal/pkg/logging"
)

// LoggingConfig содержит настройки логирования.
type LoggingConfig struct {
	// Level — уровень логирования (debug, info, warn, error).
	Level string `yaml:"level" env:"EMPREV_LOG_LEVEL" env-default:"info"`

	// Format — формат записей (json, text).
	Format string `yaml:"format" env:"EMPREV_LOG_FORMAT" env-default:"json"`

	// Output — вывод (stderr, file).
	Output string `yaml:"output" env:"EMPREV_LOG_OUTPUT" env-default:"stderr"`

	// FilePath — путь к файлу логов при output=file.
	FilePath string `yaml:"filePath" env:"EMPREV_LOG_FILE_PATH" env-default:"/var/log/emprev/emprev.log"`

	// MaxSize — размер файла в MB до ротации.
	MaxSize int `yaml:"maxSize" env:"EMPREV_LOG_MAX_SIZE" env-default:"100"`

	// MaxBackups — количество backup файлов.
	MaxBackups int `yaml:"maxBackups" env:"EMPREV_LOG_MAX_BACKUPS" env-default:"3"`

	// MaxAge — возраст backup файлов в днях.
	MaxAge int `yaml:"maxAge" env:"EMPREV_LOG_MAX_AGE" env-default:"7"`

	// Compress — сжимать backup файлы.
	// TODO: yaml compress: false перезаписывается env-default, выключить сжатие
	// сейчас можно только через EMPREV_LOG_COMPRESS=false.
	Compress bool `yaml:"compress" env:"EMPREV_LOG_COMPRESS" env-default:"true"`

	// Charset — кодировка вывода (utf-8, windows-1251).
	Charset string `yaml:"charset" env:"EMPREV_LOG_CHARSET" env-default:"utf-8"`
}

var (
	validLevels   = []string{logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError}
	validFormats  = []string{logging.FormatJSON, logging.FormatText}
	validOutputs  = []string{logging.OutputStderr, logging.OutputFile}
	validCharsets = []string{logging.CharsetUTF8, logging.CharsetWindows1251, "cp1251"}
)

// Validate проверяет допустимые значения. Пустые значения допустимы:
// ToLogging заменит их значениями по умолчанию.
func (c LoggingConfig) Validate() error {
	checks := []struct {
		name, value string
		allowed     []string
	}{
		{"level", c.Level, validLevels},
		{"format", c.Format, validFormats},
		{"output", c.Output, validOutputs},
		{"charset", c.Charset, validCharsets},
	}
	for _, ch := range checks {
		v := strings.ToLower(ch.value)
		if v != "" && !slices.Contains(ch.allowed, v) {
			return fmt.Errorf("logging.%s: недопустимое значение %q, ожидается одно из %v", ch.name, ch.value, ch.allowed)
		}
	}
	return nil
}

// ToLogging конвертирует секцию в logging.Config.
func (c LoggingConfig) ToLogging() logging.Config {
	cfg := logging.DefaultConfig()
	if c.Level != "" {
		cfg.Level = strings.ToLower(c.Level)
	}
	if c.Format != "" {
		cfg.Format = strings.ToLower(c.Format)
	}
	if c.Output != "" {
		cfg.Output = strings.ToLower(c.Output)
	}
	if c.FilePath != "" {
		cfg.FilePath = c.FilePath
	}
	if c.MaxSize > 0 {
		cfg.MaxSize = c.MaxSize
	}
	if c.MaxBackups > 0 {
		cfg.MaxBackups = c.MaxBackups
	}
	if c.MaxAge > 0 {
		cfg.MaxAge = c.MaxAge
	}
	cfg.Compress = c.Compress
	if c.Charset != "" {
		cfg.Charset = strings.ToLower(c.Charset)
	}
	return cfg
}
