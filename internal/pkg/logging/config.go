package logging

// Поддерживаемые форматы вывода логов.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Поддерживаемые уровни логирования.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Поддерживаемые типы вывода логов.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Поддерживаемые кодировки вывода.
// Windows-1251 нужна для сборщиков логов на Windows-хостах бэкенда.
const (
	CharsetUTF8        = "utf-8"
	CharsetWindows1251 = "windows-1251"
)

// Значения по умолчанию для Config.
const (
	DefaultLevel      = LevelInfo
	DefaultFormat     = FormatJSON
	DefaultOutput     = OutputStderr
	DefaultFilePath   = "/var/log/emprev/emprev.log"
	DefaultMaxSize    = 100 // MB
	DefaultMaxBackups = 3
	DefaultMaxAge     = 7 // days
	DefaultCompress   = true
	DefaultCharset    = CharsetUTF8
)

// DefaultConfig возвращает Config со значениями по умолчанию.
func DefaultConfig() Config {
	return Config{
		Level:      DefaultLevel,
		Format:     DefaultFormat,
		Output:     DefaultOutput,
		FilePath:   DefaultFilePath,
		MaxSize:    DefaultMaxSize,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAge,
		Compress:   DefaultCompress,
		Charset:    DefaultCharset,
	}
}

// Config содержит настройки логирования.
type Config struct {
	// Format — "json" или "text".
	Format string

	// Level — минимальный уровень: "debug", "info", "warn", "error".
	Level string

	// Output — "stderr" или "file".
	Output string

	// FilePath — путь к файлу логов (при Output="file").
	FilePath string

	// MaxSize — размер файла в мегабайтах до ротации.
	MaxSize int

	// MaxBackups — количество backup файлов.
	MaxBackups int

	// MaxAge — возраст backup файлов в днях.
	MaxAge int

	// Compress — сжимать ли backup файлы в gzip.
	Compress bool

	// Charset — кодировка вывода: "utf-8" (по умолчанию) или "windows-1251".
	Charset string
}
