package log

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel maps a config/flag string to a Level. Unknown values fall
// back to INFO rather than failing startup.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu       sync.Mutex
	logger   *stdlog.Logger
	minLevel = LevelInfo
)

func get() *stdlog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = stdlog.New(os.Stderr, "", 0)
	}
	return logger
}

func SetLevel(l Level) {
	mu.Lock()
	minLevel = l
	mu.Unlock()
}

func Debug(msg string, kv ...any) { emit(LevelDebug, msg, kv...) }

func Info(msg string, kv ...any) { emit(LevelInfo, msg, kv...) }

func Warn(msg string, kv ...any) { emit(LevelWarn, msg, kv...) }

// Error logs msg with err prepended to the key-value list.
func Error(msg string, err error, kv ...any) {
	emit(LevelError, msg, append([]any{"err", err}, kv...)...)
}

func emit(level Level, msg string, kv ...any) {
	l := get()

	mu.Lock()
	enabled := level >= minLevel
	mu.Unlock()
	if !enabled {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format(time.RFC3339Nano))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)

	// kv is expected as key, value, key, value, ...; a trailing odd
	// element is ignored.
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(formatValue(kv[i+1]))
	}

	l.Println(b.String())
}

func formatValue(v any) string {
	s := fmt.Sprint(v)
	if strings.ContainsAny(s, " \t\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
