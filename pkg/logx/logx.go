package logx

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level mirrors zerolog levels under names the rest of the codebase uses
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config controls where and how much is logged
type Config struct {
	Level      Level  `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"`
}

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

// Init replaces the global logger. With File set, output goes through a
// rotating lumberjack writer (and also to stderr when Console is true).
func Init(cfg Config) {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		if cfg.Console {
			out = zerolog.MultiLevelWriter(rotating, out)
		} else {
			out = rotating
		}
	}

	l := zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(cfg.Level))
	mu.Lock()
	logger = l
	mu.Unlock()
}

// SetOutput redirects the logger to w with JSON encoding. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = zerolog.New(w).With().Timestamp().Logger().Level(logger.GetLevel())
	mu.Unlock()
}

// SetLevel changes the minimum level. Unknown levels fall back to info.
func SetLevel(level Level) {
	mu.Lock()
	logger = logger.Level(parseLevel(level))
	mu.Unlock()
}

func parseLevel(level Level) zerolog.Level {
	lvl, err := zerolog.ParseLevel(string(level))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// Entry is a logger bound to a set of key/value fields
type Entry struct {
	fields []any
}

// With returns an Entry carrying alternating key/value pairs
func With(kv ...any) Entry {
	return Entry{fields: kv}
}

func (e Entry) Debugf(format string, args ...any) { emit(zerolog.DebugLevel, e.fields, format, args) }
func (e Entry) Infof(format string, args ...any)  { emit(zerolog.InfoLevel, e.fields, format, args) }
func (e Entry) Warnf(format string, args ...any)  { emit(zerolog.WarnLevel, e.fields, format, args) }
func (e Entry) Errorf(format string, args ...any) { emit(zerolog.ErrorLevel, e.fields, format, args) }

func emit(level zerolog.Level, fields []any, format string, args []any) {
	ev := current().WithLevel(level)
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		ev = ev.Interface(key, fields[i+1])
	}
	if len(args) == 0 {
		ev.Msg(format)
		return
	}
	ev.Msgf(format, args...)
}

func Debug(msg string)                  { emit(zerolog.DebugLevel, nil, msg, nil) }
func Debugf(format string, args ...any) { emit(zerolog.DebugLevel, nil, format, args) }
func Info(msg string)                   { emit(zerolog.InfoLevel, nil, msg, nil) }
func Infof(format string, args ...any)  { emit(zerolog.InfoLevel, nil, format, args) }
func Warn(msg string)                   { emit(zerolog.WarnLevel, nil, msg, nil) }
func Warnf(format string, args ...any)  { emit(zerolog.WarnLevel, nil, format, args) }
func Error(msg string)                  { emit(zerolog.ErrorLevel, nil, msg, nil) }
func Errorf(format string, args ...any) { emit(zerolog.ErrorLevel, nil, format, args) }

// Fatalf logs and exits the process
func Fatalf(format string, args ...any) {
	emit(zerolog.FatalLevel, nil, format, args)
	os.Exit(1)
}
