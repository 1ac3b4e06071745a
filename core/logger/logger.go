package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var log atomic.Pointer[slog.Logger]

func init() {
	log.Store(newLogger("info"))
}

// Init reconfigures the global logger with the given level (debug|info|warn|error).
func Init(level string) {
	log.Store(newLogger(level))
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func Debug(msg string, args ...any) {
	log.Load().Debug(msg, kv(args)...)
}

func Info(msg string, args ...any) {
	log.Load().Info(msg, kv(args)...)
}

func Warn(msg string, args ...any) {
	log.Load().Warn(msg, kv(args)...)
}

func Error(msg string, args ...any) {
	log.Load().Error(msg, kv(args)...)
}

// kv tolerates a trailing bare value (commonly an error) by giving it a key.
func kv(args []any) []any {
	if len(args)%2 != 0 {
		last := args[len(args)-1]
		args = append(args[:len(args)-1:len(args)-1], "error", last)
	}
	return args
}
