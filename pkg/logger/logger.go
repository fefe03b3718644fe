package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	App  *slog.Logger
	HTTP *slog.Logger
}

func New(level string) *Logger {
	app := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)}))
	return &Logger{
		App:  app,
		HTTP: app.With("component", "http"),
	}
}

// Sub returns a child logger tagged with the given component name.
func (l *Logger) Sub(component string) *slog.Logger {
	return l.App.With("component", component)
}

func InitForTests() *Logger {
	app := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Logger{App: app, HTTP: app}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
