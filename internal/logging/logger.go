package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
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
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Logger is a leveled wrapper over stdlib loggers. A nil *Logger discards
// everything.
type Logger struct {
	level       Level
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger writes every level to stderr; stdout stays free for reports.
func NewLogger(level string) *Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo writes to w.
func NewLoggerTo(w io.Writer, level string) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		level:       ParseLevel(level),
		debugLogger: log.New(w, "DEBUG: ", flags),
		infoLogger:  log.New(w, "INFO: ", flags),
		warnLogger:  log.New(w, "WARN: ", flags),
		errorLogger: log.New(w, "ERROR: ", flags),
	}
}

func NewDiscardLogger() *Logger {
	return NewLoggerTo(io.Discard, "error")
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Level reports the minimum level that is written.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelError + 1
	}
	return l.level
}

func (l *Logger) Debug(format string, v ...any) { l.output(LevelDebug, l.pick(LevelDebug), format, v...) }
func (l *Logger) Info(format string, v ...any)  { l.output(LevelInfo, l.pick(LevelInfo), format, v...) }
func (l *Logger) Warn(format string, v ...any)  { l.output(LevelWarn, l.pick(LevelWarn), format, v...) }
func (l *Logger) Error(format string, v ...any) { l.output(LevelError, l.pick(LevelError), format, v...) }

// Fatal logs at error level and exits.
func (l *Logger) Fatal(format string, v ...any) {
	l.output(LevelError, l.pick(LevelError), format, v...)
	os.Exit(1)
}

func (l *Logger) pick(level Level) *log.Logger {
	if l == nil {
		return nil
	}
	switch level {
	case LevelDebug:
		return l.debugLogger
	case LevelInfo:
		return l.infoLogger
	case LevelWarn:
		return l.warnLogger
	default:
		return l.errorLogger
	}
}

func (l *Logger) output(level Level, out *log.Logger, format string, v ...any) {
	if l == nil || out == nil || level < l.level {
		return
	}
	// 3: caller of Debug/Info/Warn/Error.
	out.Output(3, fmt.Sprintf(format, v...))
}
