// jsonlog.go - Leveled structured logging backed by logrus.
package server

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Logger writes one structured entry per call, as JSON or as logfmt-style
// text depending on how it was built.
type Logger struct {
	base *logrus.Logger
}

// DefaultLogger is the package-wide logger used by the helpers below.
var DefaultLogger = NewLoggerFromEnv()

// NewLogger builds a Logger writing to out. format is "json" or "text";
// anything else falls back to text.
func NewLogger(out io.Writer, format string, level LogLevel) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(toLogrusLevel(level))
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "time",
				logrus.FieldKeyMsg:  "msg",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: true,
		})
	}
	return &Logger{base: l}
}

// NewLoggerFromEnv reads WC_LOG_FORMAT, WC_ENV and WC_LOG_LEVEL. JSON is
// forced in production.
func NewLoggerFromEnv() *Logger {
	format := os.Getenv("WC_LOG_FORMAT")
	if os.Getenv("WC_ENV") == "production" {
		format = "json"
	}
	return NewLogger(os.Stdout, format, ParseLogLevel(os.Getenv("WC_LOG_LEVEL")))
}

// ParseLogLevel maps a configuration string to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn:
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func toLogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case LogLevelDebug:
		return logrus.DebugLevel
	case LogLevelWarn:
		return logrus.WarnLevel
	case LogLevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// getCaller returns the file and line number of the caller
func getCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		file = file[i+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func (l *Logger) log(level logrus.Level, msg string, fields map[string]interface{}, err error) {
	if !l.base.IsLevelEnabled(level) {
		return
	}
	entry := l.base.WithFields(logrus.Fields(fields))
	if caller := getCaller(3); caller != "" {
		entry = entry.WithField("caller", caller)
	}
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Log(level, msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.log(logrus.DebugLevel, msg, fields, nil)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log(logrus.InfoLevel, msg, fields, nil)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.log(logrus.WarnLevel, msg, fields, nil)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}, err error) {
	l.log(logrus.ErrorLevel, msg, fields, err)
}

// Logrus exposes the underlying logger for packages that log through
// logrus directly.
func (l *Logger) Logrus() *logrus.Logger {
	return l.base
}

// Debug logs a debug message
func Debug(msg string, fields map[string]interface{}) {
	DefaultLogger.Debug(msg, fields)
}

// Info logs an info message
func Info(msg string, fields map[string]interface{}) {
	DefaultLogger.Info(msg, fields)
}

// Warn logs a warning message
func Warn(msg string, fields map[string]interface{}) {
	DefaultLogger.Warn(msg, fields)
}

// Error logs an error message
func Error(msg string, fields map[string]interface{}, err error) {
	DefaultLogger.Error(msg, fields, err)
}
