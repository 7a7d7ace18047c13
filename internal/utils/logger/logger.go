package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fatih/color"
)

// Logger writes leveled, color-coded log lines tagged with a service name
// and the caller's file:line.
type Logger struct {
	serviceName string
}

func New(serviceName string) *Logger {
	return &Logger{serviceName: serviceName}
}

func (l *Logger) format(level, msg string) string {
	_, file, line, _ := runtime.Caller(2)
	return fmt.Sprintf("%s | %-7s | %s:%d | %s | %s",
		time.Now().Format("2006-01-02 15:04:05"),
		level,
		filepath.Base(file),
		line,
		l.serviceName,
		msg,
	)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	color.Cyan(l.format("INFO", fmt.Sprintf(msg, args...)))
}

func (l *Logger) Success(msg string, args ...interface{}) {
	color.Green(l.format("SUCCESS", fmt.Sprintf(msg, args...)))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	color.Yellow(l.format("WARN", fmt.Sprintf(msg, args...)))
}

// Error logs the message and returns it wrapped around err so callers can
// log and propagate in one step.
func (l *Logger) Error(msg string, err error) error {
	color.Red(l.format("ERROR", fmt.Sprintf("%s: %v", msg, err)))
	return fmt.Errorf("%s: %w", msg, err)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	color.Magenta(l.format("DEBUG", fmt.Sprintf(msg, args...)))
}
