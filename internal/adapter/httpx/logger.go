package httpx

import (
	"fmt"
	"log"
	"time"
)

// Logger provides structured logging for remote API calls.
type Logger interface {
	// LogCall logs a completed API call with timing and status.
	LogCall(call CallLog)

	// LogError logs a failed API call.
	LogError(errLog ErrorLog)
}

// CallLog contains information about a completed call.
type CallLog struct {
	Service    string
	Method     string
	Path       string
	Duration   time.Duration
	StatusCode int
}

// ErrorLog contains information about a failed call.
type ErrorLog struct {
	Service    string
	Method     string
	Path       string
	Duration   time.Duration
	Err        error
	ErrorType  ErrorType
	StatusCode int
	Retryable  bool
}

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// DefaultLogger writes call logs through the standard logger.
type DefaultLogger struct {
	level  LogLevel
	format LogFormat
}

// NewDefaultLogger creates a logger with the specified config.
func NewDefaultLogger(level LogLevel, format LogFormat) *DefaultLogger {
	return &DefaultLogger{level: level, format: format}
}

// LogCall logs a completed API call. Suppressed above info level.
func (l *DefaultLogger) LogCall(call CallLog) {
	if l.level > LogLevelInfo {
		return
	}

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"info","type":"call","service":"%s","method":"%s","path":"%s","duration_ms":%d,"status_code":%d}`,
			call.Service, call.Method, call.Path, call.Duration.Milliseconds(), call.StatusCode)
	} else {
		log.Printf("[INFO] %s: %s %s -> %d (%.1fs)",
			call.Service, call.Method, call.Path, call.StatusCode, call.Duration.Seconds())
	}
}

// LogError logs a failed API call.
func (l *DefaultLogger) LogError(errLog ErrorLog) {
	if l.level > LogLevelError {
		return
	}

	retryableStr := "non-retryable"
	if errLog.Retryable {
		retryableStr = "retryable"
	}

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"error","type":"error","service":"%s","method":"%s","path":"%s","duration_ms":%d,"error":"%s","status_code":%d,"retryable":%t}`,
			errLog.Service, errLog.Method, errLog.Path, errLog.Duration.Milliseconds(),
			errLog.Err, errLog.StatusCode, errLog.Retryable)
	} else {
		log.Printf("[ERROR] %s: %s %s failed (status=%d, %s): %v",
			errLog.Service, errLog.Method, errLog.Path, errLog.StatusCode, retryableStr, errLog.Err)
	}
}

// RedactToken shows only the last 4 characters of a credential with
// explicit redaction markers.
func RedactToken(token string) string {
	if len(token) <= 4 {
		return "[REDACTED]"
	}
	return fmt.Sprintf("[REDACTED-%s]", token[len(token)-4:])
}
