package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	Logger     *logrus.Logger // Main logger instance
	FileLogger *logrus.Logger // File logger for application logs

	initOnce sync.Once
)

const logFileName = "evacreport.log"

// ParseLevel maps LOG_LEVEL values onto logrus levels, defaulting to info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return logrus.DebugLevel
	case "INFO":
		return logrus.InfoLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Initialize sets up the application logger. Logs go to logs/evacreport.log,
// or to stderr when the file cannot be opened.
func Initialize() {
	initOnce.Do(func() {
		FileLogger = logrus.New()
		level := ParseLevel(os.Getenv("LOG_LEVEL"))
		FileLogger.SetLevel(level)
		FileLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			DisableColors:   true,
		})
		FileLogger.SetReportCaller(true)

		out, target := openLogFile("logs")
		FileLogger.SetOutput(out)
		Logger = FileLogger

		Logger.WithFields(logrus.Fields{
			"api_logs":  "stdout (simple text)",
			"app_logs":  target,
			"log_level": level.String(),
		}).Info("Logging system initialized")
	})
}

func openLogFile(dir string) (io.Writer, string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logs directory: %v\n", err)
		return os.Stderr, "stderr"
	}
	path := fmt.Sprintf("%s/%s", dir, logFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return os.Stderr, "stderr"
	}
	return f, path
}

// GetLogger returns the configured main logger instance
func GetLogger() *logrus.Logger {
	if Logger == nil {
		Initialize()
	}
	return Logger
}

// WithContext creates a logger with additional context fields
func WithContext(fields map[string]interface{}) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

// WithSession creates a logger with report session context
func WithSession(sessionID, incidentID string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"session_id":  sessionID,
		"incident_id": incidentID,
		"component":   "report_session",
	})
}

// WithCenter creates a logger with evacuation center context
func WithCenter(centerID, name string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"center_id":   centerID,
		"center_name": name,
		"component":   "submission",
	})
}

// WithUser creates a logger with user context
func WithUser(userID string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"user_id":   userID,
		"component": "controller",
	})
}

// WithError creates a logger with error context
func WithError(err error, component string) *logrus.Entry {
	fields := logrus.Fields{
		"error":     err.Error(),
		"component": component,
	}

	// Add stack trace for debug level
	if GetLogger().GetLevel() >= logrus.DebugLevel {
		fields["stack_trace"] = getStackTrace()
	}

	return GetLogger().WithFields(fields)
}

// getStackTrace returns a formatted stack trace
func getStackTrace() string {
	var stack []string
	for i := 2; i < 10; i++ {
		if pc, file, line, ok := runtime.Caller(i); ok {
			fn := runtime.FuncForPC(pc)
			stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		}
	}
	return strings.Join(stack, "\n")
}

// Log levels convenience functions (with fields) - Application logs
func Debug(msg string, fields map[string]interface{}) {
	GetLogger().WithFields(fields).Debug(msg)
}

func Info(msg string, fields map[string]interface{}) {
	GetLogger().WithFields(fields).Info(msg)
}

func Warn(msg string, fields map[string]interface{}) {
	GetLogger().WithFields(fields).Warn(msg)
}

func Error(msg string, fields map[string]interface{}) {
	GetLogger().WithFields(fields).Error(msg)
}

func Fatal(msg string, fields map[string]interface{}) {
	GetLogger().WithFields(fields).Fatal(msg)
}
