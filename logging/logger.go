package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger provides thread-safe leveled logging
type Logger struct {
	level   LogLevel
	console io.Writer
	logFile *os.File
	mu      sync.Mutex
}

// NewLogger creates a new logger writing to stderr at INFO level
func NewLogger() *Logger {
	return &Logger{
		level:   INFO,
		console: os.Stderr,
	}
}

// SetLevel sets the log level from a string
func (l *Logger) SetLevel(levelStr string) {
	level, ok := LogLevelFromString(levelStr)
	if !ok {
		fmt.Fprintf(os.Stderr, "Invalid log level: %s, using INFO\n", levelStr)
		l.level = INFO
		return
	}
	l.level = level
}

// SetOutputFile additionally mirrors log lines into the given file
func (l *Logger) SetOutputFile(fileName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		l.logFile.Close()
		l.logFile = nil
	}

	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.logFile = file
	return nil
}

// Close closes the log file if one was configured
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		l.logFile.Close()
		l.logFile = nil
	}
}

// log writes a message to the log with the specified level
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	logLine := fmt.Sprintf("[%s] %s %s\n", now, level.String(), message)

	fmt.Fprint(l.console, logLine)

	if l.logFile != nil {
		l.logFile.WriteString(logLine)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}
