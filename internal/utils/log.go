// Package utils contains the leveled logger used across the engine.
package utils

import (
	"log"
	"os"
	"strconv"
)

// A LogLevel selects how much the engine logs.
type LogLevel uint8

const (
	// LogLevelNothing disables logging entirely.
	LogLevelNothing LogLevel = iota
	// LogLevelError logs internal errors only.
	LogLevelError
	// LogLevelInfo adds link state and speed changes.
	LogLevelInfo
	// LogLevelDebug adds per-packet activity.
	LogLevelDebug
)

const logEnv = "PCIE_GO_LOG_LEVEL"

var logLevel = LogLevelNothing

// SetLogLevel sets the log level.
func SetLogLevel(level LogLevel) {
	logLevel = level
}

// Debugf logs at debug level.
func Debugf(format string, args ...interface{}) {
	if logLevel >= LogLevelDebug {
		log.Printf(format, args...)
	}
}

// Infof logs at info level.
func Infof(format string, args ...interface{}) {
	if logLevel >= LogLevelInfo {
		log.Printf(format, args...)
	}
}

// Errorf logs at error level.
func Errorf(format string, args ...interface{}) {
	if logLevel >= LogLevelError {
		log.Printf(format, args...)
	}
}

func init() {
	env := os.Getenv(logEnv)
	if env == "" {
		return
	}
	level, err := strconv.Atoi(env)
	if err != nil {
		return
	}
	logLevel = LogLevel(level)
}
