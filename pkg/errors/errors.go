package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// CLI errors
	ErrUsage = errors.New("usage error")

	// Pinger errors
	ErrAlreadyStarted       = errors.New("pinger is already started")
	ErrProbeCommandNotFound = errors.New("ping binary not found")

	// Config errors
	ErrInvalidConfig = errors.New("invalid config")

	// History errors
	ErrSessionNotFound    = errors.New("session not found")
	ErrRecorderRunning    = errors.New("recorder is already running")
	ErrRecorderNotRunning = errors.New("recorder is not running")
)

// ConfigError represents an invalid configuration value
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config field '%s': %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SessionError represents a history session failure
type SessionError struct {
	SessionID int64
	Host      string
	Err       error
}

func (e *SessionError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("session %d (%s): %v", e.SessionID, e.Host, e.Err)
	}
	return fmt.Sprintf("session %d: %v", e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// UsageError carries a message shown above the command usage
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

func (e *UsageError) Unwrap() error {
	return ErrUsage
}
