// errors.go: structured error definitions for the confwatch system
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"github.com/agilira/go-errors"
)

// Error codes for the confwatch system
const (
	// Configuration loading errors (1000-1099)
	ErrCodeFileNotFound    = "CONFWATCH_1001"
	ErrCodeParseError      = "CONFWATCH_1002"
	ErrCodeValidationError = "CONFWATCH_1003"
	ErrCodeInvalidValue    = "CONFWATCH_1004"
	ErrCodeIOError         = "CONFWATCH_1005"

	// Watcher errors (2000-2099)
	ErrCodeWatchFailed          = "CONFWATCH_2001"
	ErrCodeReloadFailed         = "CONFWATCH_2002"
	ErrCodeValidationFailed     = "CONFWATCH_2003"
	ErrCodeRollbackFailed       = "CONFWATCH_2004"
	ErrCodeNotStarted           = "CONFWATCH_2005"
	ErrCodeAlreadyRunning       = "CONFWATCH_2006"
	ErrCodePlatformNotSupported = "CONFWATCH_2007"
)

// Configuration loading error constructors

func NewFileNotFoundError(path string) *errors.Error {
	return errors.New(ErrCodeFileNotFound, "Configuration file not found").
		WithUserMessage("The configuration file could not be found").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewParseError(path string, format string, cause error) *errors.Error {
	// The cause is embedded in the message so failure events recorded from
	// Error() carry the parser's detail, not just the code.
	return errors.Wrap(cause, ErrCodeParseError, "Configuration parse error: "+cause.Error()).
		WithUserMessage("Failed to parse configuration file").
		WithContext("config_path", path).
		WithContext("format", format).
		WithSeverity("error")
}

func NewValidationError(fieldPath string, message string) *errors.Error {
	return errors.New(ErrCodeValidationError, "Configuration validation error: "+message).
		WithUserMessage("Configuration validation failed").
		WithContext("field_path", fieldPath).
		WithSeverity("error")
}

func NewInvalidValueError(fieldPath string, value interface{}, message string) *errors.Error {
	return errors.New(ErrCodeInvalidValue, "Invalid configuration value: "+message).
		WithUserMessage("A configuration field has an invalid value").
		WithContext("field_path", fieldPath).
		WithContext("value", value).
		WithSeverity("error")
}

func NewIOError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeIOError, "Configuration I/O error: "+cause.Error()).
		WithUserMessage("Failed to read configuration file").
		WithContext("config_path", path).
		WithSeverity("error")
}

// Watcher error constructors

func NewWatchFailedError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeWatchFailed, "Failed to establish file watch").
		WithUserMessage("The configuration file watch could not be established").
		WithContext("config_path", path).
		WithSeverity("error").
		AsRetryable()
}

func NewReloadFailedError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeReloadFailed, "Configuration reload failed").
		WithUserMessage("The configuration could not be reloaded; the previous configuration remains active").
		WithContext("config_path", path).
		WithSeverity("error").
		AsRetryable()
}

func NewValidationFailedError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeValidationFailed, "Configuration validation failed").
		WithUserMessage("The new configuration is invalid; the previous configuration remains active").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewRollbackFailedError(targetVersion uint64) *errors.Error {
	return errors.New(ErrCodeRollbackFailed, "Target version not found in history").
		WithUserMessage("The requested configuration version is no longer available for rollback").
		WithContext("target_version", targetVersion).
		WithSeverity("error")
}

func NewNotStartedError() *errors.Error {
	return errors.New(ErrCodeNotStarted, "Config watcher is not running").
		WithUserMessage("The configuration watcher has not been started").
		WithSeverity("warning")
}

func NewAlreadyRunningError(path string) *errors.Error {
	return errors.New(ErrCodeAlreadyRunning, "Config watcher is already running").
		WithUserMessage("The configuration watcher has already been started").
		WithContext("config_path", path).
		WithSeverity("warning")
}

func NewPlatformNotSupportedError(cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodePlatformNotSupported, "File watching not supported on this platform").
		WithUserMessage("Native file watching is unavailable; consider the polling event source").
		WithSeverity("error")
}
