package config

import (
	"errors"
	"fmt"
)

// Level is the severity attached to a configuration error.
type Level string

// LevelFatal aborts startup.
const LevelFatal Level = "Fatal"

// Code identifies a configuration error. Codes are stable across releases
// and are what operators quote back from the user-facing message.
type Code int

const (
	CodeInvalidServerPort       Code = 100
	CodeMissingDatabaseUser     Code = 200
	CodeMissingDatabasePassword Code = 201
	CodeMissingDatabaseName     Code = 202
	CodeMissingDatabaseHostname Code = 203
	CodeInvalidDatabaseDriver   Code = 204
	CodeInvalidQueryTimeout     Code = 205
)

// Error is a rejected configuration. Message is meant for the operator and
// names the configuration source; UserMessage is safe to show anyone.
type Error struct {
	Name        string
	Code        Code
	Level       Level
	Message     string
	UserMessage string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: error code %d: %s", e.Name, e.Code, e.Message)
}

// Is reports whether target is a configuration error with the same code,
// so callers can match against the Err* values with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

var (
	ErrInvalidServerPort       = &Error{Name: "InvalidServerPortError", Code: CodeInvalidServerPort, Level: LevelFatal}
	ErrMissingDatabaseUser     = &Error{Name: "MissingDatabaseUserError", Code: CodeMissingDatabaseUser, Level: LevelFatal}
	ErrMissingDatabasePassword = &Error{Name: "MissingDatabasePasswordError", Code: CodeMissingDatabasePassword, Level: LevelFatal}
	ErrMissingDatabaseName     = &Error{Name: "MissingDatabaseNameError", Code: CodeMissingDatabaseName, Level: LevelFatal}
	ErrMissingDatabaseHostname = &Error{Name: "MissingDatabaseHostnameError", Code: CodeMissingDatabaseHostname, Level: LevelFatal}
	ErrInvalidDatabaseDriver   = &Error{Name: "InvalidDatabaseDriverError", Code: CodeInvalidDatabaseDriver, Level: LevelFatal}
	ErrInvalidQueryTimeout     = &Error{Name: "InvalidQueryTimeoutError", Code: CodeInvalidQueryTimeout, Level: LevelFatal}
)

// reject builds a fatal error from one of the Err* templates for the given source.
func reject(template *Error, source, problem string) *Error {
	return &Error{
		Name:  template.Name,
		Code:  template.Code,
		Level: LevelFatal,
		Message: fmt.Sprintf(
			"%s. Either set it in %s or pass it to the application as an explicit configuration",
			problem, source,
		),
		UserMessage: fmt.Sprintf(
			"Error code %d. Error configuring the application. Please contact the system administrator and give them this error code",
			template.Code,
		),
	}
}

// SourceError reports a configuration source that could not be read or parsed.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("read configuration source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
