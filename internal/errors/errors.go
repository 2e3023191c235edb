// Package errors provides standardized error handling for pdfmerge.
// It defines common error types, constants, and helper functions for consistent
// error creation, wrapping, and handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	NotADirectory
	FileOperationFailed
	// Config error kinds
	InvalidConfig
	ConfigNotSet
	ConfigWriteFailed
	// Merge error kinds
	MergeFailed
	NoInputFiles
	// Database error kinds
	DatabaseOperationFailed
	InvalidInputData
)

var kindNames = map[ErrorKind]string{
	Unknown:                  "unknown",
	FileNotFound:             "file_not_found",
	FileAccessDenied:         "file_access_denied",
	InvalidPath:              "invalid_path",
	NotADirectory:            "not_a_directory",
	FileOperationFailed:      "file_operation_failed",
	InvalidConfig:            "invalid_config",
	ConfigNotSet:             "config_not_set",
	ConfigWriteFailed:        "config_write_failed",
	MergeFailed:              "merge_failed",
	NoInputFiles:             "no_input_files",
	DatabaseOperationFailed:  "database_operation_failed",
	InvalidInputData:         "invalid_input_data",
}

// String returns a stable name for the kind, used in structured logs.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Common error constants for frequently occurring errors
var (
	ErrNoInputFiles = NewMergeError("no files to merge", "", NoInputFiles, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// kinded is implemented by every error type in this package.
type kinded interface {
	error
	Kind() ErrorKind
}

// FileError represents errors related to file and directory access
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to settings and stored merge orders
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// MergeError represents a failure to produce one merged document
type MergeError struct {
	ApplicationError
	dir string
}

// NewMergeError creates a new merge error for the given subdirectory
func NewMergeError(msg string, dir string, kind ErrorKind, err error) *MergeError {
	return &MergeError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		dir: dir,
	}
}

// Error returns the merge error message
func (e *MergeError) Error() string {
	if e.dir != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.dir, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.dir)
	}
	return e.ApplicationError.Error()
}

// Dir returns the subdirectory the merge was attempted in
func (e *MergeError) Dir() string {
	return e.dir
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the first typed error in err's chain,
// or Unknown if there is none.
func KindOf(err error) ErrorKind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return Unknown
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsNotADirectory checks if the error reports a path that is not a directory
func IsNotADirectory(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == NotADirectory
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsConfigNotSet checks if a required merge order was missing
func IsConfigNotSet(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == ConfigNotSet
	}
	return false
}

// IsConfigWriteFailed checks if persisting a configuration failed
func IsConfigWriteFailed(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == ConfigWriteFailed
	}
	return false
}

// IsMergeError checks if the error came from combining one subdirectory
func IsMergeError(err error) bool {
	var mergeErr *MergeError
	return errors.As(err, &mergeErr)
}

// DatabaseError represents errors related to database operations
type DatabaseError struct {
	ApplicationError
	operation string
	context   map[string]interface{}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(msg string, err error) *DatabaseError {
	return &DatabaseError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: DatabaseOperationFailed,
		},
		operation: "",
		context:   make(map[string]interface{}),
	}
}

// WithOperation adds operation information to the database error
func (e *DatabaseError) WithOperation(operation string) *DatabaseError {
	e.operation = operation
	return e
}

// WithContext adds context information to the database error
func (e *DatabaseError) WithContext(key string, value interface{}) *DatabaseError {
	e.context[key] = value
	return e
}

// Error returns the database error message
func (e *DatabaseError) Error() string {
	if e.operation != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: operation=%s: %v", e.msg, e.operation, e.err)
		}
		return fmt.Sprintf("%s: operation=%s", e.msg, e.operation)
	}
	return e.ApplicationError.Error()
}

// Operation returns the database operation associated with the error
func (e *DatabaseError) Operation() string {
	return e.operation
}

// Context returns the context information associated with the error
func (e *DatabaseError) Context() map[string]interface{} {
	return e.context
}

// InvalidInputError represents errors related to invalid user input
type InvalidInputError struct {
	ApplicationError
	context map[string]interface{}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(msg string, err error) *InvalidInputError {
	return &InvalidInputError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: InvalidInputData,
		},
		context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the invalid input error
func (e *InvalidInputError) WithContext(key string, value interface{}) *InvalidInputError {
	e.context[key] = value
	return e
}

// Context returns the context information associated with the error
func (e *InvalidInputError) Context() map[string]interface{} {
	return e.context
}

// IsDatabaseError checks if the error is a database error
func IsDatabaseError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr)
}

// IsInvalidInputError checks if the error is an invalid input error
func IsInvalidInputError(err error) bool {
	var inputErr *InvalidInputError
	return errors.As(err, &inputErr)
}
