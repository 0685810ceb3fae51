// Package errors provides the error taxonomy shared by the SongBridge decoders,
// exporters and batch runner.
//
// Errors fall into two groups. Fatal errors (StreamTruncatedError,
// IncompleteSongError, IOError) abort the file being processed; a batch run
// reports them and moves on to the next file. Field-level errors
// (UnparsableFieldError, UnknownBlockError, ErrPrematureEnd) are collected as
// warnings and never abort a file.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
	// ErrStreamTruncated indicates a fixed-size field ran past the end of the stream
	ErrStreamTruncated = errors.New("stream truncated")
	// ErrUnparsableField indicates a field whose content could not be interpreted
	ErrUnparsableField = errors.New("unparsable field")
	// ErrUnknownBlock indicates a block tag outside the known vocabulary
	ErrUnknownBlock = errors.New("unknown block")
	// ErrIncompleteSong indicates a song missing its title or verses
	ErrIncompleteSong = errors.New("incomplete song")
	// ErrPrematureEnd indicates a stream that ended before its terminator block
	ErrPrematureEnd = errors.New("stream ended before terminator")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "song", "format", "exporter")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "OpenLyrics", "TOML")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// StreamTruncatedError reports a fixed-size field that could not be read in
// full. It is fatal for the file being decoded.
type StreamTruncatedError struct {
	Offset int64  // Stream offset where the read started
	Field  string // Field being read (e.g., "block length")
	Err    error  // Underlying read error, usually io.ErrUnexpectedEOF
}

func (e *StreamTruncatedError) Error() string {
	return fmt.Sprintf("stream truncated reading %s at offset %d", e.Field, e.Offset)
}

func (e *StreamTruncatedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrStreamTruncated, e.Err}
	}
	return []error{ErrStreamTruncated}
}

// UnparsableFieldError reports a field whose content could not be
// interpreted. The field keeps its default and decoding continues.
type UnparsableFieldError struct {
	Field string
	Value string
}

func (e *UnparsableFieldError) Error() string {
	return fmt.Sprintf("cannot parse %s from %q", e.Field, e.Value)
}

func (e *UnparsableFieldError) Unwrap() error {
	return ErrUnparsableField
}

// UnknownBlockError describes a block the decoder skipped.
type UnknownBlockError struct {
	Tag    uint32
	Offset int64 // Offset of the block header
	Next   int64 // Offset the stream was resynchronized to
}

func (e *UnknownBlockError) Error() string {
	return fmt.Sprintf("unknown block tag %d at offset %d (skipped to %d)", e.Tag, e.Offset, e.Next)
}

func (e *UnknownBlockError) Unwrap() error {
	return ErrUnknownBlock
}

// IncompleteSongError is returned by finalize when mandatory fields are missing.
type IncompleteSongError struct {
	Reason string
}

func (e *IncompleteSongError) Error() string {
	return fmt.Sprintf("incomplete song: %s", e.Reason)
}

func (e *IncompleteSongError) Unwrap() error {
	return ErrIncompleteSong
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// NewStreamTruncated creates a StreamTruncatedError
func NewStreamTruncated(field string, offset int64, err error) *StreamTruncatedError {
	return &StreamTruncatedError{
		Offset: offset,
		Field:  field,
		Err:    err,
	}
}

// NewIncompleteSong creates an IncompleteSongError
func NewIncompleteSong(reason string) *IncompleteSongError {
	return &IncompleteSongError{Reason: reason}
}

// IsFatal reports whether err aborts the file being processed. Field-level
// errors, skipped blocks and a missing terminator are not fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrUnparsableField) &&
		!errors.Is(err, ErrUnknownBlock) &&
		!errors.Is(err, ErrPrematureEnd)
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
