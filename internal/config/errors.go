package config

import "fmt"

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Line and Column locate the error when the decoder reports them.
	Line   int
	Column int
	// Err is the underlying decoder error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError describes a setting with an unusable value.
type ValidationError struct {
	// Path is the dotted setting path, e.g. "log.level".
	Path string
	// Message describes the problem.
	Message string
	// Value is the rejected value.
	Value any
	// Code categorizes the failure.
	Code ValidationErrorCode
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode uint8

const (
	// ErrCodeInvalidEnum indicates the value is not one of the allowed names.
	ErrCodeInvalidEnum ValidationErrorCode = iota
	// ErrCodeRequiredMissing indicates a required setting is empty.
	ErrCodeRequiredMissing
	// ErrCodeOutOfRange indicates a numeric value is out of range.
	ErrCodeOutOfRange
)

// String returns a short name for the code.
func (c ValidationErrorCode) String() string {
	switch c {
	case ErrCodeInvalidEnum:
		return "invalid_enum"
	case ErrCodeRequiredMissing:
		return "required_missing"
	case ErrCodeOutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}
