// Package errors provides the coded error taxonomy of the viewer engine.
//
// Loading a series can fail in three ways:
//   - DECODE_ERROR: a file could not be parsed by the decoder
//   - RENDER_ERROR: decoded data could not be turned into a displayable raster
//   - SERIES_BUILD_ERROR: a batch failed as a whole, wrapping the first per-file error
//
// Navigation and measurement never fail, so they have no codes here.
//
//	err := errors.Wrap(errors.ErrCodeDecode, cause, "cannot parse file")
//	if errors.Is(err, errors.ErrCodeSeriesBuild) {
//	    // keep showing the previous series
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the loading pipeline and configuration.
const (
	ErrCodeDecode      Code = "DECODE_ERROR"
	ErrCodeRender      Code = "RENDER_ERROR"
	ErrCodeSeriesBuild Code = "SERIES_BUILD_ERROR"
	ErrCodeConfig      Code = "INVALID_CONFIG"
)

// Error is a structured error with a code, the file it concerns and an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	File    string // Source filename, empty when not file specific
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Decode reports that file could not be decoded.
func Decode(file string, cause error) *Error {
	return &Error{Code: ErrCodeDecode, File: file, Message: "cannot decode image", Cause: cause}
}

// Render reports that file decoded but could not be rasterized.
func Render(file string, format string, args ...any) *Error {
	return &Error{Code: ErrCodeRender, File: file, Message: fmt.Sprintf(format, args...)}
}

// SeriesBuild wraps the first failure of a batch.
func SeriesBuild(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeSeriesBuild, cause, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code,
// so a series build error also matches the code of the file error it wraps.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a single actionable message for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	for errors.As(err, &e) && e.Cause != nil {
		var inner *Error
		if !errors.As(e.Cause, &inner) {
			break
		}
		err = e.Cause
	}
	if errors.As(err, &e) {
		switch e.Code {
		case ErrCodeDecode:
			return fmt.Sprintf("Could not read %s. Is it a valid DICOM or image file?", e.File)
		case ErrCodeRender:
			return fmt.Sprintf("Could not display %s: %s", e.File, e.Message)
		case ErrCodeSeriesBuild:
			return "No images could be loaded: " + e.Message
		}
	}
	return err.Error()
}
