// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002

	// Media tool errors (1100-1199)
	CodeInputNotFound         = 1100
	CodeProbeFailed           = 1101
	CodeFrameExtractionFailed = 1102
	CodeClipExtractionFailed  = 1103
	CodeKeyframeScanFailed    = 1104

	// Segmentation errors (1200-1299)
	CodeSegmentationEmpty = 1200

	// Scoring errors (1300-1399)
	CodeScoringUnavailable = 1300
	CodeScoringUnparsable  = 1301
	CodeAnalysisEmpty      = 1302

	// Orchestrator errors (1400-1499)
	CodeDecisionUnparsable = 1400
	CodeIterationBudget    = 1401
	CodeOrderingViolation  = 1402
	CodeUnknownTool        = 1403

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileWriteError = 1501
	CodeUploadFailed   = 1502
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")

	// Media tool
	ErrInputNotFound         = New(CodeInputNotFound, "Input video not found")
	ErrProbeFailed           = New(CodeProbeFailed, "Video probe failed")
	ErrFrameExtractionFailed = New(CodeFrameExtractionFailed, "Frame extraction failed")
	ErrClipExtractionFailed  = New(CodeClipExtractionFailed, "Clip extraction failed")

	// Segmentation
	ErrSegmentationEmpty = New(CodeSegmentationEmpty, "No candidate scenes detected")

	// Scoring
	ErrScoringUnavailable = New(CodeScoringUnavailable, "Scoring service unavailable")
	ErrScoringUnparsable  = New(CodeScoringUnparsable, "Scoring response unparsable")
	ErrAnalysisEmpty      = New(CodeAnalysisEmpty, "Failed to analyze any scenes")

	// Orchestrator
	ErrDecisionUnparsable = New(CodeDecisionUnparsable, "Agent decision unparsable")
	ErrIterationBudget    = New(CodeIterationBudget, "Agent iteration budget exhausted")
	ErrOrderingViolation  = New(CodeOrderingViolation, "Workflow ordering violation")

	// Storage
	ErrDBError      = New(CodeDBError, "Database error")
	ErrUploadFailed = New(CodeUploadFailed, "Object storage upload failed")
)
