// Package errors provides standardized error handling for the assistant pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeClassifierFailed ErrorCode = "CLASSIFIER_FAILED"

	ErrCodeIntentParsingFailed ErrorCode = "INTENT_PARSING_FAILED"

	ErrCodeSearchFailed  ErrorCode = "SEARCH_FAILED"
	ErrCodeFetchFailed   ErrorCode = "FETCH_FAILED"
	ErrCodeFetchTimeout  ErrorCode = "FETCH_TIMEOUT"

	ErrCodeModelCallFailed ErrorCode = "MODEL_CALL_FAILED"
	ErrCodeModelTimeout    ErrorCode = "MODEL_TIMEOUT"

	ErrCodeSynthesisFailed ErrorCode = "SYNTHESIS_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewModelCallError wraps a Model Client transport or quota failure.
func NewModelCallError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelCallFailed,
		Message:   "Model call failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelTimeoutError marks a model call that exceeded its deadline.
func NewModelTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelTimeout,
		Message:   "Model call timed out",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchError marks a single-page fetch or extraction failure.
func NewFetchError(url string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchFailed,
		Message:   "Page fetch failed",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"url": url},
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchTimeoutError marks a page load that exceeded the per-fetch bound.
func NewFetchTimeoutError(url string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchTimeout,
		Message:   "Page fetch timed out",
		Retryable: true,
		Metadata:  map[string]interface{}{"url": url},
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchError marks a search-engine query failure.
func NewSearchError(query string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchFailed,
		Message:   "Search query failed",
		Details:   details,
		Retryable: true,
		Metadata:  map[string]interface{}{"query": query},
		Timestamp: time.Now().UTC(),
	}
}

// NewSynthesisError marks a final-answer generation failure.
func NewSynthesisError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSynthesisFailed,
		Message:   "Answer synthesis failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// FromError normalizes any error into a StandardError.
func FromError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether the error is worth another attempt.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// CodeOf returns the error code, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}
