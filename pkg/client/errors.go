package client

import (
	"errors"
	"fmt"
	"strings"
)

// ErrThrottleWait is returned when the context expires while waiting at
// the throttle gate.
var ErrThrottleWait = errors.New("throttle wait interrupted")

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError is a failed fetch. One failed fetch fails exactly the page it
// was fetching; already-yielded results of a stream stay valid.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reddit %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("reddit %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// LoginError carries the failure reasons of a rejected login attempt.
type LoginError struct {
	Reasons []string
}

// Error implements the error interface.
func (e *LoginError) Error() string {
	if len(e.Reasons) == 0 {
		return "login rejected"
	}
	return fmt.Sprintf("login rejected: %s", strings.Join(e.Reasons, "; "))
}

// classifyStatus categorizes an HTTP status for observability.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 429:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
