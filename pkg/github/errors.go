package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// ErrorType classifies GitHub API failures for control-flow decisions.
type ErrorType string

const (
	ErrorTypeAuth      ErrorType = "authentication"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeConflict  ErrorType = "conflict"
	ErrorTypeDiverged  ErrorType = "diverged"
	ErrorTypeNetwork   ErrorType = "network"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// APIError is a structured error from a GitHub operation.
type APIError struct {
	Type       ErrorType     `json:"type"`
	Message    string        `json:"message"`
	Cause      error         `json:"-"`
	Resource   string        `json:"resource,omitempty"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	Retryable  bool          `json:"retryable"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is worth another attempt.
func (e *APIError) IsRetryable() bool {
	return e.Retryable
}

// NewAPIError creates an APIError with the given type and message.
func NewAPIError(errorType ErrorType, message string, cause error) *APIError {
	return &APIError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryableErrorType(errorType),
	}
}

// errorType extracts the ErrorType from an error chain, or ErrorTypeUnknown.
func errorType(err error) ErrorType {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeUnknown
}

// IsAuthError reports whether err is an authentication/authorization failure.
// Auth failures are run-fatal: no subsequent call can succeed.
func IsAuthError(err error) bool {
	return errorType(err) == ErrorTypeAuth
}

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool {
	return errorType(err) == ErrorTypeNotFound
}

// IsRateLimited reports whether err is an abuse/rate limit rejection.
func IsRateLimited(err error) bool {
	return errorType(err) == ErrorTypeRateLimit
}

// IsConflict reports whether err is an already-exists conflict.
func IsConflict(err error) bool {
	return errorType(err) == ErrorTypeConflict
}

// IsDiverged reports whether err means the fork and its upstream have
// diverged and cannot be fast-forwarded.
func IsDiverged(err error) bool {
	return errorType(err) == ErrorTypeDiverged
}

// WrapAPIError translates a go-github error into our structured taxonomy.
func WrapAPIError(err error, resource string) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Resource == "" {
			apiErr.Resource = resource
		}
		return apiErr
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &APIError{
			Type:       ErrorTypeRateLimit,
			Message:    fmt.Sprintf("rate limit exceeded, resets at %v", rateErr.Rate.Reset.Time),
			Cause:      err,
			Resource:   resource,
			RetryAfter: time.Until(rateErr.Rate.Reset.Time),
			Retryable:  true,
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		wrapped := &APIError{
			Type:      ErrorTypeRateLimit,
			Message:   "secondary rate limit hit",
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
		if abuseErr.RetryAfter != nil {
			wrapped.RetryAfter = *abuseErr.RetryAfter
		}
		return wrapped
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return parseErrorResponse(respErr, resource)
	}

	if isNetworkError(err) {
		return &APIError{
			Type:      ErrorTypeNetwork,
			Message:   "network error, check your connection",
			Cause:     err,
			Resource:  resource,
			Retryable: true,
		}
	}

	return &APIError{
		Type:     ErrorTypeUnknown,
		Message:  err.Error(),
		Cause:    err,
		Resource: resource,
	}
}

// parseErrorResponse maps GitHub HTTP error responses into the taxonomy.
func parseErrorResponse(respErr *github.ErrorResponse, resource string) *APIError {
	wrapped := &APIError{
		Cause:    respErr,
		Resource: resource,
	}

	switch respErr.Response.StatusCode {
	case http.StatusUnauthorized:
		wrapped.Type = ErrorTypeAuth
		wrapped.Message = "authentication failed, check your GitHub token"

	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(respErr.Message), "rate limit") {
			wrapped.Type = ErrorTypeRateLimit
			wrapped.Message = "rate limit exceeded"
			wrapped.Retryable = true
			wrapped.RetryAfter = retryAfterHeader(respErr.Response)
		} else {
			// 403 without a rate-limit hint means the token lacks access.
			wrapped.Type = ErrorTypeAuth
			wrapped.Message = "insufficient permissions, token may be missing the repo scope"
		}

	case http.StatusNotFound:
		wrapped.Type = ErrorTypeNotFound
		wrapped.Message = "not found"

	case http.StatusConflict:
		wrapped.Type = ErrorTypeConflict
		wrapped.Message = respErr.Message
		if wrapped.Message == "" {
			wrapped.Message = "resource conflict"
		}

	case http.StatusUnprocessableEntity:
		if strings.Contains(strings.ToLower(respErr.Message), "merge conflict") {
			wrapped.Type = ErrorTypeDiverged
			wrapped.Message = "fork has diverged from its upstream"
		} else {
			wrapped.Type = ErrorTypeUnknown
			wrapped.Message = respErr.Message
		}

	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		wrapped.Type = ErrorTypeNetwork
		wrapped.Message = "GitHub is temporarily unavailable"
		wrapped.Retryable = true

	default:
		wrapped.Type = ErrorTypeUnknown
		wrapped.Message = respErr.Message
		wrapped.Retryable = respErr.Response.StatusCode >= 500
	}

	return wrapped
}

// retryAfterHeader parses the Retry-After response header, if present.
func retryAfterHeader(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// isNetworkError checks if an error looks like a transport failure.
func isNetworkError(err error) bool {
	errStr := strings.ToLower(err.Error())
	networkKeywords := []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no such host",
		"timeout",
		"dial tcp",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// isRetryableErrorType determines if an error type is generally retryable.
func isRetryableErrorType(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeRateLimit, ErrorTypeNetwork:
		return true
	default:
		return false
	}
}

// RetryPolicy is an explicit bounded-attempt policy applied to retryable
// API failures. The server-indicated delay wins over the backoff schedule
// when present.
type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration

	// sleep is injectable for deterministic tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the standard retry policy: three attempts with
// exponential backoff starting at 16 seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   DefaultMaxAttempts,
		InitialDelay:  16 * time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      5 * time.Minute,
	}
}

// Do runs op up to MaxAttempts times, sleeping between attempts on
// retryable errors. It returns the number of attempts made and the last
// error, nil on success.
func (p RetryPolicy) Do(ctx context.Context, op func() error) (int, error) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	delay := p.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return attempt, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := delay
		if apiErr.RetryAfter > 0 {
			wait = apiErr.RetryAfter
		}
		if p.MaxDelay > 0 && wait > p.MaxDelay {
			wait = p.MaxDelay
		}
		if err := sleep(ctx, wait); err != nil {
			return attempt, err
		}
		delay = time.Duration(float64(delay) * p.BackoffFactor)
	}

	return p.MaxAttempts, lastErr
}
