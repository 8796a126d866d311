// Package apierr classifies errors produced by calls to the admin API.
//
// Every error shape assumption lives here: status extraction, category
// predicates and user-facing messages are all derived from a single
// extraction point (StatusOf), so callers and the retry executor never
// inspect error internals themselves.
package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"syscall"
	"time"
)

// FieldError describes a single invalid field in a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the canonical status-carrying error for API responses.
// Status is the HTTP status code; Fields is populated for 400 validation
// failures and Field names the offending field for 422 responses.
type Error struct {
	Status     int
	Message    string
	Fields     []FieldError
	Field      string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, http.StatusText(e.Status))
}

// StatusCode returns the HTTP status code carried by the error.
func (e *Error) StatusCode() int { return e.Status }

// New creates an Error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// wireError is the JSON error payload shape the backend produces.
type wireError struct {
	Message string       `json:"message"`
	Field   string       `json:"field"`
	Errors  []FieldError `json:"errors"`
}

// FromResponse builds an Error from a non-2xx response and its body.
// The body is optional; an empty or non-JSON body yields a bare status error.
func FromResponse(resp *http.Response, body []byte) *Error {
	e := &Error{Status: resp.StatusCode}
	if ra := retryAfter(resp.Header.Get("Retry-After")); ra > 0 {
		e.RetryAfter = ra
	}
	if len(body) == 0 {
		return e
	}
	var w wireError
	if err := json.Unmarshal(body, &w); err != nil {
		return e
	}
	e.Message = w.Message
	e.Field = w.Field
	e.Fields = w.Errors
	return e
}

// retryAfter parses a Retry-After header value (seconds or HTTP date).
func retryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// StatusOf extracts an HTTP-like status code from anywhere in the error
// chain. It accepts *Error as well as any error exposing StatusCode() int
// or HTTPStatus() int, so errors from other clients classify the same way.
func StatusOf(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	var hs interface{ HTTPStatus() int }
	if errors.As(err, &hs) {
		return hs.HTTPStatus(), true
	}
	return 0, false
}

// IsNetwork reports whether the error is a connectivity-layer failure:
// the request never produced a response. Errors carrying a status code are
// never network errors.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := StatusOf(err); ok {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		if ne, ok := ue.Err.(net.Error); ok && ne.Timeout() {
			return true
		}
		var oe *net.OpError
		if errors.As(ue.Err, &oe) {
			return true
		}
		if errors.Is(ue.Err, io.EOF) || errors.Is(ue.Err, io.ErrUnexpectedEOF) {
			return true
		}
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	var se *os.SyscallError
	if errors.As(err, &se) {
		switch se.Err {
		case syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED,
			syscall.ENETDOWN, syscall.ENETUNREACH, syscall.EPIPE,
			syscall.EHOSTUNREACH, syscall.ETIMEDOUT:
			return true
		}
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// IsTimeout reports whether the error indicates a timed-out request:
// status 408, a context deadline, or a net-level timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := StatusOf(err); ok {
		return code == http.StatusRequestTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ETIMEDOUT)
}

// IsRateLimited reports whether the error carries status 429.
func IsRateLimited(err error) bool { return hasStatus(err, http.StatusTooManyRequests) }

// IsServiceUnavailable reports whether the error carries status 503.
func IsServiceUnavailable(err error) bool { return hasStatus(err, http.StatusServiceUnavailable) }

// IsNotFound reports whether the error carries status 404.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsPayloadTooLarge reports whether the error carries status 413.
func IsPayloadTooLarge(err error) bool { return hasStatus(err, http.StatusRequestEntityTooLarge) }

// IsUnprocessableEntity reports whether the error carries status 422.
func IsUnprocessableEntity(err error) bool { return hasStatus(err, http.StatusUnprocessableEntity) }

// IsValidation reports whether the error carries status 400.
func IsValidation(err error) bool { return hasStatus(err, http.StatusBadRequest) }

// IsServerError reports whether the error carries a 5xx status.
func IsServerError(err error) bool {
	code, ok := StatusOf(err)
	return ok && code >= 500
}

func hasStatus(err error, status int) bool {
	code, ok := StatusOf(err)
	return ok && code == status
}

// ValidationFields returns the field-level messages of a 400 validation
// failure, or nil for any other error.
func ValidationFields(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) && e.Status == http.StatusBadRequest {
		return e.Fields
	}
	return nil
}

// OffendingField returns the field named by a 422 business-logic error,
// or "" when none was reported.
func OffendingField(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Status == http.StatusUnprocessableEntity {
		return e.Field
	}
	return ""
}

// UserMessage maps an error to a message suitable for end users.
// Presentation (toasts, field highlighting) stays with the caller.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTimeout(err):
		return "the request timed out, please try again"
	case IsNetwork(err):
		return "cannot reach the server, check your connection"
	case IsRateLimited(err):
		return "too many requests, please wait a moment"
	case IsServiceUnavailable(err):
		return "the service is temporarily unavailable, please try again shortly"
	case IsNotFound(err):
		return "the requested item was not found"
	case IsPayloadTooLarge(err):
		return "the file is too large to upload"
	case IsUnprocessableEntity(err):
		if f := OffendingField(err); f != "" {
			return fmt.Sprintf("the request cannot be processed, check the %s field", f)
		}
		return "the request cannot be processed"
	case IsValidation(err):
		return "please correct the highlighted fields"
	case IsServerError(err):
		return "the server had a problem, please try again later"
	default:
		return "something went wrong, please try again"
	}
}
