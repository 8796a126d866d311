package apierr_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"incuhub/pkg/apierr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusCoded duck-types a status code the way other HTTP clients do.
type statusCoded struct{ code int }

func (e statusCoded) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e statusCoded) StatusCode() int { return e.code }

// httpStatused exposes the alternate status accessor.
type httpStatused struct{ code int }

func (e httpStatused) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e httpStatused) HTTPStatus() int { return e.code }

// timeoutErr implements net.Error.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   int
		wantOK bool
	}{
		{"nil", nil, 0, false},
		{"plain error", errors.New("boom"), 0, false},
		{"api error", apierr.New(503, "down"), 503, true},
		{"wrapped api error", fmt.Errorf("list users: %w", apierr.New(404, "")), 404, true},
		{"StatusCode interface", statusCoded{429}, 429, true},
		{"HTTPStatus interface", httpStatused{500}, 500, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := apierr.StatusOf(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "api: status 503: maintenance window", apierr.New(503, "maintenance window").Error())
	assert.Equal(t, "api: status 404: Not Found", apierr.New(404, "").Error())
}

func TestFromResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: 400,
		Header:     http.Header{},
	}
	body := []byte(`{"message":"validation failed","errors":[{"field":"email","message":"invalid email"},{"field":"name","message":"required"}]}`)

	e := apierr.FromResponse(resp, body)
	require.NotNil(t, e)
	assert.Equal(t, 400, e.Status)
	assert.Equal(t, "validation failed", e.Message)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "email", e.Fields[0].Field)
	assert.Equal(t, "invalid email", e.Fields[0].Message)
}

func TestFromResponseOffendingField(t *testing.T) {
	resp := &http.Response{StatusCode: 422, Header: http.Header{}}
	e := apierr.FromResponse(resp, []byte(`{"message":"team is full","field":"teamId"}`))
	assert.Equal(t, 422, e.Status)
	assert.Equal(t, "teamId", e.Field)
	assert.Equal(t, "teamId", apierr.OffendingField(e))
}

func TestFromResponseRetryAfter(t *testing.T) {
	resp := &http.Response{
		StatusCode: 429,
		Header:     http.Header{"Retry-After": []string{"2"}},
	}
	e := apierr.FromResponse(resp, nil)
	assert.Equal(t, 2*time.Second, e.RetryAfter)
}

func TestFromResponseGarbageBody(t *testing.T) {
	resp := &http.Response{StatusCode: 502, Header: http.Header{}}
	e := apierr.FromResponse(resp, []byte("<html>Bad Gateway</html>"))
	assert.Equal(t, 502, e.Status)
	assert.Empty(t, e.Message)
}

func TestIsNetwork(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	urlErr := &url.Error{Op: "Get", URL: "http://localhost/api/users", Err: opErr}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"url error wrapping op error", urlErr, true},
		{"op error", opErr, true},
		{"dns error", &net.DNSError{Name: "api.local", IsTemporary: true}, true},
		{"eof", io.EOF, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"closed connection", net.ErrClosed, true},
		{"canceled", context.Canceled, false},
		{"status-carrying error", apierr.New(503, "down"), false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apierr.IsNetwork(tt.err))
		})
	}
}

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"408", apierr.New(408, ""), true},
		{"other status", apierr.New(500, ""), false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"net timeout", timeoutErr{}, true},
		{"wrapped net timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apierr.IsTimeout(tt.err))
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status int
		pred   func(error) bool
	}{
		{429, apierr.IsRateLimited},
		{503, apierr.IsServiceUnavailable},
		{404, apierr.IsNotFound},
		{413, apierr.IsPayloadTooLarge},
		{422, apierr.IsUnprocessableEntity},
		{400, apierr.IsValidation},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			assert.True(t, tt.pred(apierr.New(tt.status, "")))
			assert.False(t, tt.pred(apierr.New(tt.status+1, "")))
			assert.False(t, tt.pred(errors.New("no status")))
			assert.False(t, tt.pred(nil))
		})
	}
}

func TestIsServerError(t *testing.T) {
	assert.True(t, apierr.IsServerError(apierr.New(500, "")))
	assert.True(t, apierr.IsServerError(apierr.New(504, "")))
	assert.False(t, apierr.IsServerError(apierr.New(499, "")))
	assert.False(t, apierr.IsServerError(errors.New("no status")))
}

func TestValidationFields(t *testing.T) {
	e := &apierr.Error{
		Status: 400,
		Fields: []apierr.FieldError{{Field: "email", Message: "invalid"}},
	}
	fields := apierr.ValidationFields(fmt.Errorf("create user: %w", e))
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].Field)

	assert.Nil(t, apierr.ValidationFields(apierr.New(422, "")))
	assert.Nil(t, apierr.ValidationFields(errors.New("boom")))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"nil", nil, ""},
		{"timeout", apierr.New(408, ""), "timed out"},
		{"network", &net.OpError{Op: "dial", Err: errors.New("refused")}, "cannot reach"},
		{"rate limited", apierr.New(429, ""), "too many requests"},
		{"unavailable", apierr.New(503, ""), "temporarily unavailable"},
		{"not found", apierr.New(404, ""), "not found"},
		{"too large", apierr.New(413, ""), "too large"},
		{"business logic with field", &apierr.Error{Status: 422, Field: "budget"}, "budget"},
		{"validation", apierr.New(400, ""), "correct the highlighted"},
		{"server error", apierr.New(500, ""), "server had a problem"},
		{"unknown", errors.New("boom"), "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := apierr.UserMessage(tt.err)
			if tt.contains == "" {
				assert.Empty(t, msg)
				return
			}
			assert.True(t, strings.Contains(msg, tt.contains), "message %q should contain %q", msg, tt.contains)
		})
	}
}
