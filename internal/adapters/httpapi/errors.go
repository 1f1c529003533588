package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

type Kind int

const (
	// KindTransport means no HTTP response was received (timeout, DNS, refused).
	KindTransport Kind = iota
	// KindHTTP means the server answered with a status >= 400.
	KindHTTP
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	fallbackRequestFailed = "Request failed"
	fallbackUnknown       = "Unknown error"
)

// Error is the single normalized failure shape. Status is 0 when no response
// was received.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Details any
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether a caller-driven retry makes sense for this error.
func (e *Error) Retryable() bool {
	return IsRetryableStatus(e.Status)
}

// IsRetryableStatus is true for 429 and every 5xx status. A zero status means
// the status is unknown and is never retryable.
func IsRetryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status <= 599)
}

// Normalize turns any error into an *Error carrying a human readable message.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = fallbackUnknown
	}
	return &Error{Kind: KindTransport, Message: message, Err: err}
}

// Message returns the one line shown to users for err.
func Message(err error) string {
	if normalized := Normalize(err); normalized != nil {
		return normalized.Message
	}
	return ""
}

func transportError(err error) *Error {
	message := ""
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		message = "request timed out"
	case errors.Is(err, context.Canceled):
		message = "request canceled"
	case err != nil:
		message = strings.TrimSpace(err.Error())
	}
	if message == "" {
		message = fallbackUnknown
	}
	return &Error{Kind: KindTransport, Message: message, Err: err}
}

// responseError applies the message precedence: a plain string body, then the
// body's "error" field, then its "message" field, then a status line, then a
// generic fallback.
func responseError(status int, body []byte) *Error {
	details, message := decodeErrorBody(body)
	if message == "" && status > 0 {
		message = fmt.Sprintf("request failed with status code %d", status)
	}
	if message == "" {
		message = fallbackRequestFailed
	}
	return &Error{Kind: KindHTTP, Message: message, Status: status, Details: details}
}

func decodeErrorBody(body []byte) (any, string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, ""
	}
	if !gjson.Valid(trimmed) {
		return trimmed, trimmed
	}

	parsed := gjson.Parse(trimmed)
	details := parsed.Value()
	switch {
	case parsed.Type == gjson.String:
		return details, strings.TrimSpace(parsed.Str)
	case parsed.IsObject():
		for _, key := range []string{"error", "message"} {
			if field := parsed.Get(key); field.Type == gjson.String && strings.TrimSpace(field.Str) != "" {
				return details, strings.TrimSpace(field.Str)
			}
		}
	}
	return details, ""
}
