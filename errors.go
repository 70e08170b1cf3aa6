package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// DefaultErrorMessage is surfaced when the backend gives us nothing better.
const DefaultErrorMessage = "Something went wrong. Please try again."

// Error is the single shape every network and backend failure is normalized
// into before it reaches callers. No raw transport error crosses the client
// boundary.
type Error struct {
	Message    string              // Human-readable, safe to display
	StatusCode int                 // HTTP status, 0 for transport failures
	Fields     map[string][]string // Per-field validation errors, if any
}

func (e *Error) Error() string {
	return e.Message
}

// IsUnauthorized reports whether the error was an authentication rejection.
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// normalizeNetworkError converts transport-level failures (connection
// refused, DNS, timeout) into the portal error shape.
func normalizeNetworkError(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Message: "The request timed out. Please try again."}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Message: "The request was cancelled."}
	}
	return &Error{Message: "Could not reach the service. Please check your connection."}
}

// normalizeHTTPError converts a non-2xx response into the portal error
// shape, preferring the backend's own message when one is present.
func normalizeHTTPError(statusCode int, body io.Reader) *Error {
	e := &Error{StatusCode: statusCode, Message: DefaultErrorMessage}

	if env := decodeEnvelope(body); env != nil {
		if env.Message != "" {
			e.Message = env.Message
		}
		e.Fields = env.Errors
		if e.Message != DefaultErrorMessage || len(e.Fields) > 0 {
			return e
		}
	}

	switch {
	case statusCode == http.StatusNotFound:
		e.Message = "The requested record was not found."
	case statusCode == http.StatusTooManyRequests:
		e.Message = "Too many requests. Please wait a moment and try again."
	case statusCode >= http.StatusInternalServerError:
		e.Message = fmt.Sprintf("The service is temporarily unavailable (HTTP %d).", statusCode)
	}
	return e
}

// decodeEnvelope best-effort parses a response body as the standard
// envelope. Bodies over 64KiB are truncated; garbage returns nil.
func decodeEnvelope(body io.Reader) *envelope {
	if body == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return nil
	}
	env := &envelope{}
	if err := json.Unmarshal(data, env); err != nil {
		return nil
	}
	return env
}
