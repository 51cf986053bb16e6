package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
	Body    []byte

	fromPayload bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// As lets pkg/errors helpers see the status as a typed code.
func (e *Error) As(target any) bool {
	typed, ok := target.(**pkgerrors.Error)
	if !ok {
		return false
	}
	*typed = pkgerrors.New(pkgerrors.CodeForStatus(e.Status), e.Message)
	return true
}

// IsUnauthorized reports whether the response was a 401.
func (e *Error) IsUnauthorized() bool {
	return e != nil && e.Status == http.StatusUnauthorized
}

func newError(status int, body []byte) *Error {
	if msg := payloadMessage(body); msg != "" {
		return &Error{Status: status, Message: msg, Body: body, fromPayload: true}
	}
	msg := http.StatusText(status)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Status: status, Message: msg, Body: body}
}

// payloadMessage reads message, error or error.message from a JSON payload.
func payloadMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := rawString(payload["message"]); msg != "" {
		return msg
	}
	raw, ok := payload["error"]
	if !ok {
		return ""
	}
	if msg := rawString(raw); msg != "" {
		return msg
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return ""
	}
	return strings.TrimSpace(nested.Message)
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// MessageOf returns the message the backend put in its error payload, or fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.fromPayload {
		return apiErr.Message
	}
	return fallback
}
