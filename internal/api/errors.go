package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// GenericMessage is shown when a failure carries no usable message.
const GenericMessage = "something went wrong"

// maxMessageLen caps plain-text error bodies used as messages.
const maxMessageLen = 200

// ErrTabNotFound is returned by GetTab when the customer has no stored tab.
var ErrTabNotFound = errors.New("tab not found")

// NetworkError means the request could not complete: DNS, connection,
// timeout, cancellation or an unreadable response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BackendError is a non-2xx response.
type BackendError struct {
	StatusCode int
	// Message is the human-readable text from the body, if any.
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.StatusCode == http.StatusNotFound
}

// StatusCode returns the HTTP status of a BackendError, or 0.
func StatusCode(err error) int {
	var be *BackendError
	if errors.As(err, &be) {
		return be.StatusCode
	}
	return 0
}

// extractMessage pulls a readable message out of an error body. It looks
// for a "message" or "error" string in a JSON object, then falls back to a
// short plain-text body. HTML pages and JSON without those fields yield "".
func extractMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return ""
		}
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}

	if strings.HasPrefix(text, "<") || !utf8.ValidString(text) {
		return ""
	}
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen]
	}
	return text
}
