package stride

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	go_json "github.com/goccy/go-json"
)

// Authorization failures are recognized by message substring. The prefetch
// engine's auth gating pattern-matches on exactly these markers, so the API
// (and any proxy in front of it) must surface authorization failures with
// one of them in the message.
var authFailureMarkers = []string{
	"not authenticated",
	"Unauthorized",
	"access denied",
}

// IsAuthError reports whether err represents an authorization failure.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range authFailureMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stride api: %d %s", e.StatusCode, e.Message)
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    statusMessage(resp.StatusCode, resp.Status),
		}
	}

	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := go_json.Unmarshal(body, &errResp); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    statusMessage(resp.StatusCode, string(body)),
		}
	}

	msg := errResp.Message
	if msg == "" {
		msg = errResp.Error
	}
	msg = statusMessage(resp.StatusCode, msg)

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}

// statusMessage guarantees auth-failure responses carry a recognized marker
// even when the server returns an empty or unrelated body.
func statusMessage(statusCode int, msg string) string {
	switch statusCode {
	case http.StatusUnauthorized:
		if msg == "" || !containsMarker(msg) {
			return strings.TrimSpace("Unauthorized " + msg)
		}
	case http.StatusForbidden:
		if msg == "" || !containsMarker(msg) {
			return strings.TrimSpace("access denied " + msg)
		}
	}
	if msg == "" {
		return http.StatusText(statusCode)
	}
	return msg
}

func containsMarker(msg string) bool {
	for _, marker := range authFailureMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
