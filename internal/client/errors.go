// internal/client/errors.go
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Local validation errors. These are raised before any network call.
var (
	ErrNoCommands       = errors.New("commands list must be non-empty")
	ErrWideNeedsBucket  = errors.New("wide export requires a bucket (raw is not supported)")
	ErrWideNeedsCodes   = errors.New("wide export requires at least one channel code")
	ErrScopeNotResolved = errors.New("scope id not resolved")
)

// APIError is a backend-reported failure: a non-2xx response with a
// structured or plain-text body.
type APIError struct {
	Status  int
	Detail  string
	Message string
	Raw     string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		msg = e.Raw
	}
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, msg)
}

// Unauthorized reports whether the backend rejected the credential.
func (e *APIError) Unauthorized() bool {
	return e.Status == 401
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return apiErr
	}

	var structured struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		apiErr.Detail = structured.Detail
		apiErr.Message = structured.Message
	}
	if apiErr.Detail == "" && apiErr.Message == "" {
		// A plain string body is itself the message.
		var s string
		if err := json.Unmarshal(body, &s); err == nil {
			apiErr.Raw = s
		} else if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
			apiErr.Raw = trimmed
		}
	}
	return apiErr
}

// ErrorMessage extracts a single user-displayable line from any error,
// in precedence order: backend detail, backend message, raw body,
// transport message annotated with the HTTP status, then fallback.
// Never panics, never returns "".
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Raw != "" {
			return apiErr.Raw
		}
		return fmt.Sprintf("%s (HTTP %d)", fallback, apiErr.Status)
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
