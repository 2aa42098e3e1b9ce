package listclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RemoteError is any non-2xx response from the list store. Body holds the
// parsed JSON response when the store sent one, else the raw text, so
// upstream layers can distinguish not-found from forbidden from transient
// failures and surface the store's own message.
type RemoteError struct {
	Status int
	Body   interface{}
}

// newRemoteError parses the response body as JSON when possible.
func newRemoteError(status int, raw []byte) *RemoteError {
	e := &RemoteError{Status: status}
	if len(raw) == 0 {
		return e
	}
	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		e.Body = parsed
	} else {
		e.Body = string(raw)
	}
	return e
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote store %d: %s", e.Status, e.Message())
}

// Message digs the store's error message out of the body when present, else
// falls back to a generic status-code message.
func (e *RemoteError) Message() string {
	if body, ok := e.Body.(map[string]interface{}); ok {
		if inner, ok := body["error"].(map[string]interface{}); ok {
			if msg, ok := inner["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if msg, ok := body["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if s, ok := e.Body.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return http.StatusText(e.Status)
}

// IsNotFound reports a 404 response.
func (e *RemoteError) IsNotFound() bool { return e.Status == http.StatusNotFound }

// IsForbidden reports a 403 response.
func (e *RemoteError) IsForbidden() bool { return e.Status == http.StatusForbidden }

// IsTransient reports a 5xx response.
func (e *RemoteError) IsTransient() bool { return e.Status >= 500 }

// AsRemoteError unwraps err into a *RemoteError when possible.
func AsRemoteError(err error) (*RemoteError, bool) {
	var rerr *RemoteError
	ok := errors.As(err, &rerr)
	return rerr, ok
}
