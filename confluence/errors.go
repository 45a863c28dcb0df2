package confluence

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	ErrNotFound       = errors.New("confluence: page not found")
	ErrAuthentication = errors.New("confluence: authentication failed")
	ErrNetwork        = errors.New("confluence: network error")
)

// StatusError is any non-2xx answer from Confluence.  404 and 401/403 also match ErrNotFound and
// ErrAuthentication respectively.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string

	// The "message" field of Confluence's JSON error body, if there was one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("confluence: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("confluence: unexpected HTTP response status: %s: %s", e.Status, e.URL)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrAuthentication:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

func newStatusError(response *http.Response, url string, body []byte) *StatusError {
	return &StatusError{
		StatusCode: response.StatusCode,
		Status:     response.Status,
		URL:        url,
		Message:    gjson.GetBytes(body, "message").String(),
	}
}
