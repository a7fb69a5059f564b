package dns

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfigMissing is returned before any network call when a required
	// credential or the default zone id is absent.
	ErrConfigMissing = errors.New("configuration missing")

	// ErrNotFound is returned when the provider answers a singular lookup
	// without a result.
	ErrNotFound = errors.New("not found")
)

// APIError is a single error entry reported by the provider.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e APIError) Error() string {
	if e.Code == 0 {
		return e.Message
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// RejectedError is returned when the provider responds with success=false.
type RejectedError struct {
	Errors []APIError
}

func (e *RejectedError) Error() string {
	if len(e.Errors) == 0 {
		return "provider rejected request"
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, ae := range e.Errors {
		msgs = append(msgs, ae.Error())
	}
	return "provider rejected request: " + strings.Join(msgs, "; ")
}

// HasCode reports whether the provider returned the given error code.
func (e *RejectedError) HasCode(code int) bool {
	for _, ae := range e.Errors {
		if ae.Code == code {
			return true
		}
	}
	return false
}
