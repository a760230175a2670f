package api

import (
	"fmt"
	"net/http"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
)

var (
	// ErrUnauthorized matches any 401 response.
	ErrUnauthorized = types.ErrUnauthorized
	// ErrTimeout is returned when a call exceeds the client timeout.
	ErrTimeout = types.ErrTimeout
)

// APIError is a non-2xx response. Message is the server's detail when it sent one.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

func newAPIError(status int, detail, requestID string) *APIError {
	msg := detail
	if msg == "" {
		msg = fmt.Sprintf("API Error: %d %s", status, http.StatusText(status))
	}
	return &APIError{StatusCode: status, Message: msg, RequestID: requestID}
}
