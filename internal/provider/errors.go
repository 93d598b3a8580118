package provider

import (
	"fmt"
	"net/http"
)

// APIError is returned for any non successful provider response.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string // provider specific error code, if any
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s api: status %d: %s", e.Provider, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s api: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Temporary reports whether the same request may succeed on a later tick.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500 || e.Code == "ratelimited"
}

// Unauthorized reports whether the token was rejected.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "invalid_auth" || e.Code == "token_expired"
}
