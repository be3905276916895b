package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired marks failures where the silent refresh itself was
// rejected; the caller must log in again.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is a non-2xx reply from the service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// IsUnauthorized reports a 401: no valid credential was presented.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// IsForbidden reports a 403: a credential was presented but rejected.
func (e *APIError) IsForbidden() bool {
	return e.Status == http.StatusForbidden
}
