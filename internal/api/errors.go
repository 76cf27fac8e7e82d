package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx response from the SOIN API. Detail carries the
// server-provided reason when one was sent.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
}

// IsAuthError reports whether err is an API rejection of the credential
// itself (as opposed to a transport failure or a server fault).
func IsAuthError(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// Reason extracts a user-presentable message from err, falling back to
// the given default for transport errors with no server detail.
func Reason(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
