package weread

import (
	"errors"
	"fmt"
)

// ErrSessionExpired indicates the WeRead cookie is no longer accepted.
// It is not recoverable within a run.
var ErrSessionExpired = errors.New("weread session expired, refresh the cookie")

// errcodes the platform returns in the body when the login has lapsed
const (
	errCodeLoginTimeout = -2012
	errCodeNotLoggedIn  = -2010
)

// StatusError represents a non-OK response from a WeRead endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
	ErrCode    int
	ErrMsg     string
}

func (e *StatusError) Error() string {
	if e.ErrMsg != "" {
		return fmt.Sprintf("weread %s: HTTP %d: errcode %d: %s", e.Endpoint, e.StatusCode, e.ErrCode, e.ErrMsg)
	}
	return fmt.Sprintf("weread %s: HTTP %d", e.Endpoint, e.StatusCode)
}
