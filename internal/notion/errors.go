package notion

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the integration token was rejected.
var ErrUnauthorized = errors.New("notion token rejected")

// ErrIncompleteAppend indicates that fewer blocks were written than
// requested. The page is left as written; there is no rollback.
var ErrIncompleteAppend = errors.New("notion appended fewer blocks than requested")

// APIError is an error object returned by the workspace API.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API error: HTTP %d: %s: %s", e.StatusCode, e.Code, e.Message)
}
