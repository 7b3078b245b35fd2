package mediawiki

import (
	"errors"
	"fmt"
)

var (
	ErrPageMissing   = errors.New("page does not exist")
	ErrSessionClosed = errors.New("session is closed")
)

// APIError is an error reported by the Action API, either in the standard
// "error" envelope or as a non-success module result.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("mediawiki api error %s", e.Code)
	}
	return fmt.Sprintf("mediawiki api error %s: %s", e.Code, e.Info)
}

// ErrorCode returns the API error code carried by err, or "Unknown".
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		return apiErr.Code
	}
	return "Unknown"
}
