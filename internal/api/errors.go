package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound matches a 404 from the service.
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Code)
}

// Unwrap maps a 404 to ErrNotFound.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// parseError builds a StatusError from an error response.
func parseError(resp *resty.Response) error {
	e := &StatusError{StatusCode: resp.StatusCode(), Code: "unknown_error"}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Code != "" {
		e.Code = body.Code
		e.Message = body.Message
	} else if len(resp.Body()) > 0 {
		e.Message = string(resp.Body())
	}
	return e
}

// IsServerError reports whether err is a 5xx response.
func IsServerError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 500
}
