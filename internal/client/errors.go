package client

import (
	"encoding/json"
	"fmt"
)

// ErrRequestFailed indicates the request never produced a usable response:
// the transport failed (StatusCode is 0) or the service answered with a
// non-2xx status.
type ErrRequestFailed struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ErrRequestFailed) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("validation request failed (status %d): %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("validation request failed (status %d): %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("validation request failed: %v", e.Err)
	}
	return "validation request failed"
}

func (e *ErrRequestFailed) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates a 2xx response whose body is not a
// validation result.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid validation response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }
