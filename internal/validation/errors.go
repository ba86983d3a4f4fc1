package validation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFileType is returned when a selected file lacks the .txt suffix.
	ErrInvalidFileType = errors.New("file must have a .txt extension")

	// ErrMissingInput is returned when submitting without both files.
	ErrMissingInput = errors.New("both syllabus and question files are required")

	// ErrInvalidThreshold is returned when the threshold is not a number.
	ErrInvalidThreshold = errors.New("threshold must be a number")

	// ErrBusy is returned for any submission while one is in flight.
	ErrBusy = errors.New("a validation request is already in flight")
)

// TransitionError reports a lifecycle transition that is not allowed.
type TransitionError struct {
	From, To Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// User-facing notification texts.
const (
	MsgInvalidFileType  = "Please select a valid .txt file."
	MsgMissingInput     = "Please select both syllabus and question files."
	MsgInvalidThreshold = "Please enter a valid threshold."
	MsgUnreadableFile   = "Could not read the selected file."
	MsgSuccess          = "Validation successful!"
	MsgFailure          = "Validation failed."
)

// Message maps an error from this package to its notification text. Any
// other error is a request failure and maps to MsgFailure.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFileType):
		return MsgInvalidFileType
	case errors.Is(err, ErrMissingInput):
		return MsgMissingInput
	case errors.Is(err, ErrInvalidThreshold):
		return MsgInvalidThreshold
	}
	return MsgFailure
}
