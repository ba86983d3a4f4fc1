package validator

import "github.com/abhisek/obevalidator/internal/client"

// validationDoneMsg carries the outcome of the single in-flight request.
type validationDoneMsg struct {
	RequestID string
	Result    *client.Result
	Err       error
}
