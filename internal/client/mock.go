package client

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockValidator.
type MockResponse struct {
	Result *Result
	Err    error
}

// MockValidator is a deterministic Validator for testing.
// It returns canned responses in FIFO order and records all requests.
type MockValidator struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
}

var _ Validator = (*MockValidator)(nil)

// NewMockValidator creates a MockValidator with the given canned responses.
func NewMockValidator(responses ...MockResponse) *MockValidator {
	return &MockValidator{responses: responses}
}

// Validate returns the next canned response, or ErrRequestFailed if the
// queue is empty.
func (m *MockValidator) Validate(_ context.Context, req Request) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrRequestFailed{}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Result, nil
}

// Calls returns a copy of the recorded requests.
func (m *MockValidator) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}
