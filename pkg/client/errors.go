package client

import (
	"context"
	"errors"

	"github.com/aretw0/assist/pkg/domain"
)

// APIError is a failed round trip: a non-2xx status, a transport error or an unreadable body.
// Message is always user-presentable; it is the server's message when one was sent and the
// endpoint's fallback text otherwise.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// OutcomeOf maps a client result to a terminal submission outcome.
func OutcomeOf(payload any, err error) domain.Outcome {
	if err == nil {
		return domain.Succeeded(payload)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return domain.Failed(apiErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Failed("Request timed out. Please try again.")
	}
	return domain.Failed(err.Error())
}
