package domain

// OutcomeStatus is the tag of a submission outcome.
type OutcomeStatus string

const (
	OutcomePending OutcomeStatus = "pending"
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// Outcome is the result of one submission attempt.
// Pending moves to Success or Failure exactly once; both are terminal.
type Outcome struct {
	Status  OutcomeStatus `json:"status"`
	Payload any           `json:"payload,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Pending returns an outcome for a submission that has not completed.
func Pending() Outcome {
	return Outcome{Status: OutcomePending}
}

// Succeeded returns a successful outcome carrying the parsed server payload.
func Succeeded(payload any) Outcome {
	return Outcome{Status: OutcomeSuccess, Payload: payload}
}

// Failed returns a failed outcome carrying a user-facing message.
func Failed(message string) Outcome {
	return Outcome{Status: OutcomeFailure, Message: message}
}

// Terminal reports whether the outcome is Success or Failure.
func (o Outcome) Terminal() bool {
	return o.Status == OutcomeSuccess || o.Status == OutcomeFailure
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Status == OutcomeSuccess
}
