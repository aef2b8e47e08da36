package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter EventType = "step_enter"
	EventStepLeave EventType = "step_leave"
	EventValidate  EventType = "validate"
	EventSubmit    EventType = "submit"
	EventOutcome   EventType = "outcome"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Flow      string    `json:"flow"`
}

// StepEvent represents entry into or exit from a wizard step.
type StepEvent struct {
	EventBase
	Index int    `json:"index"`
	Step  string `json:"step"`
}

// ValidateEvent reports the verdict of a validation run.
type ValidateEvent struct {
	EventBase
	Step   string           `json:"step"`
	Result ValidationResult `json:"result,omitempty"`
}

// OutcomeEvent reports the start or end of a submission.
type OutcomeEvent struct {
	EventBase
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for workflow observability.
type LifecycleHooks struct {
	OnStepEnter func(context.Context, *StepEvent)
	OnStepLeave func(context.Context, *StepEvent)
	OnValidate  func(context.Context, *ValidateEvent)
	OnSubmit    func(context.Context, *OutcomeEvent)
	OnOutcome   func(context.Context, *OutcomeEvent)
}

// Combine returns hooks that call h first and then other.
func (h LifecycleHooks) Combine(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter: chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave: chain(h.OnStepLeave, other.OnStepLeave),
		OnValidate:  chain(h.OnValidate, other.OnValidate),
		OnSubmit:    chain(h.OnSubmit, other.OnSubmit),
		OnOutcome:   chain(h.OnOutcome, other.OnOutcome),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
