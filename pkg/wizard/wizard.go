package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/aretw0/assist/internal/logging"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/upload"
	"github.com/aretw0/assist/pkg/validation"
	"go.uber.org/atomic"
)

// Step is one screen's worth of fields, described by its rule table.
type Step struct {
	Name  string
	Rules []validation.Rule
	// Fields declares extra fields that have no rules (optional inputs).
	Fields []string
}

// SubmitFunc sends the validated state and reports the outcome.
// A non-nil error is mapped to a Failure outcome by the wizard.
type SubmitFunc func(ctx context.Context, state *domain.FormState) (domain.Outcome, error)

// Wizard sequences steps over a single FormState.
// StepIndex is 1-based: advancing requires the current step to validate, retreating never does.
type Wizard struct {
	name       string
	steps      []Step
	validators []*validation.Validator
	state      *domain.FormState
	index      int

	mu      sync.Mutex // guards errs and outcome
	errs    domain.ValidationResult
	outcome domain.Outcome

	inFlight *atomic.Bool
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Wizard.
type Option func(*Wizard)

// WithName labels the flow in logs and events.
func WithName(name string) Option {
	return func(w *Wizard) {
		w.name = name
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = hooks
	}
}

// WithState seeds the wizard with pre-filled values (e.g. a carried identifier).
// Fields of the steps are declared on top of it.
func WithState(state *domain.FormState) Option {
	return func(w *Wizard) {
		w.state = state
	}
}

// New builds a wizard positioned at step 1.
func New(steps []Step, opts ...Option) (*Wizard, error) {
	if len(steps) == 0 {
		return nil, errors.New("wizard needs at least one step")
	}
	w := &Wizard{
		name:     "form",
		steps:    steps,
		index:    1,
		errs:     domain.ValidationResult{},
		outcome:  domain.Outcome{},
		inFlight: atomic.NewBool(false),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.state == nil {
		w.state = domain.NewFormState()
	}

	w.validators = make([]*validation.Validator, len(steps))
	for i, s := range steps {
		v, err := validation.New(s.Rules)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, s.Name, err)
		}
		w.validators[i] = v
		w.state.Declare(v.Fields()...)
		w.state.Declare(s.Fields...)
	}

	w.logger = w.logger.With("flow", w.name)
	w.emitStep(context.Background(), domain.EventStepEnter)
	return w, nil
}

// Name returns the flow label.
func (w *Wizard) Name() string { return w.name }

// Step returns the active 1-based step index.
func (w *Wizard) Step() int { return w.index }

// Total returns the number of steps.
func (w *Wizard) Total() int { return len(w.steps) }

// Current returns the active step definition.
func (w *Wizard) Current() Step { return w.steps[w.index-1] }

// Steps returns the step definitions.
func (w *Wizard) Steps() []Step { return w.steps }

// State exposes the form session for input events.
func (w *Wizard) State() *domain.FormState { return w.state }

// Errors returns a copy of the field errors currently surfaced for display.
func (w *Wizard) Errors() domain.ValidationResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.errs)
}

// Outcome returns the result of the last completed submission.
// The zero Outcome means nothing was submitted yet.
func (w *Wizard) Outcome() domain.Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outcome
}

// Pending reports whether a submission is in flight.
func (w *Wizard) Pending() bool { return w.inFlight.Load() }

// Set records a text input event.
func (w *Wizard) Set(field, value string) {
	w.state.Set(field, value)
}

// Attach runs the file acceptor for a field. A rejection leaves the slot untouched
// and surfaces the reason in Errors.
func (w *Wizard) Attach(field string, f *domain.UploadedFile, policy upload.Policy) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return policy.Accept(w.state, field, f, w.errs)
}

// Detach clears a file slot.
func (w *Wizard) Detach(field string) {
	w.state.ClearFile(field)
}

// Validate runs the current step's rules and surfaces the fresh result.
func (w *Wizard) Validate(ctx context.Context) domain.ValidationResult {
	result := w.validators[w.index-1].Validate(w.state)
	w.mu.Lock()
	w.errs = maps.Clone(result)
	w.mu.Unlock()

	if w.hooks.OnValidate != nil {
		w.hooks.OnValidate(ctx, &domain.ValidateEvent{
			EventBase: w.base(domain.EventValidate),
			Step:      w.Current().Name,
			Result:    result,
		})
	}
	if !result.Valid() {
		w.logger.Debug("Step invalid", "step", w.Current().Name, "fields", result.Fields())
	}
	return result
}

// Advance moves to the next step when the current one validates.
// On the last step a valid state leaves the index unchanged.
func (w *Wizard) Advance(ctx context.Context) error {
	result := w.Validate(ctx)
	if !result.Valid() {
		return &domain.ValidationError{Step: w.Current().Name, Result: result}
	}
	if w.index < len(w.steps) {
		w.emitStep(ctx, domain.EventStepLeave)
		w.index++
		w.emitStep(ctx, domain.EventStepEnter)
	}
	return nil
}

// Retreat moves back one step without validating or clearing anything.
func (w *Wizard) Retreat(ctx context.Context) {
	if w.index <= 1 {
		return
	}
	w.emitStep(ctx, domain.EventStepLeave)
	w.index--
	w.emitStep(ctx, domain.EventStepEnter)
}

// Submit re-validates the last step and hands a snapshot of the state to fn.
// Only one submission may be in flight; the outcome is recorded only if ctx is still
// active when fn returns, so a torn-down caller never receives a late update.
func (w *Wizard) Submit(ctx context.Context, fn SubmitFunc) (domain.Outcome, error) {
	if w.index != len(w.steps) {
		return domain.Outcome{}, domain.ErrNotTerminalStep
	}
	if !w.inFlight.CompareAndSwap(false, true) {
		return domain.Outcome{}, domain.ErrSubmissionInFlight
	}
	defer w.inFlight.Store(false)

	if result := w.Validate(ctx); !result.Valid() {
		return domain.Outcome{}, &domain.ValidationError{Step: w.Current().Name, Result: result}
	}
	sent := w.state.Snapshot()

	start := w.now()
	if w.hooks.OnSubmit != nil {
		w.hooks.OnSubmit(ctx, &domain.OutcomeEvent{EventBase: w.base(domain.EventSubmit), Outcome: domain.Pending()})
	}
	w.logger.Debug("Submitting")

	outcome, err := fn(ctx, sent)
	if ctxErr := ctx.Err(); ctxErr != nil {
		w.logger.Debug("Submission result discarded", "err", ctxErr)
		return domain.Outcome{}, ctxErr
	}
	if err != nil {
		outcome = domain.Failed(err.Error())
	}
	if !outcome.Terminal() {
		outcome = domain.Failed("submission returned no result")
	}
	w.mu.Lock()
	w.outcome = outcome
	w.mu.Unlock()

	if w.hooks.OnOutcome != nil {
		w.hooks.OnOutcome(ctx, &domain.OutcomeEvent{
			EventBase: w.base(domain.EventOutcome),
			Outcome:   outcome,
			Duration:  w.now().Sub(start),
		})
	}
	if outcome.OK() {
		w.logger.Info("Submission succeeded")
	} else {
		w.logger.Info("Submission failed", "message", outcome.Message)
	}
	return outcome, nil
}

func (w *Wizard) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: w.now(), Type: t, Flow: w.name}
}

func (w *Wizard) emitStep(ctx context.Context, t domain.EventType) {
	hook := w.hooks.OnStepEnter
	if t == domain.EventStepLeave {
		hook = w.hooks.OnStepLeave
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.StepEvent{EventBase: w.base(t), Index: w.index, Step: w.Current().Name})
}
