package domain

import "errors"

// ErrSessionNotFound is returned when a profile has no persisted session.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotAuthenticated is returned when a protected flow is entered without a token.
var ErrNotAuthenticated = errors.New("authentication required")

// ErrFileRejected is returned when a file fails the extension, type or size checks.
var ErrFileRejected = errors.New("file rejected")

// ErrSubmissionInFlight is returned when a submission is attempted while another is pending.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// ErrNotTerminalStep is returned when Submit is called before the last step.
var ErrNotTerminalStep = errors.New("submit is only allowed from the last step")

// ErrNoIntent is returned when there is no deferred intent to resume.
var ErrNoIntent = errors.New("no deferred intent")
