/*
Package domain contains the core models of the assistance workflow.

It defines the values that flow through a submission: the form being filled, the
validation verdict computed from it, the outcome of sending it, and the persisted
session that gates protected flows. This package is kept pure and free of I/O,
following Hexagonal Architecture principles.

# Key Entities

  - FormState: field name to value (text or uploaded file) for the active flow.
  - ValidationResult: field name to error message; empty means valid.
  - Outcome: Pending, Success(payload) or Failure(message) for one submission.
  - Session: the token and user fields written on sign-in.
  - DeferredIntent: a destination plus data carried across an authentication redirect.
*/
package domain
