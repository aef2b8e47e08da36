package ports

import (
	"context"

	"github.com/aretw0/assist/pkg/domain"
)

// SessionStore persists the session of a named profile.
// A profile is the CLI's equivalent of a browser: one signed-in identity per profile.
type SessionStore interface {
	// Save replaces the session stored under profile.
	Save(ctx context.Context, profile string, session *domain.Session) error

	// Load retrieves the session of a profile.
	// Returns domain.ErrSessionNotFound if nothing is stored.
	Load(ctx context.Context, profile string) (*domain.Session, error)

	// Delete removes the session. Deleting a missing profile is not an error.
	Delete(ctx context.Context, profile string) error

	// List returns the profiles that currently hold a session.
	List(ctx context.Context) ([]string, error)
}

// SessionContext is the single read/write API flows use for the signed-in session.
// Implementations re-read the backing store on every call.
type SessionContext interface {
	// GetSession returns the current session; the zero Session means signed out.
	GetSession(ctx context.Context) (domain.Session, error)

	// SetSession merges the non-zero fields of patch into the session and returns the result.
	SetSession(ctx context.Context, patch domain.Session) (domain.Session, error)

	// ClearSession signs out.
	ClearSession(ctx context.Context) error
}
