package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// RedactableFields are the user profile fields the redaction middleware understands.
var RedactableFields = []string{"firstName", "lastName", "email"}

type redactionMiddleware struct {
	next   ports.SessionStore
	fields map[string]bool
}

// NewRedactionMiddleware masks the named userData fields before the session is stored.
// The token, user id and role are never touched since the gate and help requests depend on them.
func NewRedactionMiddleware(fields []string) (Middleware, error) {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		known := false
		for _, r := range RedactableFields {
			if f == r {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("cannot redact unknown field %q", f)
		}
		set[f] = true
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactionMiddleware{next: next, fields: set}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, profile string, session *domain.Session) error {
	cloned := session.Clone()
	if u := cloned.UserData; u != nil {
		if m.fields["firstName"] && u.FirstName != "" {
			u.FirstName = Mask
		}
		if m.fields["lastName"] && u.LastName != "" {
			u.LastName = Mask
		}
		if m.fields["email"] && u.Email != "" {
			u.Email = Mask
		}
	}
	return m.next.Save(ctx, profile, &cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, profile string) (*domain.Session, error) {
	return m.next.Load(ctx, profile)
}

func (m *redactionMiddleware) Delete(ctx context.Context, profile string) error {
	return m.next.Delete(ctx, profile)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
