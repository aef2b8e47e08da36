package flows

import (
	"context"
	"errors"

	"github.com/aretw0/assist/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// StartupResult is what the landing screen needs.
type StartupResult struct {
	NGOs   []domain.NGO
	Intent *domain.DeferredIntent
}

// Startup loads the program list and resumes any parked intent concurrently.
// The two tasks are independent: a failed list still returns the resumed intent
// alongside the list error.
func (s *Service) Startup(ctx context.Context) (StartupResult, error) {
	var res StartupResult
	var g errgroup.Group

	g.Go(func() error {
		ngos, err := s.LoadNGOs(ctx)
		if err != nil {
			return err
		}
		res.NGOs = ngos
		return nil
	})
	g.Go(func() error {
		intent, err := s.ResumeIntent(ctx)
		switch {
		case err == nil:
			res.Intent = &intent
		case errors.Is(err, domain.ErrNoIntent), errors.Is(err, domain.ErrNotAuthenticated):
		default:
			return err
		}
		return nil
	})

	err := g.Wait()
	return res, err
}
