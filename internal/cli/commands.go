package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aretw0/assist/internal/presentation/prompt"
	"github.com/aretw0/assist/pkg/client"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/flows"
	"github.com/aretw0/assist/pkg/gate"
	"github.com/aretw0/assist/pkg/upload"
	"github.com/aretw0/assist/pkg/wizard"
)

// ErrReported marks a failure that has already been shown to the user.
var ErrReported = errors.New("failure already reported")

// Input carries values given on the command line. Files maps a slot to a path.
type Input struct {
	Values map[string]string
	Files  map[string]string
}

// Register creates an account. The confirmation defaults to the password when only one was given.
func (a *App) Register(ctx context.Context, in Input) error {
	w, err := a.Service.Start(flows.FlowRegistration)
	if err != nil {
		return err
	}
	if in.Values != nil && in.Values["confirmPassword"] == "" {
		in.Values["confirmPassword"] = in.Values["password"]
	}
	out, err := a.submit(ctx, w, in, "Registration successful! Please login.")
	if err != nil {
		return err
	}
	a.next(flows.NextRoute(flows.FlowRegistration, out))
	return nil
}

// Login signs in and, if an apply intent was parked during this run, resumes it.
func (a *App) Login(ctx context.Context, in Input) error {
	w, err := a.Service.Start(flows.FlowSignIn)
	if err != nil {
		return err
	}
	if _, err := a.submit(ctx, w, in, "Login successful!"); err != nil {
		return err
	}

	intent, err := a.Service.ResumeIntent(ctx)
	switch {
	case errors.Is(err, domain.ErrNoIntent):
		return nil
	case err != nil:
		return err
	}
	ngo, _ := intent.Data.(domain.NGO)
	return a.HelpRequest(ctx, Input{}, &ngo)
}

// NGOs prints the program list.
func (a *App) NGOs(ctx context.Context) error {
	res, err := a.Service.Startup(ctx)
	if err != nil {
		a.notify.Error(client.OutcomeOf(nil, err).Message)
		return fmt.Errorf("%w: %w", ErrReported, err)
	}
	text, err := a.render.NGOs(res.NGOs)
	if err != nil {
		return err
	}
	a.printf("%s", text)
	return nil
}

// Apply is the "apply for help" action on one program.
// Signed out, the intent is parked; on a terminal the user signs in and the help form follows.
func (a *App) Apply(ctx context.Context, ngoID string, in Input) error {
	ngos, err := a.Service.LoadNGOs(ctx)
	if err != nil {
		a.notify.Error(client.OutcomeOf(nil, err).Message)
		return fmt.Errorf("%w: %w", ErrReported, err)
	}
	var ngo *domain.NGO
	for i := range ngos {
		if ngos[i].ID == ngoID {
			ngo = &ngos[i]
			break
		}
	}
	if ngo == nil {
		a.notify.Error(fmt.Sprintf("No program with id %s", ngoID))
		return ErrReported
	}

	d, err := a.Service.Apply(ctx, *ngo)
	if err != nil {
		return err
	}
	if d.Allowed {
		return a.HelpRequest(ctx, in, ngo)
	}
	a.notify.Info(d.Notice)
	if !a.Interactive() {
		a.next(d.Redirect)
		return fmt.Errorf("%w: %w", ErrReported, domain.ErrNotAuthenticated)
	}
	return a.Login(ctx, Input{})
}

// HelpRequest files a help request for the signed-in user.
func (a *App) HelpRequest(ctx context.Context, in Input, ngo *domain.NGO) error {
	w, d, err := a.Service.StartHelpRequest(ctx)
	if flows.IsRedirect(err) {
		a.notify.Info(d.Notice)
		a.next(d.Redirect)
		return fmt.Errorf("%w: %w", ErrReported, err)
	}
	if err != nil {
		return err
	}
	if ngo != nil && ngo.Title != "" {
		a.printf("Applying to %s\n", ngo.Title)
	}
	_, err = a.submit(ctx, w, in, "Help request submitted successfully!")
	return err
}

// CreatorProfile runs the two-step creator wizard. On a terminal it continues into the NGO form.
func (a *App) CreatorProfile(ctx context.Context, in Input) error {
	w, err := a.Service.Start(flows.FlowCreatorProfile)
	if err != nil {
		return err
	}
	out, err := a.submit(ctx, w, in, "Profile created successfully!")
	if err != nil {
		return err
	}
	id, _ := out.Payload.(string)
	if a.Interactive() {
		return a.CreateNGO(ctx, Input{Values: map[string]string{"createdBy": id}})
	}
	a.next(flows.NextRoute(flows.FlowCreatorProfile, out))
	return nil
}

// CreateNGO publishes a program for a creator id.
func (a *App) CreateNGO(ctx context.Context, in Input) error {
	w, err := a.Service.StartNGOProfile(in.Values["createdBy"])
	if err != nil {
		return err
	}
	_, err = a.submit(ctx, w, in, "NGO created successfully!")
	return err
}

// ShowSession prints who is signed in under the active profile.
func (a *App) ShowSession(ctx context.Context) error {
	s, err := a.Profile.GetSession(ctx)
	if err != nil {
		return err
	}
	text, err := a.render.Session(a.Profile.Name(), s)
	if err != nil {
		return err
	}
	a.printf("%s", text)
	return nil
}

// ListSessions prints the stored profiles.
func (a *App) ListSessions(ctx context.Context) error {
	profiles, err := a.Sessions.List(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		a.printf("No stored sessions.\n")
		return nil
	}
	for _, p := range profiles {
		a.printf("- %s\n", p)
	}
	return nil
}

// ClearSession signs the active profile out.
func (a *App) ClearSession(ctx context.Context) error {
	if err := a.Profile.ClearSession(ctx); err != nil {
		return err
	}
	a.notify.Success("Signed out of " + a.Profile.Name())
	return nil
}

// submit fills the wizard and sends it, turning the outcome into a notice.
func (a *App) submit(ctx context.Context, w *wizard.Wizard, in Input, success string) (domain.Outcome, error) {
	if err := a.fill(ctx, w, in); err != nil {
		return domain.Outcome{}, err
	}
	out, err := a.Service.Submit(ctx, w)
	if err != nil {
		return out, err
	}
	if !out.OK() {
		a.notify.Error(out.Message)
		return out, ErrReported
	}
	a.notify.Success(success)
	return out, nil
}

// fill applies command line values, then prompts on a terminal or validates each step otherwise.
func (a *App) fill(ctx context.Context, w *wizard.Wizard, in Input) error {
	for field, v := range in.Values {
		if v != "" {
			w.Set(field, v)
		}
	}
	for field, path := range in.Files {
		if path == "" {
			continue
		}
		f, err := upload.FromPath(path)
		if err == nil {
			err = w.Attach(field, f, flows.FilePolicies[field])
		}
		if err != nil {
			a.notify.Error(upload.Reason(err))
			if !a.Interactive() {
				return fmt.Errorf("%w: %w", ErrReported, err)
			}
		}
	}

	if a.driver != nil {
		return a.driver.Fill(ctx, w)
	}
	for {
		last := w.Step() == w.Total()
		err := w.Advance(ctx)
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Result.Fields() {
				a.notify.Error(verr.Result[f])
			}
			return fmt.Errorf("%w: %w", ErrReported, err)
		}
		if err != nil || last {
			return err
		}
	}
}

// next prints the command that continues from a UI route.
func (a *App) next(route string) {
	if route == "" {
		return
	}
	a.printf("Next: %s\n", CommandFor(route))
}

// CommandFor maps a UI route to the command that does the same thing.
func CommandFor(route string) string {
	u, err := url.Parse(route)
	if err != nil {
		return "assist ngos"
	}
	switch u.Path {
	case gate.RouteLogin:
		return "assist login"
	case gate.RouteRegister:
		return "assist register"
	case gate.RouteHelpForm:
		return "assist help-request"
	case gate.RouteCreateNGO:
		return "assist create-ngo --created-by " + u.Query().Get("userId")
	default:
		return "assist ngos"
	}
}

// IsInterrupted reports whether err means the user or the OS stopped the command.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, prompt.ErrAborted)
}

// Banner prints the application banner unless output is plain.
func (a *App) Banner() {
	a.notify.Banner()
}
