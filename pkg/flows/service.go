package flows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/aretw0/assist/internal/logging"
	"github.com/aretw0/assist/pkg/client"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/gate"
	"github.com/aretw0/assist/pkg/ports"
	"github.com/aretw0/assist/pkg/wizard"
)

// API is the subset of the remote client the flows submit through.
type API interface {
	Register(ctx context.Context, r client.Registration) (any, error)
	Login(ctx context.Context, creds client.Credentials) (*client.LoginResult, error)
	UploadCreatorProfile(ctx context.Context, p client.CreatorProfile) (string, error)
	CreateNGO(ctx context.Context, p client.NGOProfile) (any, error)
	ListNGOs(ctx context.Context) ([]domain.NGO, error)
	CreateHelpRequest(ctx context.Context, r client.HelpRequest) (any, error)
}

var _ API = (*client.Client)(nil)

// Service wires the concrete flows to a client and a session context.
type Service struct {
	api      API
	sessions ports.SessionContext
	catalog  Catalog
	inbox    *gate.Inbox
	hooks    domain.LifecycleHooks
	gateObs  func(string, gate.Decision)
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithCatalog replaces the built-in rule tables.
func WithCatalog(c Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithInbox shares the deferred intent holder with other components.
func WithInbox(inbox *gate.Inbox) Option {
	return func(s *Service) {
		s.inbox = inbox
	}
}

// WithLifecycleHooks attaches hooks to every wizard the service starts.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithGateObserver is notified of every gate decision.
func WithGateObserver(fn func(target string, d gate.Decision)) Option {
	return func(s *Service) {
		s.gateObs = fn
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service.
func New(api API, sessions ports.SessionContext, opts ...Option) *Service {
	s := &Service{
		api:      api,
		sessions: sessions,
		catalog:  DefaultCatalog(),
		inbox:    gate.NewInbox(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inbox returns the deferred intent holder.
func (s *Service) Inbox() *gate.Inbox { return s.inbox }

// Sessions returns the session context.
func (s *Service) Sessions() ports.SessionContext { return s.sessions }

// Start opens a wizard for a flow. Registration starts with the help seeker role selected.
func (s *Service) Start(flow string) (*wizard.Wizard, error) {
	steps, ok := s.catalog[flow]
	if !ok {
		return nil, fmt.Errorf("unknown flow %q", flow)
	}
	w, err := wizard.New(steps,
		wizard.WithName(flow),
		wizard.WithLogger(s.logger),
		wizard.WithLifecycleHooks(s.hooks),
	)
	if err != nil {
		return nil, err
	}
	seedDefaults(flow, w)
	return w, nil
}

// StartNGOProfile opens the NGO form with the creator id carried from the profile flow.
func (s *Service) StartNGOProfile(createdBy string) (*wizard.Wizard, error) {
	w, err := s.Start(FlowNGOProfile)
	if err != nil {
		return nil, err
	}
	w.Set("createdBy", createdBy)
	return w, nil
}

func seedDefaults(flow string, w *wizard.Wizard) {
	if flow == FlowRegistration {
		w.Set("role", domain.RoleHelpSeeker)
	}
}

// Submit sends a wizard's state through the endpoint of its flow.
// Validation, step position and in-flight checks are the wizard's; this adds the request.
func (s *Service) Submit(ctx context.Context, w *wizard.Wizard) (domain.Outcome, error) {
	var fn wizard.SubmitFunc
	switch w.Name() {
	case FlowRegistration:
		fn = s.register
	case FlowSignIn:
		fn = s.signIn
	case FlowCreatorProfile:
		fn = s.creatorProfile
	case FlowNGOProfile:
		fn = s.ngoProfile
	case FlowHelpRequest:
		fn = s.helpRequest
	default:
		return domain.Outcome{}, fmt.Errorf("unknown flow %q", w.Name())
	}

	outcome, err := w.Submit(ctx, fn)
	if err != nil {
		return outcome, err
	}
	if outcome.OK() && resetsOnSuccess(w.Name()) {
		w.State().Reset()
		seedDefaults(w.Name(), w)
	}
	return outcome, nil
}

func resetsOnSuccess(flow string) bool {
	switch flow {
	case FlowRegistration, FlowSignIn, FlowHelpRequest:
		return true
	}
	return false
}

func (s *Service) register(ctx context.Context, st *domain.FormState) (domain.Outcome, error) {
	payload, err := s.api.Register(ctx, client.Registration{
		FirstName: st.Text("firstName"),
		LastName:  st.Text("lastName"),
		Email:     st.Text("email"),
		Password:  st.Text("password"),
		Role:      st.Text("role"),
	})
	return client.OutcomeOf(payload, err), nil
}

// signIn persists token, user id, role and user object on success.
func (s *Service) signIn(ctx context.Context, st *domain.FormState) (domain.Outcome, error) {
	res, err := s.api.Login(ctx, client.Credentials{
		Email:    st.Text("email"),
		Password: st.Text("password"),
	})
	if err != nil {
		return client.OutcomeOf(nil, err), nil
	}
	sess, err := s.sessions.SetSession(ctx, res.Session())
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("failed to store session: %w", err)
	}
	s.logger.Info("Signed in", "user_id", sess.UserID, "role", sess.UserRole)
	return domain.Succeeded(sess), nil
}

func (s *Service) creatorProfile(ctx context.Context, st *domain.FormState) (domain.Outcome, error) {
	id, err := s.api.UploadCreatorProfile(ctx, client.CreatorProfile{
		FirstName:       st.Text("firstName"),
		LastName:        st.Text("lastName"),
		Email:           st.Text("email"),
		PhoneNumber:     st.Text("phoneNumber"),
		Address:         st.Text("address"),
		Password:        st.Text("password"),
		ProfilePic:      st.File("profilePic"),
		VerifyDocuments: st.File("verifyDocuments"),
	})
	if err != nil {
		return client.OutcomeOf(nil, err), nil
	}
	return domain.Succeeded(id), nil
}

func (s *Service) ngoProfile(ctx context.Context, st *domain.FormState) (domain.Outcome, error) {
	payload, err := s.api.CreateNGO(ctx, client.NGOProfile{
		Title:       st.Text("title"),
		Description: st.Text("description"),
		Image:       st.File("image"),
		CreatedBy:   st.Text("createdBy"),
	})
	return client.OutcomeOf(payload, err), nil
}

// helpRequest reads the user id at submission time, not when the form was opened.
func (s *Service) helpRequest(ctx context.Context, st *domain.FormState) (domain.Outcome, error) {
	sess, err := s.sessions.GetSession(ctx)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("failed to read session: %w", err)
	}
	if sess.UserID == "" {
		return domain.Failed("User authentication required"), nil
	}
	payload, err := s.api.CreateHelpRequest(ctx, client.HelpRequest{
		NeedDescription: st.Text("needDescription"),
		HelpType:        st.Text("helpType"),
		Location:        st.Text("location"),
		UserID:          sess.UserID,
		Documents:       st.File("documents"),
	})
	return client.OutcomeOf(payload, err), nil
}

// Apply is the "apply for help" action of a program card. Without a token the intent is
// parked in the inbox and the decision redirects to the auth entry.
func (s *Service) Apply(ctx context.Context, ngo domain.NGO) (gate.Decision, error) {
	g := gate.New(s.sessions, gate.ApplyPolicy,
		gate.WithInbox(s.inbox),
		gate.WithLogger(s.logger),
		gate.WithObserver(s.gateObs),
	)
	return g.Enter(ctx, gate.RouteHelpForm, ngo)
}

// StartHelpRequest opens the help form. It returns domain.ErrNotAuthenticated together with
// the redirect decision when no user id is stored.
func (s *Service) StartHelpRequest(ctx context.Context) (*wizard.Wizard, gate.Decision, error) {
	g := gate.New(s.sessions, gate.HelpRequestPolicy,
		gate.WithLogger(s.logger),
		gate.WithObserver(s.gateObs),
	)
	d, err := g.Enter(ctx, gate.RouteHelpForm, nil)
	if err != nil {
		return nil, d, err
	}
	if !d.Allowed {
		return nil, d, domain.ErrNotAuthenticated
	}
	w, err := s.Start(FlowHelpRequest)
	return w, d, err
}

// LoadNGOs fetches the program cards.
func (s *Service) LoadNGOs(ctx context.Context) ([]domain.NGO, error) {
	ngos, err := s.api.ListNGOs(ctx)
	if err != nil {
		s.logger.Warn("Failed to load NGOs", "err", err)
		return nil, err
	}
	return ngos, nil
}

// ResumeIntent hands back the parked intent once the session satisfies the apply gate.
// While signed out the intent stays parked.
func (s *Service) ResumeIntent(ctx context.Context) (domain.DeferredIntent, error) {
	intent, ok := s.inbox.Peek()
	if !ok {
		return domain.DeferredIntent{}, domain.ErrNoIntent
	}
	sess, err := s.sessions.GetSession(ctx)
	if err != nil {
		return domain.DeferredIntent{}, fmt.Errorf("failed to read session: %w", err)
	}
	if !gate.ApplyPolicy.Satisfied(sess) {
		return domain.DeferredIntent{}, domain.ErrNotAuthenticated
	}
	intent, ok = s.inbox.Take()
	if !ok {
		return domain.DeferredIntent{}, domain.ErrNoIntent
	}
	s.logger.Debug("Resuming deferred intent", "target", intent.Target)
	return intent, nil
}

// NextRoute is where the UI goes after a flow's outcome. Failures stay on the form.
func NextRoute(flow string, o domain.Outcome) string {
	if !o.OK() {
		return ""
	}
	switch flow {
	case FlowRegistration:
		return gate.RouteLogin
	case FlowCreatorProfile:
		id, _ := o.Payload.(string)
		return gate.RouteCreateNGO + "?userId=" + url.QueryEscape(id)
	default:
		return gate.RouteHome
	}
}

// IsRedirect reports whether err means the caller must authenticate first.
func IsRedirect(err error) bool {
	return errors.Is(err, domain.ErrNotAuthenticated)
}
