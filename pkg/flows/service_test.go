package flows_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/aretw0/assist/pkg/adapters/memory"
	"github.com/aretw0/assist/pkg/apitest"
	"github.com/aretw0/assist/pkg/client"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/flows"
	"github.com/aretw0/assist/pkg/gate"
	"github.com/aretw0/assist/pkg/session"
	"github.com/aretw0/assist/pkg/upload"
	"github.com/aretw0/assist/pkg/validation"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv      *apitest.Server
	svc      *flows.Service
	sessions *session.Profile
}

func newFixture(t *testing.T, opts ...flows.Option) *fixture {
	t.Helper()
	srv, err := apitest.New()
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	logger := slogt.New(t)
	sessions := session.NewManager(memory.NewStore()).Profile("default")
	api := client.New(srv.URL, client.WithLogger(logger))
	opts = append([]flows.Option{flows.WithLogger(logger)}, opts...)
	return &fixture{srv: srv, svc: flows.New(api, sessions, opts...), sessions: sessions}
}

func (f *fixture) signIn(t *testing.T) domain.Session {
	t.Helper()
	f.srv.AddUser(domain.User{FirstName: "Ada", Email: "ada@example.org", Role: domain.RoleHelpSeeker}, "secret1")
	w, err := f.svc.Start(flows.FlowSignIn)
	require.NoError(t, err)
	w.Set("email", "ada@example.org")
	w.Set("password", "secret1")
	out, err := f.svc.Submit(context.Background(), w)
	require.NoError(t, err)
	require.True(t, out.OK(), out.Message)
	return out.Payload.(domain.Session)
}

func TestCatalog_WhitespacePasswordIsFilled(t *testing.T) {
	f := newFixture(t)
	fields := map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.org",
		"phoneNumber": "555", "password": "      ", "confirmPassword": "      ",
	}

	for _, flow := range []string{flows.FlowRegistration, flows.FlowSignIn, flows.FlowCreatorProfile} {
		t.Run(flow, func(t *testing.T) {
			w, err := f.svc.Start(flow)
			require.NoError(t, err)
			for field, v := range fields {
				if w.State().Has(field) {
					w.Set(field, v)
				}
			}

			result := w.Validate(context.Background())

			assert.True(t, result.Valid(), "unexpected errors: %v", result)
		})
	}
}

func TestRegistration_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser(domain.User{Email: "taken@example.org"}, "pw")
	ctx := context.Background()

	w, err := f.svc.Start(flows.FlowRegistration)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHelpSeeker, w.State().Text("role"))
	w.Set("firstName", "Ada")
	w.Set("lastName", "Lovelace")
	w.Set("email", "taken@example.org")
	w.Set("password", "secret1")
	w.Set("confirmPassword", "secret1")

	out, err := f.svc.Submit(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, domain.Failed("Email already exists"), out)
	assert.Equal(t, "taken@example.org", w.State().Text("email"), "failed submissions keep the input")
	assert.Empty(t, flows.NextRoute(flows.FlowRegistration, out))

	w.Set("email", "fresh@example.org")
	out, err = f.svc.Submit(ctx, w)
	require.NoError(t, err)
	assert.True(t, out.OK())
	assert.Equal(t, gate.RouteLogin, flows.NextRoute(flows.FlowRegistration, out))
	assert.Empty(t, w.State().Text("email"), "successful registration resets the form")
	assert.Equal(t, domain.RoleHelpSeeker, w.State().Text("role"))
}

func TestRegistration_InvalidFormNeverReachesServer(t *testing.T) {
	f := newFixture(t)

	w, err := f.svc.Start(flows.FlowRegistration)
	require.NoError(t, err)
	w.Set("email", "bad")

	_, err = f.svc.Submit(context.Background(), w)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email is invalid", verr.Result["email"])
	assert.Empty(t, f.srv.Received("register"))
}

func TestSignIn_StoresSession(t *testing.T) {
	f := newFixture(t)

	sess := f.signIn(t)

	stored, err := f.sessions.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sess, stored)
	assert.True(t, stored.Authenticated())
	assert.Equal(t, domain.RoleHelpSeeker, stored.UserRole)
	assert.Equal(t, "Ada", stored.UserData.FirstName)
}

func TestSignIn_FailureLeavesSessionAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.svc.Start(flows.FlowSignIn)
	require.NoError(t, err)
	w.Set("email", "nobody@example.org")
	w.Set("password", "x")

	out, err := f.svc.Submit(ctx, w)
	require.NoError(t, err)
	assert.False(t, out.OK())

	stored, err := f.sessions.GetSession(ctx)
	require.NoError(t, err)
	assert.False(t, stored.Authenticated())
}

func TestCreatorProfile_CarriesIDIntoNGO(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.svc.Start(flows.FlowCreatorProfile)
	require.NoError(t, err)
	w.Set("firstName", "Grace")
	w.Set("lastName", "Hopper")
	w.Set("email", "grace@example.org")
	w.Set("phoneNumber", "555-0100")
	w.Set("password", "pw")
	require.NoError(t, w.Advance(ctx))

	w.Set("address", "1 Main St")
	require.NoError(t, w.Attach("profilePic", upload.FromBytes("me.png", "", []byte("png")), upload.ImagePolicy))
	require.NoError(t, w.Attach("verifyDocuments", upload.FromBytes("id.pdf", "", []byte("%PDF")), upload.VerificationPolicy))

	out, err := f.svc.Submit(ctx, w)
	require.NoError(t, err)
	require.True(t, out.OK(), out.Message)
	id := out.Payload.(string)
	assert.Equal(t, gate.RouteCreateNGO+"?userId="+id, flows.NextRoute(flows.FlowCreatorProfile, out))

	ngo, err := f.svc.StartNGOProfile(id)
	require.NoError(t, err)
	ngo.Set("title", "Food Bank")
	ngo.Set("description", "Meals for everyone")
	require.NoError(t, ngo.Attach("image", upload.FromBytes("logo.gif", "", []byte("gif")), upload.ImagePolicy))

	out, err = f.svc.Submit(ctx, ngo)
	require.NoError(t, err)
	require.True(t, out.OK(), out.Message)

	list, err := f.svc.LoadNGOs(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].CreatedBy)
}

func TestNGOProfile_MissingCreator(t *testing.T) {
	f := newFixture(t)

	w, err := f.svc.StartNGOProfile("")
	require.NoError(t, err)
	w.Set("title", "t")
	w.Set("description", "d")
	require.NoError(t, w.Attach("image", upload.FromBytes("logo.png", "", nil), upload.ImagePolicy))

	_, err = f.svc.Submit(context.Background(), w)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "User ID is missing", verr.Result["createdBy"])
}

func TestHelpRequest_RequiresUserID(t *testing.T) {
	f := newFixture(t)

	w, d, err := f.svc.StartHelpRequest(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.True(t, flows.IsRedirect(err))
	assert.Nil(t, w)
	assert.Equal(t, gate.RouteLogin, d.Redirect)
	assert.Equal(t, "Please login to submit a help request", d.Notice)
}

func TestHelpRequest_SubmitsWithSessionUser(t *testing.T) {
	f := newFixture(t)
	sess := f.signIn(t)
	ctx := context.Background()

	w, d, err := f.svc.StartHelpRequest(ctx)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	w.Set("needDescription", "Insulin for my father")
	w.Set("location", "Satellite Town")
	_, err = f.svc.Submit(ctx, w)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please select a help type", verr.Result["helpType"])

	w.Set("helpType", "Medical Assistance")
	require.NoError(t, w.Attach("documents", upload.FromBytes("rx.pdf", "application/pdf", []byte("%PDF")), upload.HelpDocumentPolicy))
	out, err := f.svc.Submit(ctx, w)
	require.NoError(t, err)
	require.True(t, out.OK(), out.Message)

	got := f.srv.Received("createRequest")
	require.Len(t, got, 1)
	assert.Equal(t, sess.UserID, got[0].Fields["userId"])
	assert.Equal(t, "rx.pdf", got[0].Files["documents"].Name)
	assert.Empty(t, w.State().Text("needDescription"), "form resets after success")
}

func TestHelpRequest_SignedOutBeforeSubmit(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()

	w, _, err := f.svc.StartHelpRequest(ctx)
	require.NoError(t, err)
	w.Set("needDescription", "n")
	w.Set("helpType", "Food Support")
	w.Set("location", "l")
	require.NoError(t, f.sessions.ClearSession(ctx))

	out, err := f.svc.Submit(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, domain.Failed("User authentication required"), out)
	assert.Empty(t, f.srv.Received("createRequest"))
}

func TestApply_GateAndResume(t *testing.T) {
	var decisions []gate.Decision
	f := newFixture(t, flows.WithGateObserver(func(_ string, d gate.Decision) {
		decisions = append(decisions, d)
	}))
	ngo := f.srv.AddNGO(domain.NGO{Title: "Food Bank"})
	ctx := context.Background()

	d, err := f.svc.Apply(ctx, ngo)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, gate.RouteRegister, d.Redirect)

	_, err = f.svc.ResumeIntent(ctx)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated, "intent stays parked while signed out")

	f.signIn(t)

	intent, err := f.svc.ResumeIntent(ctx)
	require.NoError(t, err)
	assert.Equal(t, gate.RouteHelpForm, intent.Target)
	assert.Equal(t, ngo, intent.Data)

	_, err = f.svc.ResumeIntent(ctx)
	assert.ErrorIs(t, err, domain.ErrNoIntent, "intent is consumed once")

	d, err = f.svc.Apply(ctx, ngo)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Len(t, decisions, 2)
}

func TestStartup_TasksAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.srv.AddNGO(domain.NGO{Title: "Shelter"})

	_, err := f.svc.Apply(ctx, domain.NGO{ID: "n1"})
	require.NoError(t, err)
	f.signIn(t)
	f.srv.Fail("getAllNgos", http.StatusInternalServerError, "")

	res, err := f.svc.Startup(ctx)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to fetch NGOs", apiErr.Message)
	require.NotNil(t, res.Intent, "list failure must not lose the intent")
	assert.Equal(t, gate.RouteHelpForm, res.Intent.Target)

	f.srv.Recover("getAllNgos")
	res, err = f.svc.Startup(ctx)
	require.NoError(t, err)
	assert.Len(t, res.NGOs, 1)
	assert.Nil(t, res.Intent)
}

func TestCatalog_Override(t *testing.T) {
	c := flows.DefaultCatalog()

	err := c.Override(flows.FlowSignIn, "credentials", []validation.Rule{
		validation.Required("email", "Tell us your email"),
	})
	require.NoError(t, err)

	f := newFixture(t, flows.WithCatalog(c))
	w, err := f.svc.Start(flows.FlowSignIn)
	require.NoError(t, err)

	assert.Equal(t, "Tell us your email", w.Validate(context.Background())["email"])
	assert.Error(t, c.Override("nope", "x", nil))
	assert.Error(t, c.Override(flows.FlowSignIn, "missing", nil))
	assert.Error(t, c.Override(flows.FlowSignIn, "credentials", []validation.Rule{{Field: "x", Kind: "bogus"}}))
	assert.Contains(t, flows.DefaultCatalog().Flows(), flows.FlowHelpRequest)
}
