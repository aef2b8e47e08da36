package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/assist/internal/cli"
	"github.com/aretw0/assist/pkg/apitest"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scripted map[string][]string

func (s scripted) next(label string) (string, error) {
	q := s[label]
	if len(q) == 0 {
		return "", fmt.Errorf("unexpected prompt %q", label)
	}
	s[label] = q[1:]
	return q[0], nil
}

func (s scripted) Input(_ context.Context, m, _ string) (string, error) { return s.next(m) }
func (s scripted) Password(_ context.Context, m string) (string, error) { return s.next(m) }
func (s scripted) Select(_ context.Context, m string, _ []string, _ string) (string, error) {
	return s.next(m)
}

type harness struct {
	srv *apitest.Server
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv, err := apitest.New()
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, dir: t.TempDir()}
}

func (h *harness) app(t *testing.T, out *bytes.Buffer, mutate ...func(*cli.Options)) *cli.App {
	t.Helper()
	opts := cli.Options{Dir: h.dir, BaseURL: h.srv.URL, Out: out, Plain: true}
	for _, m := range mutate {
		m(&opts)
	}
	a, err := cli.NewApp(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func (h *harness) writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(h.dir, ".assist", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func creds() cli.Input {
	return cli.Input{Values: map[string]string{"email": "ada@example.org", "password": "secret1"}}
}

func TestRegisterLoginHelpAcrossRuns(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var out bytes.Buffer
	err := h.app(t, &out).Register(ctx, cli.Input{Values: map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.org", "password": "secret1",
	}})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Registration successful! Please login.")
	assert.Contains(t, out.String(), "Next: assist login")

	out.Reset()
	require.NoError(t, h.app(t, &out).Login(ctx, creds()))
	assert.Contains(t, out.String(), "✓ Login successful!")

	out.Reset()
	err = h.app(t, &out).HelpRequest(ctx, cli.Input{Values: map[string]string{
		"needDescription": "Insulin", "helpType": "Medical Assistance", "location": "Satellite Town",
	}}, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Help request submitted successfully!")

	got := h.srv.Received("createRequest")
	require.Len(t, got, 1)
	assert.Equal(t, "user-1", got[0].Fields["userId"])
}

func TestRegister_ValidationStaysLocal(t *testing.T) {
	h := newHarness(t)
	var out bytes.Buffer

	err := h.app(t, &out).Register(context.Background(), cli.Input{Values: map[string]string{
		"firstName": "Ada", "lastName": "L", "email": "nope", "password": "123",
	}})

	assert.ErrorIs(t, err, cli.ErrReported)
	assert.Contains(t, out.String(), "✗ Email is invalid")
	assert.Contains(t, out.String(), "✗ Password must be at least 6 characters")
	assert.Empty(t, h.srv.Received("register"))
}

func TestApply_SignedOutWithoutTerminal(t *testing.T) {
	h := newHarness(t)
	ngo := h.srv.AddNGO(domain.NGO{Title: "Food Bank"})
	var out bytes.Buffer

	err := h.app(t, &out).Apply(context.Background(), ngo.ID, cli.Input{})

	assert.ErrorIs(t, err, cli.ErrReported)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Contains(t, out.String(), "Please login or register to apply for help")
	assert.Contains(t, out.String(), "Next: assist register")
}

func TestApply_InteractiveLoginResumesIntent(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser(domain.User{Email: "ada@example.org"}, "secret1")
	ngo := h.srv.AddNGO(domain.NGO{Title: "Food Bank"})
	ask := scripted{
		"Email":            {"ada@example.org"},
		"Password":         {"secret1"},
		"Need description": {"Rent"},
		"Help type":        {"Financial Aid"},
		"Location":         {"Block B"},
		"Documents (path)": {""},
	}
	var out bytes.Buffer
	a := h.app(t, &out, func(o *cli.Options) { o.Asker = ask })

	require.NoError(t, a.Apply(context.Background(), ngo.ID, cli.Input{}))

	assert.Contains(t, out.String(), "Applying to Food Bank")
	assert.Contains(t, out.String(), "✓ Help request submitted successfully!")
	require.Len(t, h.srv.Received("createRequest"), 1)
	assert.Equal(t, "Financial Aid", h.srv.Received("createRequest")[0].Fields["helpType"])
}

func TestApply_UnknownProgram(t *testing.T) {
	h := newHarness(t)
	var out bytes.Buffer

	err := h.app(t, &out).Apply(context.Background(), "ngo-404", cli.Input{})

	assert.ErrorIs(t, err, cli.ErrReported)
	assert.Contains(t, out.String(), "No program with id ngo-404")
}

func TestNGOs(t *testing.T) {
	h := newHarness(t)
	h.srv.AddNGO(domain.NGO{Title: "Food Bank", Description: "Meals"})
	var out bytes.Buffer

	require.NoError(t, h.app(t, &out).NGOs(context.Background()))
	assert.Contains(t, out.String(), "Food Bank")

	h.srv.Fail("getAllNgos", http.StatusInternalServerError, "")
	out.Reset()
	err := h.app(t, &out).NGOs(context.Background())
	assert.ErrorIs(t, err, cli.ErrReported)
	assert.Contains(t, out.String(), "✗ Failed to fetch NGOs")
}

func TestCreatorProfile_PrintsNGOCommand(t *testing.T) {
	h := newHarness(t)
	pic := filepath.Join(h.dir, "me.png")
	doc := filepath.Join(h.dir, "id.pdf")
	require.NoError(t, os.WriteFile(pic, []byte("png"), 0o600))
	require.NoError(t, os.WriteFile(doc, []byte("%PDF"), 0o600))
	var out bytes.Buffer

	err := h.app(t, &out).CreatorProfile(context.Background(), cli.Input{
		Values: map[string]string{
			"firstName": "Grace", "lastName": "Hopper", "email": "grace@example.org",
			"phoneNumber": "555", "password": "pw", "address": "1 Main St",
		},
		Files: map[string]string{"profilePic": pic, "verifyDocuments": doc},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Next: assist create-ngo --created-by user-1")

	out.Reset()
	logo := filepath.Join(h.dir, "logo.exe")
	require.NoError(t, os.WriteFile(logo, []byte("x"), 0o600))
	err = h.app(t, &out).CreateNGO(context.Background(), cli.Input{
		Values: map[string]string{"createdBy": "user-1", "title": "T", "description": "D"},
		Files:  map[string]string{"image": logo},
	})
	assert.ErrorIs(t, err, cli.ErrReported)
	assert.Contains(t, out.String(), "Please upload a valid image file (PNG, JPG, GIF, JPEG)")
}

func TestSessionCommands(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser(domain.User{FirstName: "Ada", Email: "ada@example.org"}, "secret1")
	ctx := context.Background()
	var out bytes.Buffer

	a := h.app(t, &out)
	require.NoError(t, a.ListSessions(ctx))
	assert.Contains(t, out.String(), "No stored sessions.")

	require.NoError(t, a.Login(ctx, creds()))
	out.Reset()
	require.NoError(t, a.ListSessions(ctx))
	assert.Equal(t, "- default\n", out.String())

	out.Reset()
	require.NoError(t, a.ShowSession(ctx))
	assert.Contains(t, out.String(), "user-1")
	assert.NotContains(t, out.String(), "token-user-1")

	require.NoError(t, a.ClearSession(ctx))
	s, err := a.Profile.GetSession(ctx)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestEncryptedRedactedSessions(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, "session:\n  key: correct horse battery staple\n  redact: [email]\n")
	h.srv.AddUser(domain.User{FirstName: "Ada", Email: "ada@example.org"}, "secret1")
	ctx := context.Background()
	var out bytes.Buffer

	a := h.app(t, &out, func(o *cli.Options) { o.Profile = "work" })
	require.NoError(t, a.Login(ctx, creds()))

	raw, err := os.ReadFile(filepath.Join(h.dir, ".assist", "sessions", "work.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "token-user-1")
	assert.NotContains(t, string(raw), "ada@example.org")

	s, err := h.app(t, &out, func(o *cli.Options) { o.Profile = "work" }).Profile.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-user-1", s.Token)
	assert.Equal(t, "***", s.UserData.Email)
	assert.Equal(t, "Ada", s.UserData.FirstName)
}

func TestMetricsTextfile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "assist.prom")
	var out bytes.Buffer

	a, err := cli.NewApp(cli.Options{Dir: h.dir, BaseURL: h.srv.URL, Out: &out, Plain: true, MetricsTextfile: path})
	require.NoError(t, err)
	require.NoError(t, a.NGOs(context.Background()))
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `assist_requests_total{code="200",endpoint="list_ngos"} 1`)
}

func TestNewApp_RejectsBadSettings(t *testing.T) {
	h := newHarness(t)

	_, err := cli.NewApp(cli.Options{Dir: h.dir, BaseURL: "ftp://x"})
	assert.Error(t, err)

	h.writeConfig(t, "session:\n  redact: [password]\n")
	_, err = cli.NewApp(cli.Options{Dir: h.dir, BaseURL: h.srv.URL})
	assert.ErrorContains(t, err, "cannot redact")
}

func TestCommandFor(t *testing.T) {
	tests := map[string]string{
		"/login":                "assist login",
		"/register":             "assist register",
		"/helpForm":             "assist help-request",
		"/create-ngo?userId=u1": "assist create-ngo --created-by u1",
		"/":                     "assist ngos",
	}
	for route, want := range tests {
		assert.Equal(t, want, cli.CommandFor(route), route)
	}
}
