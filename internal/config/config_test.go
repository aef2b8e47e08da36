package config_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/assist/internal/config"
	"github.com/aretw0/assist/pkg/client"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/flows"
	"github.com/aretw0/assist/pkg/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, client.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, config.BackendFile, cfg.Session.Backend)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
base_url: http://localhost:8080
profile: work
timeout: 15s
session:
  backend: memory
  redact: [email]
`)
	t.Setenv("ASSIST_PROFILE", "home")
	t.Setenv("ASSIST_LOG_LEVEL", "debug")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "home", cfg.Profile, "env wins over the file")
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, config.BackendMemory, cfg.Session.Backend)
	assert.Equal(t, []string{"email"}, cfg.Session.Redact)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad yaml", body: "base_url: [\n"},
		{name: "relative url", body: "base_url: /api\n"},
		{name: "unknown backend", body: "session:\n  backend: s3\n"},
		{name: "redis without addr", body: "session:\n  backend: redis\n"},
		{name: "bad level", body: "log_level: loud\n"},
		{name: "negative timeout", body: "timeout: -1s\n"},
		{name: "bad env timeout", env: map[string]string{"ASSIST_TIMEOUT": "soon"}},
		{name: "empty profile", env: map[string]string{"ASSIST_PROFILE": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestSessionPath(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, filepath.Join("proj", ".assist", "sessions"), cfg.SessionPath("proj"))

	cfg.Session.Path = "/var/lib/assist"
	assert.Equal(t, "/var/lib/assist", cfg.SessionPath("proj"))
}

func TestApplyRules(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
rules:
  signin:
    credentials:
      - field: email
        kind: required
        message: We need your email
`))
	require.NoError(t, err)

	catalog := flows.DefaultCatalog()
	require.NoError(t, cfg.ApplyRules(catalog))

	w, err := wizard.New(catalog[flows.FlowSignIn])
	require.NoError(t, err)
	got := w.Validate(context.Background())
	assert.Equal(t, domain.ValidationResult{"email": "We need your email"}, got)
}

func TestApplyRules_RejectsTypos(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
rules:
  signin:
    credentials:
      - field: email
        knd: required
`))
	require.NoError(t, err)

	assert.ErrorContains(t, cfg.ApplyRules(flows.DefaultCatalog()), "rules.signin.credentials")
}
