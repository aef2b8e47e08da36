package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/assist/internal/config"
	"github.com/aretw0/assist/internal/logging"
	"github.com/aretw0/assist/internal/metrics"
	"github.com/aretw0/assist/internal/presentation/prompt"
	"github.com/aretw0/assist/internal/presentation/tui"
	"github.com/aretw0/assist/pkg/adapters/file"
	"github.com/aretw0/assist/pkg/adapters/memory"
	"github.com/aretw0/assist/pkg/adapters/redis"
	"github.com/aretw0/assist/pkg/client"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/flows"
	"github.com/aretw0/assist/pkg/persistence/middleware"
	"github.com/aretw0/assist/pkg/ports"
	"github.com/aretw0/assist/pkg/session"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Options are the command line settings that shape an App.
type Options struct {
	Dir             string
	ConfigPath      string
	Profile         string
	BaseURL         string
	Debug           bool
	MetricsTextfile string

	// Out receives notices and rendered output. Defaults to os.Stdout.
	Out io.Writer
	// Asker enables interactive prompting when set.
	Asker prompt.Asker
	// Plain disables colours and terminal styling.
	Plain bool
}

// App is one CLI run: configuration, session store, API client and presentation.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Sessions *session.Manager
	Profile  *session.Profile
	Service  *flows.Service

	notify *tui.Notifier
	render *tui.Renderer
	driver *prompt.Driver
	out    io.Writer

	metricsPath string
	closers     []func() error
}

// NewApp resolves the configuration and wires every component.
func NewApp(opts Options) (*App, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(opts.Dir, config.FileName)
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Profile != "" {
		cfg.Profile = opts.Profile
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := createLogger(cfg, opts.Debug)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:      cfg,
		Logger:      logger,
		Metrics:     metrics.New(),
		out:         opts.Out,
		metricsPath: opts.MetricsTextfile,
	}

	store, err := a.openStore(opts.Dir)
	if err != nil {
		return nil, err
	}
	var managerOpts []session.Option
	if rs, ok := store.backend.(*redis.Store); ok {
		managerOpts = append(managerOpts, session.WithLocker(redis.NewLocker(rs.Client(), rs.Prefix()+"lock:")))
	}
	managerOpts = append(managerOpts, session.WithLogger(logger))
	a.Sessions = session.NewManager(store.chained, managerOpts...)
	a.Profile = a.Sessions.Profile(cfg.Profile)

	catalog := flows.DefaultCatalog()
	if err := cfg.ApplyRules(catalog); err != nil {
		return nil, err
	}

	clientOpts := []client.Option{
		client.WithLogger(logger),
		client.WithObserver(a.Metrics.ObserveRequest),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, client.WithTimeout(cfg.Timeout))
	}
	hooks := a.Metrics.Hooks()
	if opts.Debug {
		hooks = hooks.Combine(createDebugHooks(logger))
	}
	a.Service = flows.New(client.New(cfg.BaseURL, clientOpts...), a.Profile,
		flows.WithCatalog(catalog),
		flows.WithLifecycleHooks(hooks),
		flows.WithGateObserver(a.Metrics.ObserveGate),
		flows.WithLogger(logger),
	)

	if opts.Plain {
		a.notify = tui.NewNotifier(opts.Out, plainProfile())
		a.render, err = tui.NewRenderer(plainStyle())
	} else {
		a.notify = tui.NewNotifier(opts.Out)
		a.render, err = tui.NewRenderer()
	}
	if err != nil {
		return nil, err
	}

	if opts.Asker != nil {
		a.driver = prompt.NewDriver(opts.Asker,
			prompt.WithFilePolicies(flows.FilePolicies),
			prompt.WithReporter(func(_, msg string) { a.notify.Error(msg) }),
		)
	}
	return a, nil
}

type openedStore struct {
	backend ports.SessionStore
	chained ports.SessionStore
}

// openStore builds the configured backend and wraps it with redaction and encryption.
// Redaction runs first so masked values are what gets sealed.
func (a *App) openStore(dir string) (openedStore, error) {
	sc := a.Config.Session

	var backend ports.SessionStore
	switch sc.Backend {
	case config.BackendMemory:
		backend = memory.NewStore()
	case config.BackendRedis:
		var ropts []redis.Option
		if sc.RedisPrefix != "" {
			ropts = append(ropts, redis.WithPrefix(sc.RedisPrefix))
		}
		if sc.TTL > 0 {
			ropts = append(ropts, redis.WithTTL(sc.TTL))
		}
		rs := redis.New(sc.RedisAddr, "", 0, ropts...)
		a.closers = append(a.closers, rs.Close)
		backend = rs
	default:
		backend = file.New(a.Config.SessionPath(dir))
	}

	var mws []middleware.Middleware
	if len(sc.Redact) > 0 {
		mw, err := middleware.NewRedactionMiddleware(sc.Redact)
		if err != nil {
			return openedStore{}, err
		}
		mws = append(mws, mw)
	}
	if sc.Key != "" {
		enc := middleware.EncryptionConfig{ActiveKey: middleware.ParseKey(sc.Key)}
		for _, k := range sc.FallbackKeys {
			enc.FallbackKeys = append(enc.FallbackKeys, middleware.ParseKey(k))
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	return openedStore{backend: backend, chained: middleware.Chain(backend, mws...)}, nil
}

// Close flushes the metrics textfile and releases connections.
func (a *App) Close() error {
	var errs []error
	if a.metricsPath != "" {
		errs = append(errs, a.Metrics.WriteToTextfile(a.metricsPath))
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Interactive reports whether missing values are prompted for.
func (a *App) Interactive() bool { return a.driver != nil }

func createLogger(cfg config.Config, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			logger.Debug("Enter step", "flow", e.Flow, "step", e.Step, "index", e.Index)
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			logger.Debug("Leave step", "flow", e.Flow, "step", e.Step)
		},
		OnSubmit: func(_ context.Context, e *domain.OutcomeEvent) {
			logger.Debug("Submit", "flow", e.Flow)
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			logger.Debug("Outcome", "flow", e.Flow, "status", e.Outcome.Status, "duration", e.Duration)
		},
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func plainProfile() termenv.OutputOption { return termenv.WithProfile(termenv.Ascii) }

func plainStyle() glamour.TermRendererOption { return glamour.WithStandardStyle("notty") }
