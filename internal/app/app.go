// Package app wires the humanizer subsystems into a running service.
//
// The App struct owns the full lifecycle: New assembles the humanizer and the
// HTTP surface from the config and providers, Run serves until the context is
// cancelled, Reload applies hot-reloadable configuration changes, and Shutdown
// tears everything down in order.
//
// For testing, construct [Providers] by hand (or via [BuildProviders] with a
// registry of mocks) and drive the App through [App.Handler].
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MrWong99/humanizer/internal/config"
	"github.com/MrWong99/humanizer/internal/health"
	"github.com/MrWong99/humanizer/internal/humanize"
	"github.com/MrWong99/humanizer/internal/mcpserver"
	"github.com/MrWong99/humanizer/internal/observe"
	"github.com/MrWong99/humanizer/internal/server"
	"github.com/MrWong99/humanizer/internal/similarity"
	"github.com/MrWong99/humanizer/pkg/nlp/postag"
)

// readHeaderTimeout bounds how long a client may take to send request headers.
const readHeaderTimeout = 10 * time.Second

// App owns all subsystem lifetimes and serves the humanizer API.
type App struct {
	cfg       *config.Config
	providers *Providers
	metrics   *observe.Metrics
	level     *slog.LevelVar

	server *server.Server
	extra  []route

	httpServer *http.Server
	baseCtx    context.Context
	cancelBase context.CancelFunc

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

type route struct {
	pattern string
	handler http.Handler
}

// Option is a functional option for New.
type Option func(*App)

// WithMetrics records request and pipeline metrics on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithLevelVar lets Reload change the log level of a logger built on lv.
func WithLevelVar(lv *slog.LevelVar) Option {
	return func(a *App) { a.level = lv }
}

// WithHandler mounts h on the API mux (e.g. "GET /metrics").
func WithHandler(pattern string, h http.Handler) Option {
	return func(a *App) { a.extra = append(a.extra, route{pattern, h}) }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App for cfg. providers may be nil for the lite variant. The
// App takes ownership of providers and closes them on Shutdown.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil {
		providers = &Providers{}
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}
	a.closers = append(a.closers, providers.Close)

	h, err := BuildHumanizer(cfg, providers, a.metrics)
	if err != nil {
		return nil, fmt.Errorf("app: build humanizer: %w", err)
	}

	srvOpts := []server.Option{
		server.WithRequestTimeout(cfg.Server.RequestTimeout),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithCORSOrigins(cfg.Server.CORSOrigins),
		server.WithHealth(health.New(providers.Checkers...)),
	}
	if a.metrics != nil {
		srvOpts = append(srvOpts, server.WithMetrics(a.metrics))
	}
	// The MCP tools read the live humanizer so reloads apply to them too.
	mcp := mcpserver.New(func() server.Humanizer { return a.server.Humanizer() }, server.Version)
	srvOpts = append(srvOpts, server.WithHandler("/mcp", mcpserver.Handler(mcp)))
	for _, r := range a.extra {
		srvOpts = append(srvOpts, server.WithHandler(r.pattern, r.handler))
	}
	a.server = server.New(h, srvOpts...)

	observe.Logger(ctx).Info("humanizer assembled",
		"variant", h.Variant(),
		"step_order", h.Params().StepOrder,
		"checkers", len(providers.Checkers),
	)
	return a, nil
}

// BuildHumanizer constructs the humanizer for cfg's variant. The full variant
// needs providers.Lexicon and providers.Embeddings.
func BuildHumanizer(cfg *config.Config, providers *Providers, metrics *observe.Metrics) (*humanize.Humanizer, error) {
	var opts []humanize.Option
	if metrics != nil {
		opts = append(opts, humanize.WithMetrics(metrics))
	}
	if cfg.Server.Variant == config.VariantFull {
		if providers == nil || providers.Lexicon == nil || providers.Embeddings == nil {
			return nil, errors.New("full variant needs a lexicon and an embeddings provider")
		}
		opts = append(opts, humanize.WithSynonyms(
			postag.New(),
			providers.Lexicon,
			similarity.NewEmbedding(providers.Embeddings),
		))
	}
	return humanize.New(cfg.Humanizer.Params(), opts...)
}

// Handler returns the full HTTP handler: API, health, MCP and extra routes.
func (a *App) Handler() http.Handler { return a.server.Handler() }

// Server returns the API server.
func (a *App) Server() *server.Server { return a.server }

// ─── Reload ──────────────────────────────────────────────────────────────────

// Reload applies the hot-reloadable parts of a configuration change. It has
// the signature of a [config.Watcher] callback. Changes listed in
// diff.RestartRequired are ignored here; the watcher already warned about
// them.
func (a *App) Reload(_, newCfg *config.Config, diff config.ConfigDiff) {
	if diff.LogLevelChanged && a.level != nil {
		a.level.Set(ParseLevel(diff.NewLogLevel))
		slog.Info("log level changed", "level", diff.NewLogLevel)
	}

	if diff.HumanizerChanged {
		// Providers are not rebuilt, so the variant stays what it was at
		// startup even if the file changed it.
		cfg := *newCfg
		cfg.Server.Variant = a.cfg.Server.Variant
		h, err := BuildHumanizer(&cfg, a.providers, a.metrics)
		if err != nil {
			slog.Error("reload: keeping previous humanizer parameters", "err", err)
		} else {
			a.server.SetHumanizer(h)
			slog.Info("humanizer parameters reloaded", "step_order", h.Params().StepOrder)
		}
	}

	if diff.CORSChanged {
		a.server.SetCORSOrigins(newCfg.Server.CORSOrigins)
		slog.Info("cors origins reloaded", "origins", newCfg.Server.CORSOrigins)
	}
}

// ParseLevel maps a config log level onto a slog level.
func ParseLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run listens on the configured address and serves until ctx is cancelled or
// the listener fails. It does not drain in-flight requests; call Shutdown for
// that.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("app: listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.baseCtx, a.cancelBase = context.WithCancel(context.WithoutCancel(ctx))
	a.httpServer = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return a.baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = a.httpServer.ServeTLS(ln, tls.CertFile, tls.KeyFile)
		} else {
			err = a.httpServer.Serve(ln)
		}
		errCh <- err
	}()
	slog.Info("listening", "addr", ln.Addr().String(), "tls", a.cfg.Server.TLS != nil)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: serve: %w", err)
	}
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown drains in-flight requests until ctx expires, closes open
// WebSocket streams and then releases the providers. Safe to call more than
// once; only the first call does work.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	a.stopOnce.Do(func() {
		if a.httpServer != nil {
			if err := a.httpServer.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("http shutdown: %w", err))
			}
			// Hijacked stream connections are not tracked by Shutdown.
			a.cancelBase()
		}
		for _, c := range a.closers {
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	if len(errs) > 0 {
		return fmt.Errorf("app: shutdown: %w", errors.Join(errs...))
	}
	return nil
}
