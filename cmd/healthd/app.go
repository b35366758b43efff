package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jonwraymond/healthops/auth"
	"github.com/jonwraymond/healthops/checks"
	"github.com/jonwraymond/healthops/circuitcheck"
	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/healthecho"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

// app is a configured healthd instance.
type app struct {
	cfg      *config.Config
	echo     *echo.Echo
	observer observe.Observer
	logger   observe.Logger
	registry *health.Registry
	breakers map[string]*resilience.CircuitBreaker
	closers  []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}

	a := &app{
		cfg:      cfg,
		echo:     echo.New(),
		observer: obs,
		logger:   obs.Logger(),
		registry: health.NewRegistry(),
		breakers: make(map[string]*resilience.CircuitBreaker, len(cfg.Circuits)),
		closers:  []func(context.Context) error{obs.Shutdown},
	}
	defer func() {
		if err != nil {
			_ = a.close(ctx)
		}
	}()

	a.echo.HideBanner = true
	a.echo.HidePort = true
	a.echo.Server.ReadTimeout = cfg.Server.ReadTimeout
	a.echo.Server.WriteTimeout = cfg.Server.WriteTimeout
	a.echo.HTTPErrorHandler = a.handleError

	if err := a.registerCircuits(); err != nil {
		return nil, err
	}
	if err := a.registerProbes(); err != nil {
		return nil, err
	}
	if err := a.routes(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) registerCircuits() error {
	for _, cc := range a.cfg.Circuits {
		name := cc.Name
		cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:                name,
			MaxFailures:         cc.MaxFailures,
			ResetTimeout:        cc.ResetTimeout,
			HalfOpenMaxRequests: cc.HalfOpenMaxRequests,
			OnStateChange: func(from, to resilience.State) {
				a.logger.Warn(context.Background(), "circuit state changed",
					observe.Field{Key: "circuit", Value: name},
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()},
				)
			},
		})
		if err := circuitcheck.Register(a.registry, cb, circuitcheck.WithTags(cc.Tags...)); err != nil {
			return fmt.Errorf("circuit %s: %w", name, err)
		}
		a.breakers[name] = cb
	}
	return nil
}

// probeOptions guards a probe with its bulkhead, circuit breaker and timeout.
func (a *app) probeOptions(p config.ProbeConfig) []checks.Option {
	opts := []checks.Option{
		checks.WithName(p.Name),
		checks.WithSlowThreshold(p.SlowThreshold),
	}

	var guards []resilience.ExecutorOption
	if p.MaxConcurrent > 0 {
		guards = append(guards, resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          p.Name,
			MaxConcurrent: p.MaxConcurrent,
		})))
	}
	if cb, ok := a.breakers[p.Circuit]; ok {
		guards = append(guards, resilience.WithCircuitBreaker(cb))
	}
	if p.Timeout > 0 {
		guards = append(guards, resilience.WithTimeout(p.Timeout))
	}
	if len(guards) > 0 {
		opts = append(opts, checks.WithExecutor(resilience.NewExecutor(guards...)))
	}
	return opts
}

func (a *app) registerProbes() error {
	if m := a.cfg.Checks.Memory; m != nil {
		heap := health.NewMemoryChecker(health.MemoryCheckerConfig{
			Name:              m.Name,
			WarningThreshold:  m.Warning,
			CriticalThreshold: m.Critical,
			MaxAlloc:          m.MaxAlloc,
		})
		if err := a.registry.AddNamed(heap, health.WithTags(m.Tags...)); err != nil {
			return fmt.Errorf("memory check: %w", err)
		}
	}

	for _, p := range a.cfg.Redis {
		client := redis.NewClient(&redis.Options{
			Addr:     p.Addr,
			Password: p.Password,
			DB:       p.DB,
		})
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })

		if err := a.registry.AddNamed(checks.Redis(client, a.probeOptions(p.ProbeConfig)...), health.WithTags(p.Tags...)); err != nil {
			return fmt.Errorf("redis probe %s: %w", p.Name, err)
		}
	}

	for _, p := range a.cfg.Mongo {
		client, err := mongo.Connect(options.Client().ApplyURI(p.URI))
		if err != nil {
			return fmt.Errorf("mongo probe %s: %w", p.Name, err)
		}
		a.closers = append(a.closers, client.Disconnect)

		if err := a.registry.AddNamed(checks.Mongo(client, a.probeOptions(p.ProbeConfig)...), health.WithTags(p.Tags...)); err != nil {
			return fmt.Errorf("mongo probe %s: %w", p.Name, err)
		}
	}
	return nil
}

func (a *app) routes() error {
	instrument, err := observe.MiddlewareFromObserver(a.observer)
	if err != nil {
		return err
	}
	service := health.NewService(health.ServiceConfig{
		CheckTimeout:   a.cfg.Checks.Timeout,
		MaxConcurrency: a.cfg.Checks.MaxConcurrency,
		Parallel:       true,
	})

	var guard echo.MiddlewareFunc
	if a.cfg.Auth.Enabled() {
		authn, err := a.newAuthenticator(a.cfg.Auth)
		if err != nil {
			return err
		}
		guard = echo.WrapMiddleware(auth.Middleware(authn, auth.MiddlewareOptions{
			RequiredRoles: a.cfg.Auth.RequiredRoles,
			ErrorHandler:  observe.ErrorHandler(a.logger),
		}))
	}

	a.echo.GET("/healthz", echo.WrapHandler(health.LivenessHandler()))

	for _, ep := range a.cfg.Endpoints {
		codes, err := ep.ResultStatusCodes()
		if err != nil {
			return err
		}
		writer := health.TextResponseWriter
		if ep.Format == config.FormatJSON {
			writer = health.JSONResponseWriter
		}

		m, err := health.NewMiddleware(a.registry, instrument.Executor(ep.Path, service), health.Options{
			Names:                 ep.Names,
			ResultStatusCodes:     codes,
			ResponseWriter:        writer,
			Path:                  ep.Path,
			AllowCachingResponses: ep.AllowCaching,
		})
		if err != nil {
			return fmt.Errorf("endpoint %s: %w", ep.Path, err)
		}

		var mws []echo.MiddlewareFunc
		if ep.Auth {
			mws = append(mws, guard)
		}
		a.echo.GET(ep.Path, healthecho.Handler(m), mws...)
	}

	if h := a.observer.MetricsHandler(); h != nil {
		a.echo.GET("/metrics", echo.WrapHandler(h))
	}
	return nil
}

func (a *app) newAuthenticator(cfg config.AuthConfig) (auth.Authenticator, error) {
	var chain []auth.Authenticator

	var stores []auth.KeyStore
	if len(cfg.APIKeys) > 0 {
		static := auth.NewMemoryKeyStore()
		for _, k := range cfg.APIKeys {
			if err := static.Put(&auth.APIKey{
				ID:        k.ID,
				Hash:      auth.HashAPIKey(k.Key),
				Principal: k.Principal,
				Roles:     k.Roles,
			}); err != nil {
				return nil, err
			}
		}
		stores = append(stores, static)
	}
	if ks := cfg.KeyStore; ks != nil {
		client := redis.NewClient(&redis.Options{Addr: ks.Addr, Password: ks.Password, DB: ks.DB})
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		stores = append(stores, auth.NewRedisKeyStore(client, ks.Prefix))
	}
	if len(stores) > 0 {
		chain = append(chain, auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, auth.KeyStores(stores...)))
	}

	if j := cfg.JWT; j != nil {
		var keys auth.KeyProvider = auth.NewStaticKeyProvider([]byte(j.Secret))
		methods := []string{"HS256", "HS384", "HS512"}
		if j.JWKSURL != "" {
			keys = auth.NewJWKSKeyProvider(auth.JWKSConfig{URL: j.JWKSURL})
			methods = []string{"RS256", "RS384", "RS512"}
		}
		chain = append(chain, auth.NewJWTAuthenticator(auth.JWTConfig{
			Issuer:       j.Issuer,
			Audience:     j.Audience,
			RolesClaim:   j.RolesClaim,
			ValidMethods: methods,
			Leeway:       j.Leeway,
		}, keys))
	}

	return auth.Chain(chain...), nil
}

// handleError renders errors returned from echo handlers. Health errors go
// through the observe error handler; echo's own errors keep their status.
func (a *app) handleError(err error, c echo.Context) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		a.echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	observe.ErrorHandler(a.logger)(c.Response(), c.Request(), err)
}

// run serves until ctx is cancelled, then shuts down gracefully.
func (a *app) run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "healthd listening",
			observe.Field{Key: "address", Value: a.cfg.Server.Listen},
			observe.Field{Key: "checks", Value: a.registry.Names()},
		)
		errc <- a.echo.Start(a.cfg.Server.Listen)
	}()

	var serveErr error
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, fmt.Errorf("shutdown: %w", err))
	}
	a.logger.Info(shutdownCtx, "healthd stopped")
	return errors.Join(serveErr, a.close(shutdownCtx))
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
