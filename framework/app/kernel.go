package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/inspect"
	"github.com/km-arc/go-container/framework/logging"
	"github.com/km-arc/go-container/framework/metrics"
	"github.com/km-arc/go-container/framework/providers"
)

// Application is the composition root. It embeds the Container and the
// ProviderRegistry so user code can call app.Define(), app.Get() and
// app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	config *config.Config
	log    *zap.Logger
}

// New loads the configuration, builds the logger and metrics collector, and
// registers the framework providers.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	return NewWithConfig(cfg)
}

// NewWithConfig is New with an already loaded configuration.
func NewWithConfig(cfg *config.Config) (*Application, error) {
	log, err := logging.New(&logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	collector := metrics.NewCollector("container")

	c := container.New(container.WithLogger(log), container.WithObserver(collector))
	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		config:    cfg,
		log:       log,
	}

	// Framework providers first; application providers may reference them.
	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: log},
		&providers.MetricsServiceProvider{Collector: collector},
		&providers.InspectServiceProvider{},
	} {
		if err := app.Providers.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot freezes the container and runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config returns the configuration the application was built with.
func (a *Application) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.log }

// Run boots the application (if needed) and, when the inspector is enabled,
// serves it until ctx is cancelled. Otherwise it just waits for ctx.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	defer func() { _ = a.log.Sync() }()

	a.log.Info("application running",
		zap.String("name", a.config.App.Name),
		zap.String("env", a.config.App.Env),
		zap.Bool("inspect", a.config.Inspect.Enabled),
	)

	if !a.config.Inspect.Enabled {
		<-ctx.Done()
		return nil
	}
	server, err := container.Resolve[*inspect.Server](a.Container, providers.InspectorServerID)
	if err != nil {
		return err
	}
	return server.Run(ctx)
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.config.App.Debug }
