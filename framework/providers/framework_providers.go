package providers

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/inspect"
	"github.com/km-arc/go-container/framework/metrics"
)

// Service ids bound by the framework providers.
const (
	ConfigID          = "config"
	LoggerID          = "logger"
	MetricsID         = "metrics"
	InspectorID       = "inspector"
	InspectorServerID = "inspector.server"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration and turns it into
// container parameters.
//
// Bound ids:
//   - "config" → *config.Config
//
// Parameters, later sources winning:
//  1. app.name, app.env, app.debug, inspect.enabled, inspect.addr
//  2. the "parameters" map of Config.App.ParamFile (YAML)
//  3. environment variables prefixed with Config.App.ParamPrefix
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load()
	}
	if err := app.Instance(ConfigID, cfg); err != nil {
		return err
	}

	if err := app.SetParameters(map[string]any{
		"app.name":        cfg.App.Name,
		"app.env":         cfg.App.Env,
		"app.debug":       cfg.App.Debug,
		"inspect.enabled": cfg.Inspect.Enabled,
		"inspect.addr":    cfg.Inspect.Addr,
	}); err != nil {
		return err
	}

	fromFile, err := config.LoadParameters(cfg.App.ParamFile)
	if err != nil {
		return err
	}
	if err := app.SetParameters(fromFile); err != nil {
		return fmt.Errorf("parameters file %s: %w", cfg.App.ParamFile, err)
	}
	return app.SetParameters(config.EnvParameters(cfg.App.ParamPrefix))
}

func (p *ConfigServiceProvider) Provides() []string { return []string{ConfigID} }

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger.
//
// Bound ids:
//   - "logger" → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return app.Instance(LoggerID, log)
}

// Boot logs the registered service ids.
func (p *LoggingServiceProvider) Boot(app *container.Container) error {
	log, err := container.Resolve[*zap.Logger](app, LoggerID)
	if err != nil {
		return err
	}
	log.Info("application booted", zap.Strings("services", app.IDs()))
	return nil
}

func (p *LoggingServiceProvider) Provides() []string { return []string{LoggerID} }

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the resolution metrics collector. The same
// collector should be passed to container.WithObserver.
//
// Bound ids:
//   - "metrics" → *metrics.Collector
type MetricsServiceProvider struct {
	container.BaseProvider
	Collector *metrics.Collector
}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	if p.Collector == nil {
		return nil
	}
	return app.Instance(MetricsID, p.Collector)
}

// ── InspectServiceProvider ────────────────────────────────────────────────────

// InspectServiceProvider defines the HTTP inspector. Both services are lazy;
// nothing listens until "inspector.server" is resolved and run.
//
// Bound ids:
//   - "inspector"        → *inspect.Inspector
//   - "inspector.server" → *inspect.Server, listening on %inspect.addr%
type InspectServiceProvider struct {
	container.BaseProvider
}

func (p *InspectServiceProvider) Register(app *container.Container) error {
	inspector, err := app.Register(InspectorID, newInspector)
	if err != nil {
		return err
	}
	inspector.AddArgument(
		container.Ref(container.SelfID),
		container.OptionalRef(MetricsID),
		container.OptionalRef(LoggerID),
	)

	server, err := app.Register(InspectorServerID, newInspectorServer)
	if err != nil {
		return err
	}
	server.AddArgument(container.Param("inspect.addr"), container.Ref(InspectorID))

	return errors.Join(inspector.Err(), server.Err())
}

func (p *InspectServiceProvider) Provides() []string {
	return []string{InspectorID, InspectorServerID}
}

func newInspector(args ...any) (any, error) {
	c, ok := args[0].(*container.Container)
	if !ok {
		return nil, fmt.Errorf("inspector: expected *container.Container, got %T", args[0])
	}
	var opts []inspect.Option
	if collector, ok := args[1].(*metrics.Collector); ok {
		opts = append(opts, inspect.WithCollector(collector))
	}
	if log, ok := args[2].(*zap.Logger); ok {
		opts = append(opts, inspect.WithLogger(log))
	}
	return inspect.New(c, opts...), nil
}

func newInspectorServer(args ...any) (any, error) {
	addr, ok := args[0].(string)
	if !ok || addr == "" {
		return nil, fmt.Errorf("inspector server: invalid address %v", args[0])
	}
	i, ok := args[1].(*inspect.Inspector)
	if !ok {
		return nil, fmt.Errorf("inspector server: expected *inspect.Inspector, got %T", args[1])
	}
	return inspect.NewServer(addr, i), nil
}
