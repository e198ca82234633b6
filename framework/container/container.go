package container

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// SelfID is the id under which every container registers itself.
const SelfID = "service_container"

// Container is the service container. It is built once at the composition
// root and passed explicitly to the few places that need it.
//
// It supports:
//   - parameters with %placeholder% substitution
//   - Register / Load / Instance / Alias
//   - constructor arguments and setter-style method calls
//   - shared and transient lifetimes
//   - tags
//   - Get / Resolve (generic)
//   - resolved event callbacks
type Container struct {
	*state

	// res is the chain of ids being built when this handle was handed to a
	// factory through Ref(SelfID). It is nil on the container New returns.
	res *resolution
}

type state struct {
	mu sync.RWMutex

	params       *ParameterBag
	registry     *registry
	instantiator *instantiator
	log          *zap.Logger

	// resolved callbacks: []func(id, instance)
	afterResolving []func(string, any)

	freezeOnce sync.Once
}

// New creates a container holding only itself, under [SelfID].
func New(opts ...Option) *Container {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{state: &state{
		params:   NewParameterBag(),
		registry: newRegistry(),
		log:      o.log,
	}}
	c.instantiator = newInstantiator(c.registry, c.params, o.log, o.observer)
	c.instantiator.resolver.self = c.state
	c.instantiator.afterResolving = c.fireAfterResolving

	_ = c.Instance(SelfID, c)
	return c
}

// ── Parameters ────────────────────────────────────────────────────────────────

// SetParameter creates or overwrites a parameter.
//
//	c.SetParameter("mailer.transport", "sendmail")
func (c *Container) SetParameter(name string, value any) error {
	return c.params.Set(name, value)
}

// SetParameters sets every entry of values, in name order, and stops at the
// first error.
func (c *Container) SetParameters(values map[string]any) error {
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if err := c.params.Set(name, values[name]); err != nil {
			return err
		}
	}
	return nil
}

// GetParameter returns a parameter with its placeholders resolved.
func (c *Container) GetParameter(name string) (any, error) {
	return c.params.Get(name)
}

// HasParameter reports whether the parameter is defined.
func (c *Container) HasParameter(name string) bool {
	return c.params.Has(name)
}

// Parameters exposes the parameter store.
func (c *Container) Parameters() *ParameterBag {
	return c.params
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register adds a shared service and returns its definition for chaining.
//
//	def, err := c.Register("mailer", NewMailer)
//	def.AddArgument(container.Value("%mailer.transport%"))
func (c *Container) Register(id string, factory Factory) (*Definition, error) {
	return c.registry.register(Spec{ID: id, Factory: factory}, false)
}

// Define is the fluent form of Register. A registration error is kept on
// the returned definition (see [Definition.Err]) and reported again by
// Freeze.
//
//	c.Define("mailer", NewMailer).AddArgument(container.Value("%mailer.transport%"))
func (c *Container) Define(id string, factory Factory) *Definition {
	d, err := c.Register(id, factory)
	if err != nil {
		return c.registry.reject(id, err)
	}
	return d
}

// RegisterOverride is Register but replaces an existing definition of id.
func (c *Container) RegisterOverride(id string, factory Factory) (*Definition, error) {
	return c.registry.register(Spec{ID: id, Factory: factory}, true)
}

// Load registers definition records from a definition source. The records
// are registered together or not at all: a malformed record, or an id that
// is already taken, leaves the container unchanged.
func (c *Container) Load(specs ...Spec) error {
	return c.registry.registerAll(specs)
}

// Instance registers an already built value as a shared service.
//
//	c.Instance("config", cfg)
func (c *Container) Instance(id string, instance any) error {
	if instance == nil {
		return fmt.Errorf("%w: service %q: nil instance", ErrInvalidDefinition, id)
	}
	_, err := c.registry.register(Spec{
		ID:      id,
		Factory: func(...any) (any, error) { return instance, nil },
	}, false)
	return err
}

// Alias registers an alternative id for a service.
//
//	c.Alias("mailer.default", "mailer")
func (c *Container) Alias(alias, id string) error {
	return c.registry.alias(alias, id)
}

// Tag associates services with a named group.
//
//	c.Tag("reports", "report.cpu", "report.memory")
func (c *Container) Tag(tag string, ids ...string) error {
	if tag == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidDefinition)
	}
	if c.registry.isFrozen() {
		return fmt.Errorf("%w: cannot tag %q", ErrContainerFrozen, tag)
	}
	for _, id := range ids {
		c.registry.tag(id, tag)
	}
	return nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get returns the service registered under id. The first Get freezes the
// container. Failures are wrapped in a *ResolveError naming id; the wrapped
// error names the dependency that actually failed.
//
// Get does not report registration errors: a Define that failed is logged
// at error level on freeze and returned by [Container.Freeze]. Call Freeze
// (or check [Definition.Err]) before the first Get to fail fast.
func (c *Container) Get(id string) (any, error) {
	_ = c.freeze()

	inst, err := c.get(id)
	if err != nil {
		c.log.Debug("service resolution failed", zap.String("service", id), zap.Error(err))
		return nil, &ResolveError{ID: id, Err: err}
	}
	return inst, nil
}

func (c *Container) get(id string) (any, error) {
	if err := c.instantiator.checkAcyclic(id); err != nil {
		return nil, err
	}
	res := &resolution{}
	if c.res != nil {
		res.stack = slices.Clone(c.res.stack)
	}
	return c.instantiator.getOrBuild(id, res)
}

// within returns a handle on the same container whose lookups continue the
// chain in res. Re-entering a service that is still being built through it
// fails with a *CircularReferenceError instead of waiting on its own build.
func (c *Container) within(res *resolution) *Container {
	return &Container{state: c.state, res: &resolution{stack: slices.Clone(res.stack)}}
}

// MustGet is like Get but panics on error.
func (c *Container) MustGet(id string) any {
	inst, err := c.Get(id)
	if err != nil {
		panic(err)
	}
	return inst
}

// Tagged resolves every service tagged with tag, in tagging order.
//
//	reports, err := c.Tagged("reports")
func (c *Container) Tagged(tag string) ([]any, error) {
	_ = c.freeze()

	ids := c.registry.tagged(tag)
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		inst, err := c.get(id)
		if err != nil {
			return nil, &ResolveError{ID: id, Err: fmt.Errorf("tag %q: %w", tag, err)}
		}
		out = append(out, inst)
	}
	return out, nil
}

// Reset drops every cached shared instance. Parameters and definitions are
// kept, so the next Get builds fresh instances.
func (c *Container) Reset() {
	c.instantiator.reset()
	c.log.Debug("instance cache cleared")
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Freeze ends the configuration phase. It is called implicitly by the first
// Get; calling it earlier reports definitions whose builder calls failed.
func (c *Container) Freeze() error {
	return c.freeze()
}

func (c *Container) freeze() error {
	c.freezeOnce.Do(func() {
		c.params.freeze()
		if err := c.registry.freeze(); err != nil {
			c.log.Error("container frozen with invalid definitions", zap.Error(err))
		}
		c.log.Info("container frozen",
			zap.Int("services", len(c.registry.ids())),
			zap.Int("parameters", len(c.params.Names())),
		)
	})
	return c.registry.freeze()
}

// Frozen reports whether the configuration phase is over.
func (c *Container) Frozen() bool {
	return c.registry.isFrozen()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Has reports whether id, or an alias named id, is registered.
func (c *Container) Has(id string) bool {
	return c.registry.has(id)
}

// Definition returns the definition of id.
func (c *Container) Definition(id string) (*Definition, error) {
	return c.registry.get(id)
}

// IDs returns every registered service id, sorted. Aliases are not included.
func (c *Container) IDs() []string {
	return c.registry.ids()
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after each service is built.
// Cache hits do not fire it.
func (c *Container) AfterResolving(cb func(id string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(id string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(id, instance)
	}
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Get and type-asserts the result.
//
//	mailer, err := container.Resolve[*Mailer](c, "mailer")
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	inst, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("service %q resolved to %T, not %T", id, inst, zero)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, id string) T {
	typed, err := Resolve[T](c, id)
	if err != nil {
		panic(err)
	}
	return typed
}

// IsNotFound reports whether err means a service or parameter is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrServiceNotFound) || errors.Is(err, ErrParameterNotFound)
}
