package container

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Observer is notified of every service the instantiator hands out. cached
// is true when a shared instance came from the cache; err is set when the
// service could not be built.
type Observer interface {
	ObserveResolution(id string, lifetime Lifetime, cached bool, elapsed time.Duration, err error)
}

// instantiator builds services, caches shared instances and detects cycles.
type instantiator struct {
	registry *registry
	resolver *resolver
	log      *zap.Logger
	observer Observer

	afterResolving func(id string, instance any)

	// id → built shared instance
	mu        sync.RWMutex
	instances map[string]any

	// id → lock held while a shared instance is being built
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// ids whose reachable graph is known to be acyclic
	graphMu sync.Mutex
	acyclic map[string]bool
}

func newInstantiator(reg *registry, params *ParameterBag, log *zap.Logger, obs Observer) *instantiator {
	in := &instantiator{
		registry:  reg,
		log:       log,
		observer:  obs,
		instances: make(map[string]any),
		locks:     make(map[string]*sync.Mutex),
		acyclic:   make(map[string]bool),
	}
	in.resolver = &resolver{params: params, registry: reg, services: in}
	return in
}

// getOrBuild returns the instance for id, building it if needed.
//
//	unvisited → resolving → built     (shared, cached)
//	unvisited → resolving → returned  (transient)
func (in *instantiator) getOrBuild(id string, res *resolution) (any, error) {
	d, err := in.registry.get(id)
	if err != nil {
		return nil, err
	}
	id = d.id
	factory, args, calls, lifetime := d.snapshot()

	if lifetime == Shared {
		if inst, ok := in.cached(id); ok {
			in.observe(id, lifetime, true, 0, nil)
			return inst, nil
		}
	}

	if slices.Contains(res.stack, id) {
		return nil, circularError(res.stack, id)
	}
	if err := d.validity(); err != nil {
		return nil, err
	}

	if lifetime == Shared {
		lock := in.lockFor(id)
		lock.Lock()
		defer lock.Unlock()

		// Another call may have finished the build while we waited.
		if inst, ok := in.cached(id); ok {
			in.observe(id, lifetime, true, 0, nil)
			return inst, nil
		}
	}

	res.stack = append(res.stack, id)
	start := time.Now()
	inst, err := in.build(id, factory, args, calls, res)
	elapsed := time.Since(start)
	res.stack = res.stack[:len(res.stack)-1]

	in.observe(id, lifetime, false, elapsed, err)
	if err != nil {
		in.log.Debug("service build failed",
			zap.String("service", id),
			zap.Stringer("lifetime", lifetime),
			zap.Error(err),
		)
		return nil, err
	}

	if lifetime == Shared {
		in.mu.Lock()
		in.instances[id] = inst
		in.mu.Unlock()
	}

	in.log.Debug("service built",
		zap.String("service", id),
		zap.Stringer("lifetime", lifetime),
		zap.Duration("duration", elapsed),
	)
	if in.afterResolving != nil {
		in.afterResolving(id, inst)
	}
	return inst, nil
}

// build resolves the constructor arguments, calls the factory and then
// applies each method call in order. A failing method call aborts the build;
// calls already applied are not undone.
func (in *instantiator) build(id string, factory Factory, args []Argument, calls []MethodCall, res *resolution) (any, error) {
	argv, err := in.resolver.resolveAll(args, res)
	if err != nil {
		return nil, err
	}

	inst, err := construct(factory, argv)
	if err != nil {
		return nil, &ConstructionError{ServiceID: id, Args: argv, Err: err}
	}

	for _, call := range calls {
		callArgs, err := in.resolver.resolveAll(call.Arguments, res)
		if err != nil {
			return nil, err
		}
		if err := invoke(call.Fn, inst, callArgs); err != nil {
			return nil, &MethodCallError{ServiceID: id, Method: call.Name, Args: callArgs, Err: err}
		}
	}
	return inst, nil
}

func construct(factory Factory, argv []any) (inst any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("factory panicked: %v", r)
		}
	}()

	inst, err = factory(argv...)
	if err == nil && inst == nil {
		err = errors.New("factory returned a nil instance")
	}
	return inst, err
}

func invoke(fn Method, inst any, argv []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("method panicked: %v", r)
		}
	}()
	return fn(inst, argv...)
}

func (in *instantiator) cached(id string) (any, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	inst, ok := in.instances[id]
	return inst, ok
}

func (in *instantiator) lockFor(id string) *sync.Mutex {
	in.locksMu.Lock()
	defer in.locksMu.Unlock()
	l, ok := in.locks[id]
	if !ok {
		l = &sync.Mutex{}
		in.locks[id] = l
	}
	return l
}

func (in *instantiator) observe(id string, l Lifetime, cached bool, elapsed time.Duration, err error) {
	if in.observer != nil {
		in.observer.ObserveResolution(id, l, cached, elapsed, err)
	}
}

// reset drops every cached instance. Definitions are untouched.
func (in *instantiator) reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.instances = make(map[string]any)
}

func circularError(stack []string, id string) error {
	path := make([]string, len(stack)+1)
	copy(path, stack)
	path[len(stack)] = id
	return &CircularReferenceError{Path: path}
}
