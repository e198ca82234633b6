package container

import (
	"fmt"
	"slices"
	"sync"
)

// Factory builds a service instance from its resolved constructor arguments.
// It is the only way the container creates objects; there is no reflection.
//
// A factory that looks up services while it runs must use the container it
// receives as a Ref(SelfID) argument. That handle carries the chain being
// built, so asking for a service already on it fails with a
// *CircularReferenceError. A container captured by the closure instead has
// no chain, and re-entering a shared service through it blocks forever.
type Factory func(args ...any) (any, error)

// Method invokes an operation on a freshly built instance, typically a setter.
type Method func(instance any, args ...any) error

// MethodCall is a named method applied to an instance after construction.
type MethodCall struct {
	Name      string
	Fn        Method
	Arguments []Argument
}

// Spec is the plain definition record handed over by definition sources
// such as service providers or configuration loaders.
type Spec struct {
	ID        string
	Factory   Factory
	Arguments []Argument
	Calls     []MethodCall
	Lifetime  Lifetime
	Tags      []string
}

// Definition is the recipe for one service. It is returned by
// [Container.Register] and [Container.Define] as a fluent builder:
//
//	c.Define("newsletter_manager", NewNewsletterManager).
//	    AddMethodCall("setMailer", setMailer, container.Ref("mailer"))
//
// Once the container is frozen every builder call is rejected and the
// rejection is kept in Err.
type Definition struct {
	mu sync.Mutex

	id        string
	factory   Factory
	arguments []Argument
	calls     []MethodCall
	lifetime  Lifetime
	tags      []string

	registry *registry

	// err is the first builder error; invalid is the first one that made
	// the definition unusable. Post-freeze rejections set err only.
	err     error
	invalid error
}

// ID returns the service id.
func (d *Definition) ID() string { return d.id }

// Lifetime returns the definition's lifetime.
func (d *Definition) Lifetime() Lifetime {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lifetime
}

// Arguments returns a copy of the constructor arguments.
func (d *Definition) Arguments() []Argument {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.arguments)
}

// MethodCalls returns a copy of the method calls, in registration order.
func (d *Definition) MethodCalls() []MethodCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]MethodCall, len(d.calls))
	for i, call := range d.calls {
		call.Arguments = slices.Clone(call.Arguments)
		out[i] = call
	}
	return out
}

// Tags returns a copy of the tags added through the builder.
func (d *Definition) Tags() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.tags)
}

// Err returns the first error recorded by a builder call, if any.
func (d *Definition) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// AddArgument appends constructor arguments.
func (d *Definition) AddArgument(args ...Argument) *Definition {
	d.mutate(func() error {
		for i, a := range args {
			if a == nil {
				return fmt.Errorf("%w: service %q: argument %d is nil", ErrInvalidDefinition, d.id, len(d.arguments)+i)
			}
		}
		d.arguments = append(d.arguments, args...)
		return nil
	})
	return d
}

// AddMethodCall appends a method call applied after construction.
func (d *Definition) AddMethodCall(name string, fn Method, args ...Argument) *Definition {
	d.mutate(func() error {
		call := MethodCall{Name: name, Fn: fn, Arguments: args}
		if err := validateCall(d.id, call); err != nil {
			return err
		}
		d.calls = append(d.calls, call)
		return nil
	})
	return d
}

// SetLifetime changes the lifetime. The default is [Shared].
func (d *Definition) SetLifetime(l Lifetime) *Definition {
	d.mutate(func() error {
		if !l.valid() {
			return fmt.Errorf("%w: service %q: unknown lifetime %d", ErrInvalidDefinition, d.id, l)
		}
		d.lifetime = l
		return nil
	})
	return d
}

// AddTag tags the service. Tags are collected by [Container.Tagged] and
// [Tagged] arguments.
func (d *Definition) AddTag(tags ...string) *Definition {
	d.mutate(func() error {
		for _, tag := range tags {
			if tag == "" {
				return fmt.Errorf("%w: service %q: empty tag", ErrInvalidDefinition, d.id)
			}
		}
		d.tags = append(d.tags, tags...)
		if d.registry != nil {
			d.registry.tag(d.id, tags...)
		}
		return nil
	})
	return d
}

// mutate applies fn unless the registry is frozen or an earlier call failed.
func (d *Definition) mutate(fn func() error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.registry != nil && d.registry.isFrozen() {
		if d.err == nil {
			d.err = fmt.Errorf("%w: cannot modify service %q", ErrContainerFrozen, d.id)
		}
		return
	}
	if d.invalid != nil {
		return
	}
	if err := fn(); err != nil {
		d.invalid = err
		if d.err == nil {
			d.err = err
		}
	}
}

func (d *Definition) validity() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.invalid
}

// snapshot copies the fields the instantiator needs so a build never holds
// the definition lock.
func (d *Definition) snapshot() (Factory, []Argument, []MethodCall, Lifetime) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.factory, d.arguments, d.calls, d.lifetime
}

func validateCall(id string, call MethodCall) error {
	if call.Name == "" {
		return fmt.Errorf("%w: service %q: method call without a name", ErrInvalidDefinition, id)
	}
	if call.Fn == nil {
		return fmt.Errorf("%w: service %q: method %s has no implementation", ErrInvalidDefinition, id, call.Name)
	}
	for i, a := range call.Arguments {
		if a == nil {
			return fmt.Errorf("%w: service %q: method %s argument %d is nil", ErrInvalidDefinition, id, call.Name, i)
		}
	}
	return nil
}

// validateSpec checks a record from a definition source before it touches
// the registry.
func validateSpec(s Spec) error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty service id", ErrInvalidDefinition)
	}
	if s.Factory == nil {
		return fmt.Errorf("%w: service %q has no factory", ErrInvalidDefinition, s.ID)
	}
	if !s.Lifetime.valid() {
		return fmt.Errorf("%w: service %q: unknown lifetime %d", ErrInvalidDefinition, s.ID, s.Lifetime)
	}
	for i, a := range s.Arguments {
		if a == nil {
			return fmt.Errorf("%w: service %q: argument %d is nil", ErrInvalidDefinition, s.ID, i)
		}
	}
	for _, call := range s.Calls {
		if err := validateCall(s.ID, call); err != nil {
			return err
		}
	}
	for _, tag := range s.Tags {
		if tag == "" {
			return fmt.Errorf("%w: service %q: empty tag", ErrInvalidDefinition, s.ID)
		}
	}
	return nil
}
