package container

import (
	"fmt"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the definitions of one feature and feeds them into
// the container. It is the container's definition source for code-based
// configuration.
//
// Register runs during the configuration phase and must only add parameters
// and definitions. Boot runs after every provider is registered and the
// container is frozen, so it may resolve services.
//
//	type MailerProvider struct{ container.BaseProvider }
//
//	func (p *MailerProvider) Register(c *container.Container) error {
//	    def, err := c.Register("mailer", NewMailer)
//	    if err != nil {
//	        return err
//	    }
//	    def.AddArgument(container.Value("%mailer.transport%"))
//	    return def.Err()
//	}
type ServiceProvider interface {
	// Register adds parameters and definitions to the container.
	// Do NOT resolve services here; use Boot for that.
	Register(c *Container) error

	// Boot is called after all providers are registered.
	Boot(c *Container) error

	// Provides lists the service ids Register promises to define. The
	// registry checks the promise after Register. Return nil to skip it.
	Provides() []string
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op Boot and Provides.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(c *container.Container) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots ServiceProviders in order.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to c.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        c,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register calls the provider's Register method. Registering the same
// provider twice is a no-op. Once booted the container is frozen, so late
// providers fail with ErrContainerFrozen.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	if r.booted {
		return fmt.Errorf("%w: provider %T registered after boot", ErrContainerFrozen, provider)
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("registering provider %T: %w", provider, err)
	}
	for _, id := range provider.Provides() {
		if !r.app.Has(id) {
			return fmt.Errorf("%w: provider %T promised %q but did not define it", ErrInvalidDefinition, provider, id)
		}
	}

	r.registered[provider] = true
	r.providers = append(r.providers, provider)
	return nil
}

// Boot freezes the container and calls Boot on every provider in
// registration order. It stops at the first error. Later calls are no-ops.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true

	if err := r.app.Freeze(); err != nil {
		return fmt.Errorf("freezing container: %w", err)
	}
	for _, provider := range r.providers {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("booting provider %T: %w", provider, err)
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the registered providers in order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
