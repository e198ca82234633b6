package container_test

import (
	"errors"
	"testing"

	"github.com/km-arc/go-container/framework/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

type mailerProvider struct {
	container.BaseProvider
	registerCalled int
	bootCalled     int
	bootSawFrozen  bool
}

func (p *mailerProvider) Register(c *container.Container) error {
	p.registerCalled++
	if err := c.SetParameter("mailer.transport", "sendmail"); err != nil {
		return err
	}
	return c.Define("mailer", newMailer).
		AddArgument(container.Value("%mailer.transport%")).
		Err()
}

func (p *mailerProvider) Boot(c *container.Container) error {
	p.bootCalled++
	p.bootSawFrozen = c.Frozen()
	_, err := c.Get("mailer")
	return err
}

func (p *mailerProvider) Provides() []string { return []string{"mailer"} }

// newsletterProvider depends on a service defined by mailerProvider.
type newsletterProvider struct {
	container.BaseProvider
	name string
}

func (p *newsletterProvider) Register(c *container.Container) error {
	return c.Define("newsletter_manager", newNewsletterManager).
		AddMethodCall("setMailer", setMailer, container.Ref("mailer")).
		Err()
}

// liarProvider promises a service it never defines.
type liarProvider struct {
	container.BaseProvider
}

func (p *liarProvider) Register(*container.Container) error { return nil }
func (p *liarProvider) Provides() []string                  { return []string{"ghost"} }

type failingProvider struct {
	container.BaseProvider
	registerErr error
	bootErr     error
}

func (p *failingProvider) Register(*container.Container) error { return p.registerErr }
func (p *failingProvider) Boot(*container.Container) error     { return p.bootErr }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestProviderRegistry_Register(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &mailerProvider{}
	if err := reg.Register(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.registerCalled != 1 {
		t.Fatalf("Register called %d times, want 1", p.registerCalled)
	}
	if p.bootCalled != 0 {
		t.Fatal("Boot should not run before registry.Boot()")
	}
	if !c.Has("mailer") {
		t.Fatal("mailer should be defined after Register")
	}
	if c.Frozen() {
		t.Fatal("Register must not freeze the container")
	}
}

func TestProviderRegistry_RegisterTwiceIsNoop(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &mailerProvider{}
	_ = reg.Register(p)
	if err := reg.Register(p); err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if p.registerCalled != 1 {
		t.Fatalf("Register called %d times, want 1", p.registerCalled)
	}
	if got := len(reg.Providers()); got != 1 {
		t.Fatalf("len(Providers()) = %d, want 1", got)
	}
}

func TestProviderRegistry_Boot(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	mp := &mailerProvider{}
	_ = reg.Register(mp)
	_ = reg.Register(&newsletterProvider{})

	if err := reg.Boot(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reg.Booted() {
		t.Fatal("Booted() = false")
	}
	if mp.bootCalled != 1 || !mp.bootSawFrozen {
		t.Fatalf("boot called=%d frozen=%v", mp.bootCalled, mp.bootSawFrozen)
	}

	nm := container.MustResolve[*NewsletterManager](c, "newsletter_manager")
	if nm.Mailer == nil || nm.Mailer.Transport != "sendmail" {
		t.Fatalf("newsletter manager not wired: %+v", nm.Mailer)
	}

	if err := reg.Boot(); err != nil {
		t.Fatalf("second Boot: %v", err)
	}
	if mp.bootCalled != 1 {
		t.Fatalf("Boot called %d times, want 1", mp.bootCalled)
	}
}

func TestProviderRegistry_RegisterAfterBoot(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	_ = reg.Boot()

	err := reg.Register(&mailerProvider{})
	if !errors.Is(err, container.ErrContainerFrozen) {
		t.Fatalf("expected ErrContainerFrozen, got: %v", err)
	}
}

func TestProviderRegistry_BrokenPromise(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	err := reg.Register(&liarProvider{})
	if !errors.Is(err, container.ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got: %v", err)
	}
	if len(reg.Providers()) != 0 {
		t.Fatal("a provider that broke its promise must not be kept")
	}
}

func TestProviderRegistry_Errors(t *testing.T) {
	cause := errors.New("boom")

	t.Run("register error", func(t *testing.T) {
		reg := container.NewProviderRegistry(container.New())
		if err := reg.Register(&failingProvider{registerErr: cause}); !errors.Is(err, cause) {
			t.Fatalf("expected cause, got: %v", err)
		}
	})

	t.Run("boot error", func(t *testing.T) {
		reg := container.NewProviderRegistry(container.New())
		_ = reg.Register(&failingProvider{bootErr: cause})
		if err := reg.Boot(); !errors.Is(err, cause) {
			t.Fatalf("expected cause, got: %v", err)
		}
	})

	t.Run("duplicate definition across providers", func(t *testing.T) {
		c := container.New()
		reg := container.NewProviderRegistry(c)
		_ = reg.Register(&newsletterProvider{name: "first"})
		if err := reg.Register(&newsletterProvider{name: "second"}); !errors.Is(err, container.ErrDuplicateServiceID) {
			t.Fatalf("expected ErrDuplicateServiceID, got: %v", err)
		}
		if err := reg.Boot(); !errors.Is(err, container.ErrDuplicateServiceID) {
			t.Fatalf("Boot: expected ErrDuplicateServiceID, got: %v", err)
		}
	})
}
