// Package container provides a service container with string ids,
// configuration parameters, constructor and setter injection, and lazy,
// cycle-checked instantiation.
//
// # Overview
//
// Services are described by definitions: a factory function, positional
// constructor arguments, method calls applied after construction and a
// lifetime. Arguments name parameters and other services by id only, so
// definitions may be registered in any order. Nothing is built until a
// service is requested.
//
// There is no reflection. The factory and each method call are plain
// functions supplied at registration.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Configure: SetParameter, Register, Load, Alias, Tag
//  3. Freeze: implicit on the first Get (or Freeze / ProviderRegistry.Boot)
//  4. Resolve: Get, Resolve[T], Tagged
//
// Parameters and definitions cannot change once frozen. Reset drops the
// cached shared instances but keeps everything else.
//
// # Parameters
//
//	c.SetParameter("mailer.transport", "sendmail")
//	c.SetParameter("mailer.dsn", "%mailer.transport%://localhost")
//
// A string that is exactly one %name% token resolves to the parameter's
// typed value; tokens inside longer strings are replaced by their text.
// Use %% for a literal percent sign.
//
// # Definitions
//
//	c.Define("mailer", func(args ...any) (any, error) {
//	    return NewMailer(args[0].(string)), nil
//	}).AddArgument(container.Value("%mailer.transport%"))
//
//	c.Define("newsletter_manager", func(...any) (any, error) {
//	    return &NewsletterManager{}, nil
//	}).AddMethodCall("setMailer", func(inst any, args ...any) error {
//	    inst.(*NewsletterManager).SetMailer(args[0].(*Mailer))
//	    return nil
//	}, container.Ref("mailer"))
//
// Define records registration and builder errors on the definition and
// Freeze reports them; Register returns the registration error directly.
//
// # Arguments
//
//	container.Value(v)          // literal, %placeholders% resolved
//	container.Param("name")     // typed parameter value
//	container.Ref("id")         // another service
//	container.OptionalRef("id") // another service, or nil if undefined
//	container.Tagged("tag")     // []any of every service tagged "tag"
//
// # Lifetimes
//
// [Shared] (default): built once and cached until Reset.
//
// [Transient]: built on every Get and for every reference.
//
// # Errors
//
// Get wraps failures in a *ResolveError carrying the requested id. Use
// errors.Is with the Err* sentinels, or errors.As with
// *CircularReferenceError, *ConstructionError or *MethodCallError, to
// find what failed underneath.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(c *container.Container) error {
//	    _, err := c.Register("clock", NewClock)
//	    return err
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
package container
