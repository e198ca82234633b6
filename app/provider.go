package app

import (
	"errors"
	"fmt"

	"github.com/km-arc/go-container/framework/container"
)

// NewsletterServiceProvider registers the sample services.
//
// Bound ids:
//   - "mailer"               → *Mailer, transport %mailer.transport%
//   - "newsletter_manager"   → *NewsletterManager, setMailer(@mailer)
//   - "newsletter.welcome"   → *Template, tagged newsletter.template
//   - "newsletter.digest"    → *Template, tagged newsletter.template
//
// mailer.transport defaults to "sendmail" unless a parameter source set it.
type NewsletterServiceProvider struct {
	container.BaseProvider
}

func (p *NewsletterServiceProvider) Register(c *container.Container) error {
	if !c.HasParameter("mailer.transport") {
		if err := c.SetParameter("mailer.transport", "sendmail"); err != nil {
			return err
		}
	}

	var errs []error
	errs = append(errs, c.Define("mailer", NewMailer).
		AddArgument(container.Value("%mailer.transport%"), container.OptionalRef("logger")).
		Err())

	errs = append(errs, c.Define("newsletter_manager", NewNewsletterManager).
		AddMethodCall("setMailer", setMailer, container.Ref("mailer")).
		AddMethodCall("setTemplates", setTemplates, container.Tagged("newsletter.template")).
		Err())

	for _, name := range []string{"welcome", "digest"} {
		errs = append(errs, c.Define("newsletter."+name, NewTemplate(name)).
			AddTag("newsletter.template").
			Err())
	}
	return errors.Join(errs...)
}

func (p *NewsletterServiceProvider) Provides() []string {
	return []string{"mailer", "newsletter_manager"}
}

func setMailer(inst any, args ...any) error {
	m, ok := args[0].(*Mailer)
	if !ok {
		return fmt.Errorf("setMailer: expected *Mailer, got %T", args[0])
	}
	inst.(*NewsletterManager).SetMailer(m)
	return nil
}

func setTemplates(inst any, args ...any) error {
	templates, ok := args[0].([]any)
	if !ok {
		return fmt.Errorf("setTemplates: expected []any, got %T", args[0])
	}
	return inst.(*NewsletterManager).SetTemplates(templates)
}
