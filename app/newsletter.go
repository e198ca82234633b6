// Package app is the sample application wired by main: a mailer and a
// newsletter manager that receives it through a setter.
package app

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Mailer sends messages through a named transport.
type Mailer struct {
	Transport string
	log       *zap.Logger
}

// NewMailer builds a Mailer. Container arguments: transport, logger
// (optional).
func NewMailer(args ...any) (any, error) {
	transport, ok := args[0].(string)
	if !ok || transport == "" {
		return nil, fmt.Errorf("mailer: transport must be a non-empty string, got %v", args[0])
	}
	log, _ := args[1].(*zap.Logger)
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{Transport: transport, log: log}, nil
}

// Send delivers subject to every recipient and returns a delivery line.
func (m *Mailer) Send(to []string, subject string) string {
	m.log.Info("sending mail",
		zap.String("transport", m.Transport),
		zap.Strings("to", to),
		zap.String("subject", subject),
	)
	return fmt.Sprintf("[%s] %s -> %s", m.Transport, subject, strings.Join(to, ", "))
}

// Template renders the subject of one newsletter edition.
type Template struct {
	Name string
}

// NewTemplate returns a factory for the template called name.
func NewTemplate(name string) func(...any) (any, error) {
	return func(...any) (any, error) { return &Template{Name: name}, nil }
}

// NewsletterManager sends newsletters through its mailer.
type NewsletterManager struct {
	mailer    *Mailer
	templates []*Template
}

// NewNewsletterManager builds an empty manager; its mailer is set later.
func NewNewsletterManager(...any) (any, error) {
	return &NewsletterManager{}, nil
}

// SetMailer is the setter applied after construction.
func (n *NewsletterManager) SetMailer(m *Mailer) { n.mailer = m }

// SetTemplates receives every service tagged "newsletter.template".
func (n *NewsletterManager) SetTemplates(templates []any) error {
	n.templates = n.templates[:0]
	for _, t := range templates {
		tpl, ok := t.(*Template)
		if !ok {
			return fmt.Errorf("newsletter: %T is not a template", t)
		}
		n.templates = append(n.templates, tpl)
	}
	return nil
}

// Mailer returns the injected mailer.
func (n *NewsletterManager) Mailer() *Mailer { return n.mailer }

// SendAll sends every template to the subscribers.
func (n *NewsletterManager) SendAll(subscribers []string) ([]string, error) {
	if n.mailer == nil {
		return nil, fmt.Errorf("newsletter: no mailer configured")
	}
	sent := make([]string, 0, len(n.templates))
	for _, tpl := range n.templates {
		sent = append(sent, n.mailer.Send(subscribers, tpl.Name))
	}
	return sent, nil
}
