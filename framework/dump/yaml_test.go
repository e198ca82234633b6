package dump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-container/framework/container"
)

type newsletterManager struct{ mailer any }

func newsletterContainer(t *testing.T) *container.Container {
	t.Helper()
	c := container.New()
	require.NoError(t, c.SetParameter("mailer.transport", "sendmail"))
	require.NoError(t, c.SetParameter("mailer.port", 25))

	c.Define("mailer", func(args ...any) (any, error) { return args, nil }).
		AddArgument(container.Value("%mailer.transport%"), container.Param("mailer.port"))
	c.Define("newsletter_manager", func(...any) (any, error) { return &newsletterManager{}, nil }).
		AddMethodCall("setMailer", func(inst any, args ...any) error {
			inst.(*newsletterManager).mailer = args[0]
			return nil
		}, container.Ref("mailer")).
		SetLifetime(container.Transient).
		AddTag("newsletter")
	require.NoError(t, c.Alias("mailer.default", "mailer"))
	return c
}

func TestYAML(t *testing.T) {
	out, err := YAML(newsletterContainer(t))
	require.NoError(t, err)

	expected := `parameters:
  mailer.port: 25
  mailer.transport: sendmail
services:
  mailer:
    lifetime: shared
    arguments:
      - '%mailer.transport%'
      - '%mailer.port%'
    aliases:
      - mailer.default
  newsletter_manager:
    lifetime: transient
    calls:
      - setMailer(@mailer)
    tags:
      - newsletter
  service_container:
    lifetime: shared
`
	assert.YAMLEq(t, expected, string(out))
}

func TestYAML_RoundTrip(t *testing.T) {
	out, err := YAML(newsletterContainer(t))
	require.NoError(t, err)

	var doc Document
	require.NoError(t, yaml.Unmarshal(out, &doc))

	assert.Equal(t, "sendmail", doc.Parameters["mailer.transport"])
	assert.Equal(t, 25, doc.Parameters["mailer.port"])
	require.Contains(t, doc.Services, "newsletter_manager")
	assert.Equal(t, []string{"setMailer(@mailer)"}, doc.Services["newsletter_manager"].Calls)
	assert.Equal(t, "transient", doc.Services["newsletter_manager"].Lifetime)
}

func TestSnapshot_EmptyContainer(t *testing.T) {
	doc := Snapshot(container.New())

	assert.Empty(t, doc.Parameters)
	assert.Len(t, doc.Services, 1)
	assert.Contains(t, doc.Services, container.SelfID)
}
