// Package dump renders a container's configuration as YAML.
package dump

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-container/framework/container"
)

// Document is the dumped shape: raw parameters and every service
// description keyed by id. Map keys are written sorted.
type Document struct {
	Parameters map[string]any                   `yaml:"parameters,omitempty"`
	Services   map[string]container.Description `yaml:"services"`
}

// Snapshot collects the document for c. Parameters are raw, so
// placeholders appear as written.
func Snapshot(c *container.Container) Document {
	doc := Document{
		Parameters: c.Parameters().All(),
		Services:   make(map[string]container.Description),
	}
	for _, desc := range c.DescribeAll() {
		doc.Services[desc.ID] = desc
	}
	return doc
}

// Write encodes the snapshot of c to w.
func Write(w io.Writer, c *container.Container) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Snapshot(c)); err != nil {
		return fmt.Errorf("encoding container dump: %w", err)
	}
	return enc.Close()
}

// YAML returns the dump of c.
func YAML(c *container.Container) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
