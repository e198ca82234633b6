package container

import (
	"fmt"
	"strings"
)

// Description is a read-only view of a definition, used by dumpers and the
// HTTP inspector.
type Description struct {
	ID        string   `json:"id" yaml:"-"`
	Lifetime  string   `json:"lifetime" yaml:"lifetime"`
	Arguments []string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Calls     []string `json:"calls,omitempty" yaml:"calls,omitempty"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Aliases   []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Built     bool     `json:"built" yaml:"-"`
}

// Describe returns the description of id. Aliases are followed.
func (c *Container) Describe(id string) (Description, error) {
	d, err := c.registry.get(id)
	if err != nil {
		return Description{}, err
	}

	desc := Description{
		ID:       d.id,
		Lifetime: d.Lifetime().String(),
		Tags:     c.registry.tagsOf(d.id),
		Aliases:  c.registry.aliasesOf(d.id),
	}
	for _, a := range d.Arguments() {
		desc.Arguments = append(desc.Arguments, a.String())
	}
	for _, call := range d.MethodCalls() {
		desc.Calls = append(desc.Calls, describeCall(call))
	}
	_, desc.Built = c.instantiator.cached(d.id)
	return desc, nil
}

// DescribeAll describes every service, sorted by id.
func (c *Container) DescribeAll() []Description {
	ids := c.registry.ids()
	out := make([]Description, 0, len(ids))
	for _, id := range ids {
		desc, err := c.Describe(id)
		if err != nil {
			continue
		}
		out = append(out, desc)
	}
	return out
}

func describeCall(call MethodCall) string {
	args := make([]string, len(call.Arguments))
	for i, a := range call.Arguments {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", call.Name, strings.Join(args, ", "))
}
