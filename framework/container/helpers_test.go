package container

import (
	"errors"
	"testing"
	"time"
)

// Shared test types and factories used across test files.

type testMailer struct {
	Transport any
}

type testNewsletterManager struct {
	Mailer    *testMailer
	SetCalls  int
	Templates []any
}

type testNode struct {
	Name string
	Next any
}

func newTestMailer(args ...any) (any, error) {
	m := &testMailer{}
	if len(args) > 0 {
		m.Transport = args[0]
	}
	return m, nil
}

func newTestNewsletterManager(...any) (any, error) {
	return &testNewsletterManager{}, nil
}

func setTestMailer(inst any, args ...any) error {
	nm := inst.(*testNewsletterManager)
	nm.SetCalls++
	if args[0] == nil {
		nm.Mailer = nil
		return nil
	}
	nm.Mailer = args[0].(*testMailer)
	return nil
}

// nodeFactory returns a factory building a testNode whose Next is its
// first argument.
func nodeFactory(name string) Factory {
	return func(args ...any) (any, error) {
		n := &testNode{Name: name}
		if len(args) > 0 {
			n.Next = args[0]
		}
		return n, nil
	}
}

// lookupFactory returns a factory that receives the container as its
// first argument and looks up next while it runs.
func lookupFactory(name, next string) Factory {
	return func(args ...any) (any, error) {
		self := args[0].(*Container)
		inst, err := self.Get(next)
		if err != nil {
			return nil, err
		}
		return &testNode{Name: name, Next: inst}, nil
	}
}

func failingFactory(msg string) Factory {
	return func(...any) (any, error) { return nil, errors.New(msg) }
}

// mustRegister calls t.Fatal if registration fails.
func mustRegister(t *testing.T, c *Container, id string, f Factory) *Definition {
	t.Helper()
	d, err := c.Register(id, f)
	if err != nil {
		t.Fatalf("Register(%q): %v", id, err)
	}
	return d
}

// mustSetParameter calls t.Fatal if the parameter cannot be set.
func mustSetParameter(t *testing.T, c *Container, name string, v any) {
	t.Helper()
	if err := c.SetParameter(name, v); err != nil {
		t.Fatalf("SetParameter(%q): %v", name, err)
	}
}

// mustGet calls t.Fatal if the service cannot be resolved.
func mustGet(t *testing.T, c *Container, id string) any {
	t.Helper()
	inst, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get(%q): %v", id, err)
	}
	return inst
}

// recordingObserver counts resolutions per id.
type recordingObserver struct {
	built  map[string]int
	cached map[string]int
	failed map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		built:  make(map[string]int),
		cached: make(map[string]int),
		failed: make(map[string]int),
	}
}

func (o *recordingObserver) ObserveResolution(id string, _ Lifetime, cached bool, _ time.Duration, err error) {
	switch {
	case err != nil:
		o.failed[id]++
	case cached:
		o.cached[id]++
	default:
		o.built[id]++
	}
}
