package container

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// registry owns every Definition. It is written during the configuration
// phase and only read once frozen.
type registry struct {
	mu sync.RWMutex

	// id → definition
	definitions map[string]*Definition

	// alias → id (canonical key)
	aliases map[string]string

	// tag → []id, in tagging order
	tags map[string][]string

	// errors from registrations that never reached definitions
	rejected []error

	frozen     atomic.Bool
	freezeOnce sync.Once
	freezeErr  error
}

func newRegistry() *registry {
	return &registry{
		definitions: make(map[string]*Definition),
		aliases:     make(map[string]string),
		tags:        make(map[string][]string),
	}
}

func (r *registry) isFrozen() bool { return r.frozen.Load() }

// register stores a new definition. With override an existing definition of
// the same id is replaced; its tags are dropped.
func (r *registry) register(s Spec, override bool) (*Definition, error) {
	if err := validateSpec(s); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isFrozen() {
		return nil, fmt.Errorf("%w: cannot register service %q", ErrContainerFrozen, s.ID)
	}
	if _, exists := r.definitions[s.ID]; exists && override {
		r.untag(s.ID)
	} else if err := r.checkFree(s.ID); err != nil {
		return nil, err
	}
	return r.insert(s), nil
}

// registerAll stores every spec or none of them. Each id is checked
// against the batch, the existing definitions and the aliases before the
// first one is inserted.
func (r *registry) registerAll(specs []Spec) error {
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if err := validateSpec(s); err != nil {
			return err
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: %q appears twice in one load", ErrDuplicateServiceID, s.ID)
		}
		seen[s.ID] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isFrozen() {
		return fmt.Errorf("%w: cannot load %d services", ErrContainerFrozen, len(specs))
	}
	for _, s := range specs {
		if err := r.checkFree(s.ID); err != nil {
			return err
		}
	}
	for _, s := range specs {
		r.insert(s)
	}
	return nil
}

// checkFree reports whether id can take a new definition (must hold mu).
func (r *registry) checkFree(id string) error {
	if _, isAlias := r.aliases[id]; isAlias {
		return fmt.Errorf("%w: %q is already an alias", ErrDuplicateServiceID, id)
	}
	if _, exists := r.definitions[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateServiceID, id)
	}
	return nil
}

// insert stores s as a new definition (must hold mu).
func (r *registry) insert(s Spec) *Definition {
	d := &Definition{
		id:        s.ID,
		factory:   s.Factory,
		arguments: slices.Clone(s.Arguments),
		calls:     slices.Clone(s.Calls),
		lifetime:  s.Lifetime,
		tags:      slices.Clone(s.Tags),
		registry:  r,
	}
	r.definitions[s.ID] = d
	for _, tag := range s.Tags {
		r.tags[tag] = append(r.tags[tag], s.ID)
	}
	return d
}

// reject records a failed registration and returns a detached definition
// that carries the error and ignores builder calls.
func (r *registry) reject(id string, err error) *Definition {
	r.mu.Lock()
	r.rejected = append(r.rejected, err)
	r.mu.Unlock()
	return &Definition{id: id, err: err, invalid: err}
}

// canonical resolves an alias to its service id (must hold mu).
func (r *registry) canonical(id string) string {
	if target, ok := r.aliases[id]; ok {
		return target
	}
	return id
}

func (r *registry) has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.definitions[r.canonical(id)]
	return ok
}

func (r *registry) get(id string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.definitions[r.canonical(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServiceNotFound, id)
	}
	return d, nil
}

func (r *registry) alias(alias, id string) error {
	if alias == "" || id == "" {
		return fmt.Errorf("%w: alias and service id must not be empty", ErrInvalidDefinition)
	}
	if alias == id {
		return fmt.Errorf("%w: %q is aliased to itself", ErrInvalidDefinition, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isFrozen() {
		return fmt.Errorf("%w: cannot alias %q", ErrContainerFrozen, alias)
	}
	if _, exists := r.definitions[alias]; exists {
		return fmt.Errorf("%w: alias %q collides with a service", ErrInvalidDefinition, alias)
	}
	target := r.canonical(id)
	if target == alias {
		return fmt.Errorf("%w: alias %q would point to itself through %q", ErrInvalidDefinition, alias, id)
	}
	r.aliases[alias] = target
	return nil
}

// tag records ids under tag. Unknown ids are allowed; they are reported when
// the tag is resolved.
func (r *registry) tag(id string, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tag := range tags {
		if !slices.Contains(r.tags[tag], id) {
			r.tags[tag] = append(r.tags[tag], id)
		}
	}
}

// untag removes id from every tag (must hold mu).
func (r *registry) untag(id string) {
	for tag, ids := range r.tags {
		r.tags[tag] = slices.DeleteFunc(ids, func(s string) bool { return s == id })
	}
}

func (r *registry) tagged(tag string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tags[tag])
}

func (r *registry) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.definitions))
}

func (r *registry) aliasesOf(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for alias, target := range r.aliases {
		if target == id {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

func (r *registry) tagsOf(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for tag, ids := range r.tags {
		if slices.Contains(ids, id) {
			out = append(out, tag)
		}
	}
	slices.Sort(out)
	return out
}

// freeze stops all further changes and reports the errors recorded by
// definition builders during the configuration phase. Every call returns
// the same result.
func (r *registry) freeze() error {
	r.freezeOnce.Do(func() {
		r.frozen.Store(true)

		r.mu.RLock()
		defs := slices.Collect(maps.Values(r.definitions))
		errs := slices.Clone(r.rejected)
		r.mu.RUnlock()

		slices.SortFunc(defs, func(a, b *Definition) int { return strings.Compare(a.id, b.id) })

		for _, d := range defs {
			if err := d.validity(); err != nil {
				errs = append(errs, err)
			}
		}
		r.freezeErr = errors.Join(errs...)
	})
	return r.freezeErr
}
