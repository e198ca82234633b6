package container

import (
	"fmt"
	"maps"
	"slices"
)

// resolution is the per-call state of one top-level Get: the stack of ids
// currently being built on this call chain. It is never shared between
// calls, so concurrent unrelated resolutions cannot trip cycle detection.
type resolution struct {
	stack []string
}

// serviceBuilder is the part of the instantiator the resolver recurses into.
type serviceBuilder interface {
	getOrBuild(id string, res *resolution) (any, error)
}

// resolver turns argument specs into concrete values.
type resolver struct {
	params   *ParameterBag
	registry *registry
	services serviceBuilder

	// self is the state of the container that owns this resolver
	self *state
}

// resolveAll maps resolve over args, preserving order.
func (r *resolver) resolveAll(args []Argument, res *resolution) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		v, err := r.resolve(a, res)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *resolver) resolve(arg Argument, res *resolution) (any, error) {
	switch a := arg.(type) {
	case LiteralArgument:
		return r.resolveLiteral(a.Value, res)

	case ParameterArgument:
		return r.params.Get(a.Name)

	case ReferenceArgument:
		if a.NullIfMissing && !r.registry.has(a.ID) {
			return nil, nil
		}
		inst, err := r.services.getOrBuild(a.ID, res)
		if err != nil {
			return nil, err
		}
		if c, ok := inst.(*Container); ok && c.state == r.self {
			return c.within(res), nil
		}
		return inst, nil

	case TaggedArgument:
		ids := r.registry.tagged(a.Tag)
		out := make([]any, 0, len(ids))
		for _, id := range ids {
			inst, err := r.services.getOrBuild(id, res)
			if err != nil {
				return nil, fmt.Errorf("tag %q: %w", a.Tag, err)
			}
			out = append(out, inst)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unsupported argument %T", ErrInvalidDefinition, arg)
	}
}

// resolveLiteral resolves placeholders in strings and walks slices and maps.
// Arguments nested inside a literal are resolved as if passed directly.
func (r *resolver) resolveLiteral(value any, res *resolution) (any, error) {
	switch v := value.(type) {
	case string:
		return r.params.ResolvePlaceholders(v)

	case Argument:
		return r.resolve(v, res)

	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			rv, err := r.resolveLiteral(item, res)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil

	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			rk, err := r.params.ResolvePlaceholders(k)
			if err != nil {
				return nil, err
			}
			rv, err := r.resolveLiteral(item, res)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(rk)] = rv
		}
		return out, nil

	default:
		return value, nil
	}
}

// dependencies lists the service ids an argument refers to, directly or
// nested inside a literal.
func (r *resolver) dependencies(arg Argument) []string {
	switch a := arg.(type) {
	case ReferenceArgument:
		return []string{a.ID}
	case TaggedArgument:
		return r.registry.tagged(a.Tag)
	case LiteralArgument:
		return r.literalDependencies(a.Value)
	default:
		return nil
	}
}

func (r *resolver) literalDependencies(value any) []string {
	switch v := value.(type) {
	case Argument:
		return r.dependencies(v)
	case []any:
		var ids []string
		for _, item := range v {
			ids = append(ids, r.literalDependencies(item)...)
		}
		return ids
	case map[string]any:
		var ids []string
		for _, k := range slices.Sorted(maps.Keys(v)) {
			ids = append(ids, r.literalDependencies(v[k])...)
		}
		return ids
	default:
		return nil
	}
}
