package container

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// ParameterBag holds configuration parameters. Names are case-insensitive.
// Values may themselves contain %placeholders%; they are resolved on read.
type ParameterBag struct {
	mu     sync.RWMutex
	values map[string]any
	frozen bool
}

// NewParameterBag returns an empty, writable bag.
func NewParameterBag() *ParameterBag {
	return &ParameterBag{values: make(map[string]any)}
}

// Set creates or overwrites a parameter.
func (p *ParameterBag) Set(name string, value any) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("%w: %q", ErrInvalidParameterName, name)
	}
	if err := checkValue(value); err != nil {
		return fmt.Errorf("parameter %q: %w", name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return fmt.Errorf("%w: cannot set parameter %q", ErrContainerFrozen, name)
	}
	p.values[key] = value
	return nil
}

// Has reports whether name is defined.
func (p *ParameterBag) Has(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.values[normalize(name)]
	return ok
}

// Get returns the parameter with its placeholders resolved.
func (p *ParameterBag) Get(name string) (any, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.get(name, map[string]bool{})
}

// Raw returns the parameter exactly as it was set.
func (p *ParameterBag) Raw(name string) (any, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrParameterNotFound, name)
	}
	return v, nil
}

// All returns a copy of the raw parameters.
func (p *ParameterBag) All() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.values)
}

// Names returns the sorted parameter names.
func (p *ParameterBag) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.values))
}

// ResolvePlaceholders substitutes every %name% token in text. The scan is
// single-pass: text inserted for a token is never scanned again. A text that
// is exactly one token yields the parameter's typed value. "%%" is a literal
// percent sign.
func (p *ParameterBag) ResolvePlaceholders(text string) (any, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resolveString(text, map[string]bool{})
}

// Resolve walks strings, slices and maps, resolving placeholders in every
// string it finds. Other values are returned unchanged.
func (p *ParameterBag) Resolve(value any) (any, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resolveValue(value, map[string]bool{})
}

func (p *ParameterBag) freeze() {
	p.mu.Lock()
	p.frozen = true
	p.mu.Unlock()
}

// get must hold at least the read lock. resolving tracks the parameters
// currently being expanded on this call chain.
func (p *ParameterBag) get(name string, resolving map[string]bool) (any, error) {
	key := normalize(name)
	v, ok := p.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrParameterNotFound, name)
	}
	if resolving[key] {
		return nil, fmt.Errorf("%w: %q", ErrCircularParameter, key)
	}

	resolving[key] = true
	defer delete(resolving, key)

	return p.resolveValue(v, resolving)
}

func (p *ParameterBag) resolveValue(value any, resolving map[string]bool) (any, error) {
	switch v := value.(type) {
	case string:
		return p.resolveString(v, resolving)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			r, err := p.resolveValue(item, resolving)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			rk, err := p.resolveString(k, resolving)
			if err != nil {
				return nil, err
			}
			ks, ok := rk.(string)
			if !ok {
				ks = fmt.Sprint(rk)
			}
			r, err := p.resolveValue(item, resolving)
			if err != nil {
				return nil, err
			}
			out[ks] = r
		}
		return out, nil
	default:
		return value, nil
	}
}

func (p *ParameterBag) resolveString(text string, resolving map[string]bool) (any, error) {
	if !strings.Contains(text, "%") {
		return text, nil
	}

	// A lone token keeps the parameter's type.
	if len(text) > 2 && text[0] == '%' && text[len(text)-1] == '%' && !strings.Contains(text[1:len(text)-1], "%") {
		name := text[1 : len(text)-1]
		if err := checkToken(name, text); err != nil {
			return nil, err
		}
		return p.get(name, resolving)
	}

	var b strings.Builder
	rest := text
	for {
		i := strings.IndexByte(rest, '%')
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		rest = rest[i+1:]

		j := strings.IndexByte(rest, '%')
		if j < 0 {
			return nil, fmt.Errorf("%w: unmatched %% in %q", ErrMalformedPlaceholder, text)
		}
		name := rest[:j]
		rest = rest[j+1:]

		if name == "" {
			b.WriteByte('%')
			continue
		}
		if err := checkToken(name, text); err != nil {
			return nil, err
		}

		v, err := p.get(name, resolving)
		if err != nil {
			return nil, err
		}
		s, err := stringify(name, v)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func checkToken(name, text string) error {
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q in %q", ErrMalformedPlaceholder, name, text)
	}
	return nil
}

// stringify renders a scalar for insertion into a larger string.
func stringify(name string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), nil
	default:
		return "", fmt.Errorf("%w: parameter %q of type %T cannot be embedded in a string", ErrInvalidParameterValue, name, v)
	}
}

func checkValue(v any) error {
	switch x := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	case []any:
		for _, item := range x {
			if err := checkValue(item); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for _, item := range x {
			if err := checkValue(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidParameterValue, v)
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
