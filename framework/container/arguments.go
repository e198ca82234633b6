package container

import "fmt"

// Argument is one positional argument of a constructor or method call. It is
// a closed set: Value, Param, Ref, OptionalRef and Tagged.
type Argument interface {
	fmt.Stringer
	isArgument()
}

// LiteralArgument passes a value as is. Strings are run through placeholder
// resolution; slices and maps are walked and their strings and nested
// Arguments resolved too.
type LiteralArgument struct {
	Value any
}

// ParameterArgument passes the value of a named parameter.
type ParameterArgument struct {
	Name string
}

// ReferenceArgument passes another service. When NullIfMissing is set and no
// service with ID exists, nil is passed instead of failing.
type ReferenceArgument struct {
	ID            string
	NullIfMissing bool
}

// TaggedArgument passes a []any holding every service carrying Tag, in the
// order they were tagged.
type TaggedArgument struct {
	Tag string
}

func (LiteralArgument) isArgument()   {}
func (ParameterArgument) isArgument() {}
func (ReferenceArgument) isArgument() {}
func (TaggedArgument) isArgument()    {}

func (a LiteralArgument) String() string   { return fmt.Sprintf("%v", a.Value) }
func (a ParameterArgument) String() string { return "%" + a.Name + "%" }
func (a TaggedArgument) String() string    { return "!tagged " + a.Tag }

func (a ReferenceArgument) String() string {
	if a.NullIfMissing {
		return "@?" + a.ID
	}
	return "@" + a.ID
}

// Value returns a literal argument.
//
//	c.Register("mailer", NewMailer).AddArgument(container.Value("%mailer.transport%"))
func Value(v any) Argument { return LiteralArgument{Value: v} }

// Param returns an argument carrying the typed value of parameter name.
func Param(name string) Argument { return ParameterArgument{Name: name} }

// Ref returns a reference to the service id. Get fails with
// ErrServiceNotFound if the service does not exist.
func Ref(id string) Argument { return ReferenceArgument{ID: id} }

// OptionalRef returns a reference that resolves to nil when id is not
// registered.
func OptionalRef(id string) Argument { return ReferenceArgument{ID: id, NullIfMissing: true} }

// Tagged returns an argument resolving to all services tagged with tag.
func Tagged(tag string) Argument { return TaggedArgument{Tag: tag} }
