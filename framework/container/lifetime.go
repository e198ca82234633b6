package container

// Lifetime controls how many instances of a service the container creates.
type Lifetime int

const (
	// Shared is the default lifetime. The service is built on first Get and
	// the same instance is handed to every later requester until Reset.
	Shared Lifetime = iota

	// Transient means a fresh instance is built on every Get and for every
	// reference to it.
	Transient
)

// String returns the human-readable name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Shared:
		return "shared"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

func (l Lifetime) valid() bool {
	return l == Shared || l == Transient
}
