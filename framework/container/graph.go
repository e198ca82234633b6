package container

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// checkAcyclic walks the definitions reachable from id depth-first and
// reports the first cycle. The registry is frozen by the time this runs, so
// a clean result is remembered for every id visited.
//
// Running this before any per-id lock is taken means two concurrent calls
// can never wait on each other's locks: lock order always follows an
// acyclic graph.
func (in *instantiator) checkAcyclic(id string) error {
	in.graphMu.Lock()
	ok := in.acyclic[id]
	in.graphMu.Unlock()
	if ok {
		return nil
	}

	states := make(map[string]visitState)
	if err := in.visit(id, states, nil); err != nil {
		return err
	}

	in.graphMu.Lock()
	in.acyclic[id] = true
	for visitedID, s := range states {
		if s == visited {
			in.acyclic[visitedID] = true
		}
	}
	in.graphMu.Unlock()
	return nil
}

func (in *instantiator) visit(id string, states map[string]visitState, stack []string) error {
	d, err := in.registry.get(id)
	if err != nil {
		// Missing services are reported, or tolerated, at build time.
		return nil
	}
	id = d.id

	switch states[id] {
	case visiting:
		return circularError(stack, id)
	case visited:
		return nil
	}

	states[id] = visiting
	stack = append(stack, id)

	args := d.Arguments()
	for _, call := range d.MethodCalls() {
		args = append(args, call.Arguments...)
	}
	for _, a := range args {
		for _, dep := range in.resolver.dependencies(a) {
			if err := in.visit(dep, states, stack); err != nil {
				return err
			}
		}
	}

	states[id] = visited
	return nil
}
