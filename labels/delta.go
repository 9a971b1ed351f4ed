package labels

// Delta lists the flags to store on a message once it has been forwarded
type Delta struct {
	Add    []string
	Remove []string
}

// Empty returns true if there is nothing to update
func (d Delta) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// ComputeDelta marks a message as processed:
//   - important/work/todo flags are always removed
//   - the personal (green) flag is added to messages that were important or todo
func ComputeDelta(current Set) Delta {
	d := Delta{
		Remove: []string{Important.Flag(), Work.Flag(), Todo.Flag()},
	}
	if current.HasLabel(Important) || current.HasLabel(Todo) {
		d.Add = Done()
	}
	return d
}

// Apply returns a copy of current with the delta applied
func (d Delta) Apply(current Set) Set {
	next := make(Set, len(current)+len(d.Add))
	for f := range current {
		next[f] = struct{}{}
	}
	next.Add(d.Add...)
	next.Remove(d.Remove...)
	return next
}
