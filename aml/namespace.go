package aml

// Namespace is a mapping from absolute resolved paths to the values declared
// at those paths. Keys are unique; redefining a path replaces its value but
// keeps its original position in the walk order. Insertion order is
// irrelevant to lookups but is preserved so that diagnostic dumps mirror the
// declaration order in the firmware bytecode.
//
// The namespace performs no internal locking. A host that shares it between
// goroutines must serialize access for the duration of a parse.
type Namespace struct {
	order   []string
	entries map[string]Value
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{
		entries: make(map[string]Value),
	}
}

// Insert adds or replaces the value stored at path.
func (ns *Namespace) Insert(path string, val Value) {
	if _, exists := ns.entries[path]; !exists {
		ns.order = append(ns.order, path)
	}

	ns.entries[path] = val
}

// Lookup returns the value stored at path.
func (ns *Namespace) Lookup(path string) (Value, bool) {
	val, ok := ns.entries[path]
	return val, ok
}

// Len returns the number of entries in the namespace.
func (ns *Namespace) Len() int {
	return len(ns.entries)
}

// Visit invokes visitorFn for each entry in insertion order. Returning false
// from visitorFn stops the walk.
func (ns *Namespace) Visit(visitorFn func(path string, val Value) bool) {
	for _, path := range ns.order {
		if !visitorFn(path, ns.entries[path]) {
			return
		}
	}
}
