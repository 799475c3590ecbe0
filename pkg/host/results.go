// ABOUTME: Per-script results of a broadcast execution
// ABOUTME: Ordered by registration; failures are recorded, never fatal

package host

import (
	"errors"
)

// Outcome is what one script produced for an execution.
type Outcome[O any] struct {
	Script string
	Output O
	Err    error
}

// Results collects the outcome of every script an execution reached.
type Results[O any] struct {
	items []Outcome[O]
}

// All returns every outcome in registration order.
func (r Results[O]) All() []Outcome[O] {
	return r.items
}

// Len returns the number of scripts the execution reached.
func (r Results[O]) Len() int {
	return len(r.items)
}

// Get returns the outcome for the named script.
func (r Results[O]) Get(name string) (Outcome[O], bool) {
	for _, o := range r.items {
		if o.Script == name {
			return o, true
		}
	}
	return Outcome[O]{}, false
}

// Outputs returns the successful outputs in registration order.
func (r Results[O]) Outputs() []O {
	out := make([]O, 0, len(r.items))
	for _, o := range r.items {
		if o.Err == nil {
			out = append(out, o.Output)
		}
	}
	return out
}

// Err joins every per-script failure, or returns nil.
func (r Results[O]) Err() error {
	var errs []error
	for _, o := range r.items {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}
