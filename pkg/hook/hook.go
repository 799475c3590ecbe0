// ABOUTME: Hook contract primitives shared by hosts and scripts
// ABOUTME: Kind identifies a hook; Def binds a kind to its input and output types

package hook

// Kind identifies a hook variant. It travels in every hook frame header so a
// script can tell whether it is listening without decoding the payload.
type Kind string

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// Def binds a hook kind to its input type I and output type O.
// Hosts and scripts import the same Def values from a shared contract package,
// so the output type of every hook is fixed at compile time on both sides.
type Def[I, O any] struct {
	kind Kind
}

// Define declares a hook of the given kind.
//
//	var Eval = hook.Define[EvalInput, string]("Eval")
func Define[I, O any](kind Kind) Def[I, O] {
	return Def[I, O]{kind: kind}
}

// Kind returns the hook kind.
func (d Def[I, O]) Kind() Kind { return d.kind }
