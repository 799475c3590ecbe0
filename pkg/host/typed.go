// ABOUTME: Typed entry points: encode the hook, deliver, decode the outputs
// ABOUTME: Input and output types come from the hook.Def, so callers cannot mix them up

package host

import (
	"context"
	"fmt"

	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
)

// Execute broadcasts in to every active script listening for def's kind.
// The error is only for encoding in; per-script failures are in the results.
func Execute[I, O any](ctx context.Context, d *Dispatcher, def hook.Def[I, O], in I) (Results[O], error) {
	payload, err := codec.Encode(d.cfg.codec, in)
	if err != nil {
		return Results[O]{}, err
	}
	raw := d.ExecuteRaw(ctx, def.Kind(), payload)

	res := Results[O]{items: make([]Outcome[O], 0, raw.Len())}
	for _, o := range raw.items {
		typed := Outcome[O]{Script: o.Script, Err: o.Err}
		if o.Err == nil {
			out, err := codec.Decode[O](d.cfg.codec, o.Output)
			if err != nil {
				typed.Err = fmt.Errorf("script %s: %w", o.Script, err)
			}
			typed.Output = out
		}
		res.items = append(res.items, typed)
	}
	return res, nil
}

// Trigger delivers in to the named script whatever its state and returns
// its output. It fails with hook.ErrNotFound or hook.ErrNotListening before
// anything is sent.
func Trigger[I, O any](ctx context.Context, d *Dispatcher, name string, def hook.Def[I, O], in I) (O, error) {
	var zero O
	r, err := d.target(name, def.Kind())
	if err != nil {
		return zero, err
	}
	payload, err := codec.Encode(d.cfg.codec, in)
	if err != nil {
		return zero, err
	}
	out, err := d.deliver(ctx, r, def.Kind(), payload)
	if err != nil {
		return zero, err
	}
	v, err := codec.Decode[O](d.cfg.codec, out)
	if err != nil {
		return zero, fmt.Errorf("script %s: %w", name, err)
	}
	return v, nil
}
