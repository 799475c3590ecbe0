// ABOUTME: Functional options for building a dispatcher
// ABOUTME: Codec choice, per-delivery timeout, dynamic-library opt-in, event observers

package host

import (
	"time"

	"github.com/mauromedda/hookwire/pkg/codec"
)

// Option configures a Dispatcher.
type Option func(*config)

type config struct {
	codec          codec.Codec
	deliverTimeout time.Duration
	allowDylib     bool
	handlers       []func(Event)
}

func newConfig(opts []Option) config {
	cfg := config{codec: codec.Default}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.codec == nil {
		cfg.codec = codec.Default
	}
	return cfg
}

// WithCodec selects the codec used for every hook and output.
func WithCodec(c codec.Codec) Option {
	return func(cfg *config) {
		cfg.codec = c
	}
}

// WithDeliverTimeout bounds every handshake and delivery. Zero means no
// bound beyond the caller's context.
func WithDeliverTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.deliverTimeout = d
	}
}

// WithDynamicLibraries allows scripts that are loaded into the host process.
// A faulty library can crash the host, so this is off by default.
func WithDynamicLibraries() Option {
	return func(cfg *config) {
		cfg.allowDylib = true
	}
}

// WithEventHandler subscribes fn to dispatcher events from the start, so it
// also sees registration events.
func WithEventHandler(fn func(Event)) Option {
	return func(cfg *config) {
		cfg.handlers = append(cfg.handlers, fn)
	}
}
