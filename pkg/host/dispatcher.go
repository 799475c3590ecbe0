// ABOUTME: Dispatcher: owns registered scripts and routes hooks to them
// ABOUTME: Broadcast execution, targeted triggers, lifecycle and shutdown

// Package host is the host-application side of hookwire: it registers
// scripts, negotiates their versions and delivers typed hooks to them.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/hookwire/internal/eventbus"
	"github.com/mauromedda/hookwire/internal/log"
	"github.com/mauromedda/hookwire/internal/suggest"
	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/handle"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/version"
)

// State says whether a script takes part in broadcast executions.
type State uint8

const (
	// Active scripts receive broadcasts and triggers.
	Active State = iota + 1
	// Inactive scripts only receive explicit triggers.
	Inactive
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// ScriptInfo is a read-only snapshot of a registered script.
type ScriptInfo struct {
	Metadata hook.Metadata
	State    State
	Path     string
	// Version is the negotiation outcome recorded at registration.
	Version version.Result
	// Failed is set once a daemon handle has become unusable.
	Failed error
}

type record struct {
	meta      hook.Metadata
	version   version.Result
	state     State
	handle    handle.Handle
	candidate Candidate
}

func (r *record) info() ScriptInfo {
	info := ScriptInfo{
		Metadata: r.meta.Clone(),
		State:    r.state,
		Path:     r.candidate.Path,
		Version:  r.version,
	}
	if dm, ok := r.handle.(*handle.Daemon); ok {
		info.Failed = dm.Failed()
	}
	return info
}

// Dispatcher owns a set of registered scripts. Dispatchers are independent
// of each other; there is no global registry.
type Dispatcher struct {
	cfg    config
	req    *version.Requirement
	events *eventbus.Bus[Event]

	mu      sync.RWMutex
	scripts []*record
	byName  map[string]*record
}

// New returns an empty dispatcher enforcing req. A nil req accepts every
// well-formed version.
func New(req *version.Requirement, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    newConfig(opts),
		req:    req,
		events: eventbus.New[Event](),
		byName: make(map[string]*record),
	}
	for _, fn := range d.cfg.handlers {
		d.events.Subscribe(fn)
	}
	return d
}

// Codec returns the codec hooks are encoded with.
func (d *Dispatcher) Codec() codec.Codec { return d.cfg.codec }

// Requirement returns the version requirement scripts are checked against.
func (d *Dispatcher) Requirement() *version.Requirement { return d.req }

// Subscribe registers fn for dispatcher events and returns an unsubscribe
// function.
func (d *Dispatcher) Subscribe(fn func(Event)) func() {
	return d.events.Subscribe(fn)
}

func (d *Dispatcher) publish(e Event) {
	d.events.Publish(e)
}

func (d *Dispatcher) deliveryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.deliverTimeout > 0 {
		return context.WithTimeout(ctx, d.cfg.deliverTimeout)
	}
	return context.WithCancel(ctx)
}

// Len returns the number of registered scripts.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.scripts)
}

// Scripts returns every registered script in registration order.
func (d *Dispatcher) Scripts() []ScriptInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]ScriptInfo, len(d.scripts))
	for i, r := range d.scripts {
		out[i] = r.info()
	}
	return out
}

// Script returns the named script.
func (d *Dispatcher) Script(name string) (ScriptInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.byName[name]
	if !ok {
		return ScriptInfo{}, false
	}
	return r.info(), true
}

// Names returns script names in registration order.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.namesLocked()
}

func (d *Dispatcher) namesLocked() []string {
	names := make([]string, len(d.scripts))
	for i, r := range d.scripts {
		names[i] = r.meta.Name
	}
	return names
}

// IsListeningFor reports whether the named script declared interest in kind.
func (d *Dispatcher) IsListeningFor(name string, kind hook.Kind) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.byName[name]
	return ok && r.meta.Listens(kind)
}

// notFound builds an ErrNotFound error with a spelling suggestion. Callers
// hold d.mu for reading.
func (d *Dispatcher) notFound(name string) error {
	if guess, ok := suggest.Closest(name, d.namesLocked()); ok {
		return fmt.Errorf("%w: %q (did you mean %q?)", hook.ErrNotFound, name, guess)
	}
	return fmt.Errorf("%w: %q", hook.ErrNotFound, name)
}

// Activate includes the script in broadcasts again. Activating a script whose
// version was rejected is allowed but logged.
func (d *Dispatcher) Activate(name string) error {
	return d.setState(name, Active)
}

// Deactivate excludes the script from broadcasts; triggers still reach it.
func (d *Dispatcher) Deactivate(name string) error {
	return d.setState(name, Inactive)
}

func (d *Dispatcher) setState(name string, s State) error {
	d.mu.Lock()
	r, ok := d.byName[name]
	if !ok {
		err := d.notFound(name)
		d.mu.Unlock()
		return err
	}
	changed := r.state != s
	r.state = s
	rejected := !r.version.Accepted
	d.mu.Unlock()

	if s == Active && rejected {
		log.Warn("activating %s despite version mismatch: %v", name, r.version.Err())
	}
	if changed {
		d.publish(Event{Type: EventStateChanged, Script: name, State: s})
	}
	return nil
}

// Unregister removes the script and closes its handle.
func (d *Dispatcher) Unregister(name string) error {
	d.mu.Lock()
	r, ok := d.byName[name]
	if !ok {
		err := d.notFound(name)
		d.mu.Unlock()
		return err
	}
	delete(d.byName, name)
	for i, s := range d.scripts {
		if s == r {
			d.scripts = append(d.scripts[:i:i], d.scripts[i+1:]...)
			break
		}
	}
	d.mu.Unlock()

	err := r.handle.Close()
	d.publish(Event{Type: EventUnregistered, Script: name, Err: err})
	return err
}

// ExecuteRaw delivers an already-encoded hook to every active script that
// listens for kind, one after another in registration order. The payload
// must be encoded with d.Codec().
func (d *Dispatcher) ExecuteRaw(ctx context.Context, kind hook.Kind, payload []byte) Results[[]byte] {
	d.mu.RLock()
	targets := make([]*record, 0, len(d.scripts))
	for _, r := range d.scripts {
		if r.state == Active && r.meta.Listens(kind) {
			targets = append(targets, r)
		}
	}
	d.mu.RUnlock()

	res := Results[[]byte]{items: make([]Outcome[[]byte], 0, len(targets))}
	for _, r := range targets {
		out, err := d.deliver(ctx, r, kind, payload)
		res.items = append(res.items, Outcome[[]byte]{Script: r.meta.Name, Output: out, Err: err})
	}
	return res
}

// TriggerRaw delivers an already-encoded hook to one script regardless of
// its state. Nothing is sent when the script is unknown or not listening.
func (d *Dispatcher) TriggerRaw(ctx context.Context, name string, kind hook.Kind, payload []byte) ([]byte, error) {
	r, err := d.target(name, kind)
	if err != nil {
		return nil, err
	}
	return d.deliver(ctx, r, kind, payload)
}

func (d *Dispatcher) target(name string, kind hook.Kind) (*record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.byName[name]
	if !ok {
		return nil, d.notFound(name)
	}
	if !r.meta.Listens(kind) {
		return nil, fmt.Errorf("%w: %s does not listen for %q", hook.ErrNotListening, name, kind)
	}
	return r, nil
}

func (d *Dispatcher) deliver(ctx context.Context, r *record, kind hook.Kind, payload []byte) ([]byte, error) {
	ctx, cancel := d.deliveryContext(ctx)
	defer cancel()

	start := time.Now()
	out, err := r.handle.Deliver(ctx, handle.Request{Kind: kind, Codec: d.cfg.codec.ID(), Payload: payload})
	elapsed := time.Since(start)
	if err != nil {
		err = fmt.Errorf("script %s: %w", r.meta.Name, err)
		log.Debug("%s -> %s failed after %v: %v", kind, r.meta.Name, elapsed, err)
		d.publish(Event{Type: EventFailed, Script: r.meta.Name, Kind: kind, Err: err, Duration: elapsed})
		return nil, err
	}
	log.Debug("%s -> %s in %v", kind, r.meta.Name, elapsed)
	d.publish(Event{Type: EventDelivered, Script: r.meta.Name, Kind: kind, Duration: elapsed})
	return out, nil
}

// Shutdown closes every handle concurrently and empties the dispatcher.
// Each script's EventUnregistered is published as soon as its handle is
// closed. It returns the joined close errors, or ctx's error if closing
// outlives ctx; in that case the remaining closes keep running in the
// background and still publish their events when they finish.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	recs := d.scripts
	d.scripts = nil
	d.byName = make(map[string]*record)
	d.mu.Unlock()

	errs := make([]error, len(recs))
	var g errgroup.Group
	for i, r := range recs {
		g.Go(func() error {
			err := r.handle.Close()
			if err != nil {
				errs[i] = fmt.Errorf("close %s: %w", r.meta.Name, err)
			}
			d.publish(Event{Type: EventUnregistered, Script: r.meta.Name, Err: err})
			return errs[i]
		})
	}

	done := make(chan struct{})
	go func() {
		// Every close error is kept in errs; Wait only signals completion.
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("shutdown: %w", ctx.Err())
	}
	return errors.Join(errs...)
}
