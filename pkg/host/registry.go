// ABOUTME: Script registration: open a handle, handshake, validate, negotiate version
// ABOUTME: Per-candidate failures are collected so one bad script never blocks the rest

package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mauromedda/hookwire/internal/log"
	"github.com/mauromedda/hookwire/pkg/handle"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/version"
)

// Candidate is a script the host wants to register.
type Candidate struct {
	Path string
	Type hook.ScriptType
	Args []string
	// Env entries are appended to the host environment of process scripts.
	Env []string
	Dir string
}

func (c Candidate) command() handle.Command {
	return handle.Command{Path: c.Path, Args: c.Args, Env: c.Env, Dir: c.Dir}
}

// RegistrationError reports why a candidate was not registered.
type RegistrationError struct {
	Candidate Candidate
	Err       error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s script %s: %v", e.Candidate.Type, e.Candidate.Path, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

var errDuplicateName = errors.New("duplicate script name")

// Register builds a dispatcher from candidates, in order. The returned error
// joins a *RegistrationError per rejected candidate; the dispatcher holds
// every candidate that succeeded and is never nil.
func Register(ctx context.Context, candidates []Candidate, req *version.Requirement, opts ...Option) (*Dispatcher, error) {
	d := New(req, opts...)
	var errs []error
	for _, c := range candidates {
		if _, err := d.Add(ctx, c); err != nil {
			log.Warn("%v", err)
			errs = append(errs, err)
		}
	}
	return d, errors.Join(errs...)
}

// Add registers one more candidate. A name already taken by a daemon whose
// process has failed is re-registered in place, keeping its position;
// any other name clash is rejected.
func (d *Dispatcher) Add(ctx context.Context, c Candidate) (ScriptInfo, error) {
	fail := func(err error) (ScriptInfo, error) {
		return ScriptInfo{}, &RegistrationError{Candidate: c, Err: err}
	}

	h, err := d.open(c)
	if err != nil {
		return fail(err)
	}

	hsCtx, cancel := d.deliveryContext(ctx)
	start := time.Now()
	md, err := h.Handshake(hsCtx)
	cancel()
	if err != nil {
		h.Close()
		return fail(fmt.Errorf("handshake: %w", err))
	}
	if err := validate(c, md); err != nil {
		h.Close()
		return fail(err)
	}

	res := version.Negotiate(md.Version, d.req)
	rec := &record{
		meta:      md.Clone(),
		version:   res,
		state:     Active,
		handle:    h,
		candidate: c,
	}
	if !res.Accepted {
		rec.state = Inactive
		log.Warn("script %s registered inactive: %v", md.Name, res.Err())
	}

	d.mu.Lock()
	if old, ok := d.byName[md.Name]; ok {
		if !replaceable(old) {
			d.mu.Unlock()
			h.Close()
			return fail(fmt.Errorf("%w %q (already registered from %s)", errDuplicateName, md.Name, old.candidate.Path))
		}
		d.replace(old, rec)
		d.mu.Unlock()
		old.handle.Close()
		log.Info("script %s re-registered after daemon failure", md.Name)
	} else {
		d.scripts = append(d.scripts, rec)
		d.byName[md.Name] = rec
		d.mu.Unlock()
	}

	log.Debug("registered %s %s v%s (%s) in %v", c.Type, md.Name, md.Version, rec.state, time.Since(start))
	d.publish(Event{Type: EventRegistered, Script: md.Name, State: rec.state})
	return rec.info(), nil
}

// open builds the handle for c.
func (d *Dispatcher) open(c Candidate) (handle.Handle, error) {
	switch c.Type {
	case hook.OneShot:
		return handle.NewOneShot(c.command(), d.cfg.codec), nil
	case hook.Daemon:
		return handle.StartDaemon(c.command(), d.cfg.codec)
	case hook.DynamicLibrary:
		if !d.cfg.allowDylib {
			return nil, fmt.Errorf("%w: %s: %w", hook.ErrLoad, c.Path, hook.ErrDisabled)
		}
		return handle.OpenDynamicLibrary(c.Path, d.cfg.codec)
	default:
		return nil, fmt.Errorf("unknown script type %s", c.Type)
	}
}

func validate(c Candidate, md hook.Metadata) error {
	if md.Name == "" {
		return errors.New("script reported an empty name")
	}
	if md.Type != hook.Unknown && md.Type != c.Type {
		return fmt.Errorf("script %s reports type %s but was declared %s", md.Name, md.Type, c.Type)
	}
	return nil
}

// replaceable reports whether a registered record may be taken over by a
// new registration of the same name.
func replaceable(r *record) bool {
	dm, ok := r.handle.(*handle.Daemon)
	return ok && dm.Failed() != nil
}

// replace swaps old for rec in place. Callers hold d.mu.
func (d *Dispatcher) replace(old, rec *record) {
	for i, r := range d.scripts {
		if r == old {
			d.scripts[i] = rec
			break
		}
	}
	d.byName[rec.meta.Name] = rec
}
