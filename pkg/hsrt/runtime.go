// SPDX-License-Identifier: MPL-2.0

package hsrt

import (
	"slices"
	"sync"
)

const (
	// StateUninitialized means hs_init has not been called yet.
	StateUninitialized State = iota
	// StateRunning means hs_init has been called and hs_exit has not.
	StateRunning
	// StateFinalized means hs_exit has been called (terminal state).
	StateFinalized
)

var (
	processMu    sync.Mutex
	processState State
)

type (
	// State is the process-wide lifecycle state of the GHC runtime.
	State int32

	// Lifecycle performs the actual runtime calls. Generated bindings
	// implement it with hs_init and hs_exit.
	Lifecycle interface {
		Init(args []string)
		Exit()
	}

	// Runtime is a handle on the running GHC runtime. Foreign calls go
	// through Call; Close shuts the runtime down. Only Start makes a usable
	// Runtime: a zero value or nil pointer refuses every call.
	Runtime struct {
		_ noCopy

		lc        Lifecycle
		mu        sync.RWMutex
		closed    bool
		closeOnce sync.Once
	}

	// noCopy makes go vet's copylocks check reject copies of Runtime.
	noCopy struct{}
)

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// CurrentState returns the process-wide runtime state.
func CurrentState() State {
	processMu.Lock()
	defer processMu.Unlock()
	return processState
}

// Start initialises the GHC runtime through lc and returns the handle that
// must eventually be closed.
func Start(lc Lifecycle, opts ...Option) (*Runtime, error) {
	if lc == nil {
		return nil, ErrNilLifecycle
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	args := slices.Clone(o.args)
	if args == nil {
		args = []string{}
	}

	processMu.Lock()
	defer processMu.Unlock()

	switch processState {
	case StateRunning:
		return nil, ErrAlreadyRunning
	case StateFinalized:
		return nil, ErrFinalized
	}

	lc.Init(args)
	processState = StateRunning
	return &Runtime{lc: lc}, nil
}

// Run starts the runtime, calls fn and shuts the runtime down when fn
// returns, fails or panics. A panic from fn is re-raised after shutdown.
func Run(lc Lifecycle, fn func(*Runtime) error, opts ...Option) error {
	rt, err := Start(lc, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	return fn(rt)
}

// Call runs fn while the runtime is guaranteed to be up. Close waits for
// in-flight calls. fn must not call Close.
func (r *Runtime) Call(fn func()) error {
	if r == nil {
		return ErrNotRunning
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.started() || r.closed {
		return ErrNotRunning
	}
	fn()
	return nil
}

// Running reports whether r came from Start and Close has not been called.
func (r *Runtime) Running() bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.started() && !r.closed
}

// started reports whether Start produced r. lc is set once, before r is
// handed out, and never changes.
func (r *Runtime) started() bool {
	return r.lc != nil
}

// Close shuts the runtime down. Only the first call has an effect, and
// closing a Runtime that Start did not return does nothing.
func (r *Runtime) Close() error {
	if r == nil || !r.started() {
		return nil
	}
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		r.lc.Exit()

		processMu.Lock()
		processState = StateFinalized
		processMu.Unlock()
	})
	return nil
}
