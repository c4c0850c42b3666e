package rng

import (
	"github.com/gomlx/reproduce/streams"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// AlreadyActiveError is returned by Context.Enter when the context is
// already active. It indicates a usage bug -- a missing Exit or an
// unintended nested entry -- and the failed Enter leaves ambient state
// unchanged.
type AlreadyActiveError struct{}

func (AlreadyActiveError) Error() string {
	return "random context is already active; it must be exited before it can be entered again"
}

// Context forces a known, seed-derived RNG state on every tracked stream for
// the duration of a scope, and restores the previous ambient state exactly
// on exit.
//
// The state that evolves inside the scope is kept: the next Enter resumes
// the private sequence where the previous Exit left it, instead of replaying
// from the seed. Random draws outside the scope never disturb the private
// sequence, and draws inside never leak into ambient state.
//
// A Context may be active at most once at a time. Because ambient stream
// state is shared, at most one context should be active per Set at any
// instant -- this is enforced per instance by the activity flag, not
// globally. Contexts are not safe for concurrent use.
type Context struct {
	set     *streams.Set
	inside  *Snapshot
	outside *Snapshot
	active  bool
}

// Seed returns a pointer to v, for filling optional seed arguments and
// Config fields.
func Seed(v int64) *int64 { return &v }

// NewContext creates a Context over set's streams, pre-seeded from seed.
//
// A nil seed means default seeding: the general-purpose and numeric-array
// streams are reseeded from the clock, and the tensor backend from a fresh
// 64-bit draw off the just-reseeded general-purpose stream -- so the tensor
// sequence is still reproducible relative to the general-purpose one even
// when no explicit seed was given. The reseed of the general-purpose stream
// happens before that draw; changing this order would silently change the
// reproducibility semantics of unseeded runs.
//
// Construction precomputes and stores the seeded inside state and then puts
// ambient state back exactly as it was: it has no observable effect on the
// ambient streams.
func NewContext(set *streams.Set, seed *int64) *Context {
	outside := Capture(set)

	if seed == nil {
		set.General.SeedRandom()
		set.Numeric.SeedRandom()
		set.Tensor.Seed(int64(set.General.Uint64()))
	} else {
		set.General.Seed(*seed)
		set.Numeric.Seed(*seed)
		set.Tensor.Seed(*seed)
	}
	c := &Context{
		set:    set,
		inside: Capture(set),
	}

	if err := outside.Restore(set); err != nil {
		// The topology cannot have changed between the two lines above.
		panic(errors.WithMessage(err, "restoring ambient RNG state after random context construction"))
	}
	return c
}

// IsActive reports whether the context has been entered and not yet exited.
func (c *Context) IsActive() bool { return c.active }

// Enter swaps the ambient state of every tracked stream for this context's
// private state: all subsequent random draws in the process follow the
// deterministic sequence seeded at construction, or continued from the
// previous Exit.
//
// It fails with an AlreadyActiveError if the context is already active;
// ambient state is untouched in that case. Every successful Enter must be
// paired with exactly one Exit -- prefer Run, which guarantees the pairing
// on error and panic paths too.
func (c *Context) Enter() error {
	if c.active {
		return errors.WithStack(AlreadyActiveError{})
	}
	c.outside = Capture(c.set)
	if err := c.inside.Restore(c.set); err != nil {
		c.outside = nil
		return errors.WithMessage(err, "entering random context")
	}
	c.active = true
	klog.V(2).Info("random context entered")
	return nil
}

// Exit stores the ambient state that evolved during the scope as the
// context's new private state, then restores the ambient state captured by
// Enter and releases it.
//
// A restore failure here is fatal for the scope and propagated, never
// retried: silently leaving ambient RNG state corrupted would be worse than
// aborting.
func (c *Context) Exit() error {
	if !c.active {
		return errors.Errorf("random context exited without a matching enter")
	}
	c.inside = Capture(c.set)
	outside := c.outside
	c.outside = nil
	c.active = false
	if err := outside.Restore(c.set); err != nil {
		return errors.WithMessage(err, "exiting random context")
	}
	klog.V(2).Info("random context exited")
	return nil
}

// Run executes body between Enter and Exit. Once the body has started, Exit
// always runs exactly once -- also when the body returns an error or
// panics -- so ambient state is restored on every path. The body's error
// takes precedence over an Exit error.
func (c *Context) Run(body func() error) (err error) {
	if err = c.Enter(); err != nil {
		return err
	}
	defer func() {
		exitErr := c.Exit()
		if err == nil {
			err = exitErr
		}
	}()
	return body()
}
