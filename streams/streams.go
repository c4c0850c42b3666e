// Package streams defines the random-stream capability layer of the
// reproduce module: per-stream get-state/set-state/seed operations for the
// general-purpose stream, the numeric-array stream and the tensor-computation
// backend streams (CPU plus one per accelerator device).
//
// The core (package rng) depends only on these interfaces, never on a
// concrete global, so alternate stream implementations -- or test doubles
// simulating a different accelerator topology -- can be injected through a
// Set.
package streams

import (
	"sync"

	"k8s.io/klog/v2"
)

// Stream is one independently seedable random sequence generator whose full
// state can be read and written.
type Stream interface {
	// State returns an opaque copy of the stream's current state.
	// It always succeeds.
	State() []byte

	// SetState overwrites the stream's state with one previously returned by
	// State.
	SetState(state []byte) error

	// Seed deterministically reseeds the stream.
	Seed(seed int64)

	// SeedRandom reseeds the stream from the nanosecond clock, the platform
	// default-seeding behavior.
	SeedRandom()
}

// General is the general-purpose stream: a Stream that can also be drawn
// from directly. Seed derivation for the tensor backend draws from it when
// no explicit seed was given.
type General interface {
	Stream

	// Uint64 draws the next 64 random bits, advancing the stream.
	Uint64() uint64

	// Intn draws a uniform integer in [0, n), advancing the stream.
	// It panics if n <= 0.
	Intn(n int) int
}

// Set aggregates the tracked ambient streams: general-purpose,
// numeric-array and the tensor-computation backend.
//
// Ambient stream state is process-global by nature: entering a scoped
// random context over a Set mutates state visible to every reader of that
// Set. Sets are not safe for concurrent use; the design assumes a
// single-threaded training loop with at most one active context per Set.
type Set struct {
	General General
	Numeric *NumericStream
	Tensor  Backend
}

// NewSet builds a stream set from explicitly provided streams. Use Default
// for the process-wide ambient set.
func NewSet(general General, numeric *NumericStream, tensor Backend) *Set {
	return &Set{General: general, Numeric: numeric, Tensor: tensor}
}

var (
	defaultSet     *Set
	defaultSetOnce sync.Once
)

// Default returns the process-wide ambient stream set, built on first use
// with clock-seeded host streams and the default registered tensor backend
// (see New).
func Default() *Set {
	defaultSetOnce.Do(func() {
		defaultSet = NewSet(NewGeneral(), NewNumeric(), New())
		klog.V(1).Infof("ambient RNG stream set initialized with tensor backend %q (%d device(s))",
			defaultSet.Tensor.Name(), defaultSet.Tensor.NumDevices())
	})
	return defaultSet
}
