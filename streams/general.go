package streams

import (
	"time"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// GeneralStream is the general-purpose pseudo-random stream. It is backed by
// a PCG source whose full state is marshalable, which gives the
// get-full-state/set-full-state primitive snapshots are built on.
type GeneralStream struct {
	src *rand.PCGSource
	rng *rand.Rand
}

// Compile-time check that GeneralStream implements General.
var _ General = (*GeneralStream)(nil)

// NewGeneral returns a clock-seeded general-purpose stream.
func NewGeneral() *GeneralStream {
	s := &GeneralStream{src: &rand.PCGSource{}}
	s.rng = rand.New(s.src)
	s.SeedRandom()
	return s
}

// State returns an opaque copy of the stream's current state.
func (s *GeneralStream) State() []byte {
	// PCGSource.MarshalBinary never fails.
	return must.M1(s.src.MarshalBinary())
}

// SetState overwrites the stream's state with one previously returned by
// State.
func (s *GeneralStream) SetState(state []byte) error {
	if err := s.src.UnmarshalBinary(state); err != nil {
		return errors.Wrap(err, "invalid general-purpose stream state")
	}
	return nil
}

// Seed deterministically reseeds the stream.
func (s *GeneralStream) Seed(seed int64) {
	s.src.Seed(uint64(seed))
}

// SeedRandom reseeds the stream from the nanosecond clock.
func (s *GeneralStream) SeedRandom() {
	s.src.Seed(uint64(time.Now().UTC().UnixNano()))
}

// Uint64 draws the next 64 random bits, advancing the stream.
func (s *GeneralStream) Uint64() uint64 {
	return s.rng.Uint64()
}

// Intn draws a uniform integer in [0, n), advancing the stream.
// It panics if n <= 0.
func (s *GeneralStream) Intn(n int) int {
	return s.rng.Intn(n)
}
