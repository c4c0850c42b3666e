package streams

import (
	"time"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// NumericStream is the numeric-array stream: the same marshalable PCG state
// as the general-purpose stream, plus array-fill draws used for dataset
// shuffling and numeric initialization.
type NumericStream struct {
	src *rand.PCGSource
	rng *rand.Rand
}

// Compile-time check that NumericStream implements Stream.
var _ Stream = (*NumericStream)(nil)

// NewNumeric returns a clock-seeded numeric-array stream.
func NewNumeric() *NumericStream {
	s := &NumericStream{src: &rand.PCGSource{}}
	s.rng = rand.New(s.src)
	s.SeedRandom()
	return s
}

// State returns an opaque copy of the stream's current state.
func (s *NumericStream) State() []byte {
	return must.M1(s.src.MarshalBinary())
}

// SetState overwrites the stream's state with one previously returned by
// State.
func (s *NumericStream) SetState(state []byte) error {
	if err := s.src.UnmarshalBinary(state); err != nil {
		return errors.Wrap(err, "invalid numeric-array stream state")
	}
	return nil
}

// Seed deterministically reseeds the stream.
func (s *NumericStream) Seed(seed int64) {
	s.src.Seed(uint64(seed))
}

// SeedRandom reseeds the stream from the nanosecond clock.
func (s *NumericStream) SeedRandom() {
	s.src.Seed(uint64(time.Now().UTC().UnixNano()))
}

// Perm returns a random permutation of [0, n), advancing the stream.
// Typically used to shuffle an epoch's examples.
func (s *NumericStream) Perm(n int) []int {
	return s.rng.Perm(n)
}

// Uniform fills out with draws from the half-open interval [min, max),
// advancing the stream.
func (s *NumericStream) Uniform(min, max float64, out []float64) {
	dist := distuv.Uniform{Min: min, Max: max, Src: s.src}
	for i := range out {
		out[i] = dist.Rand()
	}
}

// Normal fills out with draws from a normal distribution with the given
// mean and standard deviation, advancing the stream.
func (s *NumericStream) Normal(mu, sigma float64, out []float64) {
	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}
	for i := range out {
		out[i] = dist.Rand()
	}
}
