package rng

import (
	"github.com/caarlos0/env/v11"
	"github.com/gomlx/reproduce/streams"
	"github.com/pkg/errors"
)

// Config holds the three optional seeds of a training pipeline. A nil field
// means the corresponding context gets default seeding (see NewContext).
type Config struct {
	// DataSeed seeds the RNG used in shuffling the training data.
	DataSeed *int64 `env:"REPRODUCE_DATA_SEED"`

	// InitSeed seeds the RNG used in initializing the model.
	InitSeed *int64 `env:"REPRODUCE_INIT_SEED"`

	// ModelSeed seeds the RNG used in computing the model's training loss.
	// Only relevant with internal randomness in the model, e.g. with dropout.
	ModelSeed *int64 `env:"REPRODUCE_MODEL_SEED"`
}

// ConfigFromEnv reads the optional seeds from the environment variables
// named in the Config field tags. Unset variables leave the field nil.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parsing reproducibility seeds from the environment")
	}
	return cfg, nil
}

// Reproducible bundles the three independent random contexts of a training
// pipeline. Each is entered and exited by its own caller-determined scope
// elsewhere; beyond independent construction they share nothing but the
// ambient streams they all swap, so only one should be active at a time.
type Reproducible struct {
	// Data scopes training-data shuffling.
	Data *Context

	// Init scopes model weight initialization.
	Init *Context

	// Model scopes model-internal randomness during training.
	Model *Context
}

// NewReproducible builds the three contexts over set from cfg's seeds.
func NewReproducible(set *streams.Set, cfg Config) *Reproducible {
	return &Reproducible{
		Data:  NewContext(set, cfg.DataSeed),
		Init:  NewContext(set, cfg.InitSeed),
		Model: NewContext(set, cfg.ModelSeed),
	}
}
