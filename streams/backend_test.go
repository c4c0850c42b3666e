package streams

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// stubBackend records the config it was built with; the stream operations
// are irrelevant to the registry tests.
type stubBackend struct {
	Backend
	config string
}

func (b *stubBackend) Name() string { return "stub" }

func TestBackendRegistry(t *testing.T) {
	Register("stub", func(config string) Backend {
		return &stubBackend{config: config}
	})

	b := NewWithConfig("stub:devices=3")
	require.Equal(t, "stub", b.Name())
	require.Equal(t, "devices=3", b.(*stubBackend).config)

	// A bare config string selects the first registered backend.
	b = NewWithConfig("some-config")
	require.Equal(t, "some-config", b.(*stubBackend).config)

	require.Panics(t, func() { NewWithConfig("no-such-backend:") })
}

func TestBackendFromEnv(t *testing.T) {
	Register("stub", func(config string) Backend {
		return &stubBackend{config: config}
	})
	t.Setenv(REPRODUCE_RNG, "stub:from-env")
	b := New()
	require.Equal(t, "from-env", b.(*stubBackend).config)
}

func TestDeviceTopologyMismatchError(t *testing.T) {
	err := errors.WithStack(DeviceTopologyMismatchError{Device: 1, NumDevices: 1})
	var mismatch DeviceTopologyMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, DeviceNum(1), mismatch.Device)
	require.Contains(t, err.Error(), "device #1 out of range")
}
