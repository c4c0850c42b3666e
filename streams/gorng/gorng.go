// Package gorng implements a portable, in-process tensor-computation RNG
// backend for the reproduce module.
//
// It exposes no accelerator devices by default, matching a host without
// accelerators. The config string option "devices=N" simulates N device
// streams -- which is also how tests exercise device topology changes.
package gorng

import (
	"strconv"
	"strings"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/reproduce/streams"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// BackendName to be used in REPRODUCE_RNG to specify this backend.
const BackendName = "go"

// Registers New() as the default constructor for the "go" backend.
func init() {
	streams.Register(BackendName, New)
}

// New constructs a new go Backend. The config string accepts a
// comma-separated list of options; only "devices=N" is defined.
func New(config string) streams.Backend {
	numDevices := 0
	for _, opt := range strings.Split(config, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		key, value, _ := strings.Cut(opt, "=")
		switch key {
		case "devices":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				exceptions.Panicf("gorng: invalid devices count %q in backend configuration %q", value, config)
			}
			numDevices = n
		default:
			exceptions.Panicf("gorng: unknown option %q in backend configuration %q", key, config)
		}
	}
	b := &Backend{
		cpu:     &rand.PCGSource{},
		devices: make([]*rand.PCGSource, numDevices),
	}
	for i := range b.devices {
		b.devices[i] = &rand.PCGSource{}
	}
	b.SeedRandom()
	return b
}

// Backend implements streams.Backend with one PCG stream for the CPU and one
// per simulated accelerator device.
type Backend struct {
	cpu     *rand.PCGSource
	devices []*rand.PCGSource
}

// Compile-time check that gorng.Backend implements streams.Backend.
var _ streams.Backend = &Backend{}

// Name returns the short name of the backend.
func (b *Backend) Name() string { return BackendName }

// NumDevices returns the number of simulated accelerator devices.
func (b *Backend) NumDevices() streams.DeviceNum {
	return streams.DeviceNum(len(b.devices))
}

// State returns an opaque copy of the CPU stream's current state.
func (b *Backend) State() []byte {
	return must.M1(b.cpu.MarshalBinary())
}

// SetState overwrites the CPU stream's state.
func (b *Backend) SetState(state []byte) error {
	if err := b.cpu.UnmarshalBinary(state); err != nil {
		return errors.Wrap(err, "invalid tensor CPU stream state")
	}
	return nil
}

// DeviceState returns an opaque copy of the given device's stream state.
func (b *Backend) DeviceState(device streams.DeviceNum) ([]byte, error) {
	if device < 0 || int(device) >= len(b.devices) {
		return nil, errors.WithStack(streams.DeviceTopologyMismatchError{
			Device: device, NumDevices: b.NumDevices()})
	}
	return must.M1(b.devices[device].MarshalBinary()), nil
}

// SetDeviceState overwrites the given device's stream state.
func (b *Backend) SetDeviceState(device streams.DeviceNum, state []byte) error {
	if device < 0 || int(device) >= len(b.devices) {
		return errors.WithStack(streams.DeviceTopologyMismatchError{
			Device: device, NumDevices: b.NumDevices()})
	}
	if err := b.devices[device].UnmarshalBinary(state); err != nil {
		return errors.Wrapf(err, "invalid tensor stream state for device #%d", device)
	}
	return nil
}

// Seed reseeds the CPU stream with seed and every device stream with a value
// derived from it, one draw per device in device order, so a single call
// reproducibly reseeds the whole backend.
func (b *Backend) Seed(seed int64) {
	b.cpu.Seed(uint64(seed))
	deriver := rand.NewSource(uint64(seed))
	for _, dev := range b.devices {
		dev.Seed(deriver.Uint64())
	}
}

// SeedRandom is Seed with a nanosecond-clock seed.
func (b *Backend) SeedRandom() {
	b.Seed(time.Now().UTC().UnixNano())
}
