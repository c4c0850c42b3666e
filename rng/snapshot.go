// Package rng provides deterministic, scoped control over the tracked
// random streams of a training pipeline: immutable snapshots of ambient RNG
// state, re-enterable random contexts that swap a private seeded state in
// and out of a scope, and the Reproducible holder bundling the usual three
// (data, init, model).
package rng

import (
	"github.com/gomlx/reproduce/streams"
	"github.com/pkg/errors"
)

// Snapshot is an immutable capture of the combined state of every tracked
// stream of a Set at one instant: general-purpose, numeric-array, tensor CPU
// and one entry per accelerator device present at capture time.
//
// Restoring a Snapshot writes the captured states back as ambient state; it
// never mutates the Snapshot, so restores are idempotent.
type Snapshot struct {
	general []byte
	numeric []byte
	tensor  []byte
	devices [][]byte
}

// Capture reads the current ambient state of every tracked stream of set,
// in fixed order: general-purpose, numeric-array, tensor CPU, then every
// device from 0 to NumDevices()-1. The device count is queried fresh on
// every call; a host without accelerators yields an empty per-device
// sequence.
func Capture(set *streams.Set) *Snapshot {
	s := &Snapshot{
		general: set.General.State(),
		numeric: set.Numeric.State(),
		tensor:  set.Tensor.State(),
	}
	numDevices := set.Tensor.NumDevices()
	s.devices = make([][]byte, 0, numDevices)
	for device := streams.DeviceNum(0); device < numDevices; device++ {
		state, err := set.Tensor.DeviceState(device)
		if err != nil {
			// The device was enumerated by NumDevices a moment ago.
			panic(errors.WithMessagef(err, "capturing tensor stream state of device #%d", device))
		}
		s.devices = append(s.devices, state)
	}
	return s
}

// NumDevices returns how many per-device tensor states the snapshot holds.
func (s *Snapshot) NumDevices() streams.DeviceNum {
	return streams.DeviceNum(len(s.devices))
}

// Restore writes the captured states back as set's ambient state, in the
// same fixed order they were captured.
//
// If the snapshot holds more per-device states than the backend now exposes,
// Restore fails with a streams.DeviceTopologyMismatchError before writing
// any per-device state, leaving every still-present device stream untouched.
// The general-purpose, numeric-array and tensor CPU streams will already
// have been restored by then.
func (s *Snapshot) Restore(set *streams.Set) error {
	if err := set.General.SetState(s.general); err != nil {
		return errors.WithMessage(err, "restoring general-purpose stream")
	}
	if err := set.Numeric.SetState(s.numeric); err != nil {
		return errors.WithMessage(err, "restoring numeric-array stream")
	}
	if err := set.Tensor.SetState(s.tensor); err != nil {
		return errors.WithMessage(err, "restoring tensor CPU stream")
	}
	if current := set.Tensor.NumDevices(); s.NumDevices() > current {
		return errors.WithStack(streams.DeviceTopologyMismatchError{
			Device:     current,
			NumDevices: current,
		})
	}
	for device, state := range s.devices {
		if err := set.Tensor.SetDeviceState(streams.DeviceNum(device), state); err != nil {
			return errors.WithMessagef(err, "restoring tensor stream of device #%d", device)
		}
	}
	return nil
}
