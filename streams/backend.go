package streams

import (
	"fmt"
	"os"
	"strings"

	"github.com/gomlx/exceptions"
)

// DeviceNum identifies one accelerator device of the tensor-computation
// backend. It's up to the backend to interpret it, but it should be between
// 0 and Backend.NumDevices()-1.
type DeviceNum int

// Backend is the tensor-computation RNG subsystem: one CPU stream plus one
// stream per accelerator device.
//
// Reading state always succeeds for devices that are present; writing a
// per-device state fails with a DeviceTopologyMismatchError if the device is
// gone. This asymmetry is deliberate: capture is always safe, restore is not
// if the device topology shrank in between.
type Backend interface {
	// Name returns the short name of the backend. E.g.: "go" for the portable
	// in-process backend.
	Name() string

	// NumDevices returns the number of accelerator devices currently
	// available. It is queried fresh by every snapshot capture.
	NumDevices() DeviceNum

	// State returns an opaque copy of the CPU stream's current state.
	State() []byte

	// SetState overwrites the CPU stream's state.
	SetState(state []byte) error

	// DeviceState returns an opaque copy of the given device's stream state.
	DeviceState(device DeviceNum) ([]byte, error)

	// SetDeviceState overwrites the given device's stream state. It returns a
	// DeviceTopologyMismatchError if the device is not present.
	SetDeviceState(device DeviceNum, state []byte) error

	// Seed reseeds the CPU stream and, as a side effect of the same call,
	// every device stream, all deterministically derived from the one seed.
	Seed(seed int64)

	// SeedRandom is Seed with a nanosecond-clock seed.
	SeedRandom()
}

// DeviceTopologyMismatchError reports a per-device stream state that
// references a device no longer present: the accelerator environment changed
// between capture and restore. It is fatal for the restore that hit it and
// never retried.
type DeviceTopologyMismatchError struct {
	// Device is the out-of-range device ordinal.
	Device DeviceNum

	// NumDevices is the number of devices the backend currently exposes.
	NumDevices DeviceNum
}

func (e DeviceTopologyMismatchError) Error() string {
	return fmt.Sprintf("device #%d out of range: the tensor RNG backend currently exposes %d device(s)",
		e.Device, e.NumDevices)
}

// Constructor takes a config string (optionally empty) and returns a Backend.
type Constructor func(config string) Backend

var (
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register backend with the given name, and a default constructor that takes
// as input a configuration string that is passed along to the backend
// constructor.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// DefaultConfig is the name of the default backend configuration to use if
// specified.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// REPRODUCE_RNG is the environment variable with the default backend
// configuration to use.
//
// The format of config is "<backend_name>:<backend_configuration>".
// The "<backend_name>" is the name of a registered backend (e.g.: "go") and
// "<backend_configuration>" is backend specific (e.g.: for the go backend,
// "devices=2" simulates two accelerator devices).
const REPRODUCE_RNG = "REPRODUCE_RNG"

// New returns a new default tensor RNG Backend.
//
// The default is:
//
// 1. The environment REPRODUCE_RNG is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered backend is used with an empty configuration.
//
// It panics if no backend was registered.
func New() Backend {
	config, found := os.LookupEnv(REPRODUCE_RNG)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// NewWithConfig takes a configuration string formatted as
// "<backend_name>:<backend_configuration>", where "<backend_name>" is the
// name of a registered backend and "<backend_configuration>" is backend
// specific.
func NewWithConfig(config string) Backend {
	if len(registeredConstructors) == 0 {
		exceptions.Panicf(`no registered tensor RNG backends -- maybe import the default portable one with import _ "github.com/gomlx/reproduce/streams/gorng"?`)
	}
	backendName := firstRegistered
	backendConfig := config
	if idx := strings.Index(config, ":"); idx != -1 {
		backendName = config[:idx]
		backendConfig = config[idx+1:]
	}
	constructor, found := registeredConstructors[backendName]
	if !found {
		exceptions.Panicf("can't find tensor RNG backend %q for configuration %q given", backendName, config)
	}
	return constructor(backendConfig)
}
