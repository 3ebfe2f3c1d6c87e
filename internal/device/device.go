// internal/device/device.go
//
// Hardware capabilities consumed by the game engine.
// The engine never touches pins or timers directly; it is handed a Set of
// these interfaces. Implementations:
//   - sim:   virtual clock, scripted button, recording LED (tests, demo).
//   - panel: HTTP driven button and LED for hosts without GPIO.
//   - cmd/pico: TinyGo machine pins.
package device

import (
	"errors"
	"time"
)

// Actuator is a binary output, e.g. an LED.
type Actuator interface {
	SetActive() error
	SetInactive() error
}

// Sensor is a polled binary input, e.g. a push button. No debouncing is
// expected beyond what the signal codec does.
type Sensor interface {
	IsActive() (bool, error)
}

// Stopwatch measures one hold at a time.
// Start arms it with a safety cap; once max has passed Elapsed reports max.
type Stopwatch interface {
	Start(max time.Duration) error
	Elapsed() (time.Duration, error)
	Cancel() error
}

// Waiter blocks the caller for d.
type Waiter interface {
	Wait(d time.Duration)
}

// Entropy yields one pseudo-random 32-bit value per call.
type Entropy interface {
	NextU32() uint32
}

// Set is everything the engine needs from the platform.
type Set struct {
	LED     Actuator
	Button  Sensor
	Timer   Stopwatch
	Delay   Waiter
	Entropy Entropy
}

// ErrNotStarted is returned by a stopwatch read before Start.
var ErrNotStarted = errors.New("stopwatch not started")

// Validate reports the first missing capability.
func (s Set) Validate() error {
	switch {
	case s.LED == nil:
		return errors.New("device set: missing LED")
	case s.Button == nil:
		return errors.New("device set: missing button")
	case s.Timer == nil:
		return errors.New("device set: missing timer")
	case s.Delay == nil:
		return errors.New("device set: missing delay")
	case s.Entropy == nil:
		return errors.New("device set: missing entropy")
	}
	return nil
}

// SystemStopwatch is a Stopwatch on the monotonic wall clock.
type SystemStopwatch struct {
	started time.Time
	max     time.Duration
	running bool
	now     func() time.Time
}

// NewSystemStopwatch returns a stopwatch reading time.Now.
func NewSystemStopwatch() *SystemStopwatch {
	return &SystemStopwatch{now: time.Now}
}

func (s *SystemStopwatch) Start(max time.Duration) error {
	s.started = s.now()
	s.max = max
	s.running = true
	return nil
}

func (s *SystemStopwatch) Elapsed() (time.Duration, error) {
	if !s.running {
		return 0, ErrNotStarted
	}
	d := s.now().Sub(s.started)
	if s.max > 0 && d > s.max {
		d = s.max
	}
	return d, nil
}

func (s *SystemStopwatch) Cancel() error {
	s.running = false
	return nil
}

// SleepWaiter waits with time.Sleep.
type SleepWaiter struct{}

func (SleepWaiter) Wait(d time.Duration) { time.Sleep(d) }
