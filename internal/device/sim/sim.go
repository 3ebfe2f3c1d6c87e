// internal/device/sim/sim.go
//
// Simulated hardware on a virtual clock.
// Responsibilities:
//   - Clock/Waiter/Stopwatch: time only moves when the engine waits.
//   - LED: records every pulse it shows.
//   - Button: replays scripted holds against the clock.
//   - Entropy: replays scripted values.
//
// Notes:
//   - Nothing here is safe for concurrent use; the engine is single threaded.
//   - A hold covers [start, start+For): polled at start+For the button is up.
package sim

import (
	"errors"
	"time"

	"github.com/robalobadob/morse/internal/device"
)

// ErrScriptExhausted is returned by Button.IsActive once the script has run
// dry for longer than IdleLimit. It keeps a broken test from spinning forever.
var ErrScriptExhausted = errors.New("sim: button script exhausted")

// Clock is virtual time since the rig was built.
type Clock struct {
	now time.Duration
}

func (c *Clock) Now() time.Duration     { return c.now }
func (c *Clock) Advance(d time.Duration) { c.now += d }

// Waiter advances the clock instead of sleeping.
type Waiter struct {
	clock *Clock
	Total time.Duration // sum of all waits
}

func (w *Waiter) Wait(d time.Duration) {
	w.clock.Advance(d)
	w.Total += d
}

// Stopwatch reads the virtual clock.
type Stopwatch struct {
	clock   *Clock
	start   time.Duration
	max     time.Duration
	running bool

	Starts  int
	Cancels int
	Err     error // returned by every call when set
}

func (s *Stopwatch) Start(max time.Duration) error {
	if s.Err != nil {
		return s.Err
	}
	s.start, s.max, s.running = s.clock.now, max, true
	s.Starts++
	return nil
}

func (s *Stopwatch) Elapsed() (time.Duration, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	if !s.running {
		return 0, device.ErrNotStarted
	}
	d := s.clock.now - s.start
	if s.max > 0 && d > s.max {
		d = s.max
	}
	return d, nil
}

func (s *Stopwatch) Cancel() error {
	if s.Err != nil {
		return s.Err
	}
	s.running = false
	s.Cancels++
	return nil
}

// Pulse is one completed active period of the LED.
type Pulse struct {
	At  time.Duration
	For time.Duration
}

// LED records pulses.
type LED struct {
	clock *Clock
	on    bool
	since time.Duration

	Pulses []Pulse
	Err    error       // returned by every call when set
	OnDone func(Pulse) // called for every completed pulse
}

func (l *LED) SetActive() error {
	if l.Err != nil {
		return l.Err
	}
	if !l.on {
		l.on, l.since = true, l.clock.now
	}
	return nil
}

func (l *LED) SetInactive() error {
	if l.Err != nil {
		return l.Err
	}
	if l.on {
		p := Pulse{At: l.since, For: l.clock.now - l.since}
		l.on = false
		l.Pulses = append(l.Pulses, p)
		if l.OnDone != nil {
			l.OnDone(p)
		}
	}
	return nil
}

// On reports whether the LED is lit.
func (l *LED) On() bool { return l.on }

// Hold is one scripted button press: After the previous hold ends (or after
// now, if later), the button is held For.
type Hold struct {
	After time.Duration
	For   time.Duration
}

type window struct{ start, end time.Duration }

// Button replays holds.
type Button struct {
	clock   *Clock
	windows []window
	queued  []Hold

	Polls     int
	IdleLimit time.Duration
	Err       error  // returned by every call when set
	OnPoll    func() // runs before each poll is evaluated
}

// Press appends holds to the script.
func (b *Button) Press(holds ...Hold) {
	for _, h := range holds {
		base := b.clock.now
		if n := len(b.windows); n > 0 && b.windows[n-1].end > base {
			base = b.windows[n-1].end
		}
		start := base + h.After
		b.windows = append(b.windows, window{start: start, end: start + h.For})
	}
}

// Queue holds to be scripted at the next poll, so they start relative to
// the moment the engine begins listening rather than to now.
func (b *Button) Queue(holds ...Hold) {
	b.queued = append(b.queued, holds...)
}

// Holding reports whether a scripted hold covers t.
func (b *Button) Holding(t time.Duration) bool {
	for _, w := range b.windows {
		if t >= w.start && t < w.end {
			return true
		}
	}
	return false
}

// Pending reports whether any scripted hold has not finished yet.
func (b *Button) Pending() bool {
	n := len(b.windows)
	return n > 0 && b.windows[n-1].end > b.clock.now
}

func (b *Button) IsActive() (bool, error) {
	if b.Err != nil {
		return false, b.Err
	}
	if b.OnPoll != nil {
		b.OnPoll()
	}
	if len(b.queued) > 0 {
		b.Press(b.queued...)
		b.queued = nil
	}
	b.Polls++
	now := b.clock.now
	var last time.Duration
	if n := len(b.windows); n > 0 {
		last = b.windows[n-1].end
	}
	if b.IdleLimit > 0 && now > last+b.IdleLimit {
		return false, ErrScriptExhausted
	}
	return b.Holding(now), nil
}

// Entropy replays Values in order, wrapping around.
type Entropy struct {
	Values []uint32
	Draws  int
}

func (e *Entropy) NextU32() uint32 {
	if len(e.Values) == 0 {
		e.Draws++
		return 0
	}
	v := e.Values[e.Draws%len(e.Values)]
	e.Draws++
	return v
}

// Rig is a complete simulated device.
type Rig struct {
	Clock   *Clock
	LED     *LED
	Button  *Button
	Timer   *Stopwatch
	Delay   *Waiter
	Entropy *Entropy
}

// New builds a rig whose button gives up after one idle virtual minute.
func New(values ...uint32) *Rig {
	c := &Clock{}
	return &Rig{
		Clock:   c,
		LED:     &LED{clock: c},
		Button:  &Button{clock: c, IdleLimit: time.Minute},
		Timer:   &Stopwatch{clock: c},
		Delay:   &Waiter{clock: c},
		Entropy: &Entropy{Values: values},
	}
}

// Set exposes the rig as engine capabilities.
func (r *Rig) Set() device.Set {
	return device.Set{
		LED:     r.LED,
		Button:  r.Button,
		Timer:   r.Timer,
		Delay:   r.Delay,
		Entropy: r.Entropy,
	}
}
