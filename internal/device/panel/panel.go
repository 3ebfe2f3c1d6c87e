// internal/device/panel/panel.go
//
// Virtual front panel for hosts without GPIO.
// The button is pressed and released by HTTP requests; LED changes are fanned
// out to subscribers (the websocket handler). Panel implements
// device.Actuator and device.Sensor.
//
// Notes:
//   - The engine polls IsActive from its own goroutine; Press/Release come from
//     HTTP handlers. The button state is an atomic, the LED and subscriber
//     set share a mutex.
//   - A subscriber that cannot keep up misses events rather than stalling
//     playback.
package panel

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const subscriberBuffer = 32

// Event is one LED transition.
type Event struct {
	LED bool      `json:"led"`
	At  time.Time `json:"at"`
}

// Panel is a virtual LED + button.
type Panel struct {
	pressed atomic.Bool

	mu   sync.Mutex
	led  bool
	subs map[chan Event]struct{}
	now  func() time.Time
}

// New returns a panel with the LED off and the button up.
func New() *Panel {
	return &Panel{subs: make(map[chan Event]struct{}), now: time.Now}
}

func (p *Panel) SetActive() error   { p.setLED(true); return nil }
func (p *Panel) SetInactive() error { p.setLED(false); return nil }

func (p *Panel) IsActive() (bool, error) { return p.pressed.Load(), nil }

// Press holds the virtual button down.
func (p *Panel) Press() { p.pressed.Store(true) }

// Release lets go of the virtual button.
func (p *Panel) Release() { p.pressed.Store(false) }

// Pressed reports the button state.
func (p *Panel) Pressed() bool { return p.pressed.Load() }

// LED reports whether the LED is lit.
func (p *Panel) LED() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.led
}

// Subscribe streams LED transitions until ctx is done, then closes the
// channel. The current state is delivered first.
func (p *Panel) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	p.mu.Lock()
	ch <- Event{LED: p.led, At: p.now().UTC()}
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		delete(p.subs, ch)
		close(ch)
		p.mu.Unlock()
	}()
	return ch
}

// Subscribers reports how many streams are attached.
func (p *Panel) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

func (p *Panel) setLED(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.led == on {
		return
	}
	p.led = on
	ev := Event{LED: on, At: p.now().UTC()}
	for ch := range p.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
