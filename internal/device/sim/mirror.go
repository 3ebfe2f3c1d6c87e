// internal/device/sim/mirror.go
//
// Simulated player for the sim rig.
// Responsibilities:
//   - Read back the symbols the LED just played.
//   - Script matching button holds, flipping some with a seeded RNG.

package sim

import (
	"math/rand/v2"
	"time"

	"github.com/robalobadob/morse/internal/signal"
)

// Mirror is a simulated player. It watches the LED during playback and, the
// first time the engine polls the button afterwards, scripts holds that
// reproduce what it saw. With Mistakes > 0 each symbol is flipped with that
// probability.
type Mirror struct {
	rig     *Rig
	rng     *rand.Rand
	pending []signal.Symbol

	Mistakes float64
	Pause    time.Duration // between holds
	Tap      time.Duration // hold used for Short
	Press    time.Duration // hold used for Long
	Flipped  int
}

// NewMirror attaches a player to r.
func NewMirror(r *Rig, mistakes float64, seed uint64) *Mirror {
	m := &Mirror{
		rig:      r,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Mistakes: mistakes,
		Pause:    400 * time.Millisecond,
		Tap:      200 * time.Millisecond,
		Press:    1200 * time.Millisecond,
	}
	r.LED.OnDone = m.observe
	r.Button.OnPoll = m.respond
	return m
}

func (m *Mirror) observe(p Pulse) {
	// The engine lights the LED during long holds; that is feedback, not playback.
	if m.rig.Button.Holding(p.At) {
		return
	}
	if s, ok := signal.Classify(p.For); ok {
		m.pending = append(m.pending, s)
	}
}

func (m *Mirror) respond() {
	if len(m.pending) == 0 || m.rig.Button.Pending() {
		return
	}
	for _, s := range m.pending {
		if m.Mistakes > 0 && m.rng.Float64() < m.Mistakes {
			s = flip(s)
			m.Flipped++
		}
		d := m.Tap
		if s == signal.Long {
			d = m.Press
		}
		m.rig.Button.Press(Hold{After: m.Pause, For: d})
	}
	m.pending = m.pending[:0]
}

func flip(s signal.Symbol) signal.Symbol {
	if s == signal.Long {
		return signal.Short
	}
	return signal.Long
}
