// internal/game/engine.go
//
// Core engine for one memory game.
// Responsibilities:
//   - Own the growing sequence (fixed buffer of MaxLevel symbols + length).
//   - Play the sequence back as LED pulses.
//   - Collect the player's holds, classify them and judge the attempt.
//   - Grow (Advance) or restart (Reset) the sequence.
//
// Notes:
//   - The engine is single threaded; callers drive it one operation at a time.
//   - Every wait is a poll on the Button plus a Delay of pollInterval.
//   - Capability errors are returned wrapped; the driver treats them as fatal.
package game

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/morse/internal/device"
	"github.com/robalobadob/morse/internal/signal"
)

const (
	defaultPollInterval  = time.Millisecond
	defaultHoldIndicator = 2 * time.Second
	defaultSafetyCap     = time.Hour
)

// Engine is the sole owner of the game state.
type Engine struct {
	devs device.Set
	log  zerolog.Logger

	seq [MaxLevel]signal.Symbol
	n   int

	phase     Phase
	observers []*observer

	pollInterval  time.Duration
	holdIndicator time.Duration
	safetyCap     time.Duration
}

// Option tunes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPollInterval sets the delay between two button polls. Zero spins.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) { e.pollInterval = d }
}

// WithHoldIndicator lights the LED once a hold lasts longer than d.
// Zero disables the indicator.
func WithHoldIndicator(d time.Duration) Option {
	return func(e *Engine) { e.holdIndicator = d }
}

// WithSafetyCap bounds the stopwatch for a single hold.
func WithSafetyCap(d time.Duration) Option {
	return func(e *Engine) { e.safetyCap = d }
}

// New builds an engine and starts the first game.
func New(devs device.Set, opts ...Option) (*Engine, error) {
	if err := devs.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		devs:          devs,
		log:           zerolog.Nop(),
		phase:         PhaseIdle,
		pollInterval:  defaultPollInterval,
		holdIndicator: defaultHoldIndicator,
		safetyCap:     defaultSafetyCap,
	}
	for _, o := range opts {
		o(e)
	}
	e.Reset()
	return e, nil
}

type observer struct{ fn func(Phase) }

// Observe registers fn to be called on every phase change. The returned func
// unregisters it.
func (e *Engine) Observe(fn func(Phase)) (remove func()) {
	o := &observer{fn: fn}
	e.observers = append(e.observers, o)
	return func() {
		e.observers = slices.DeleteFunc(e.observers, func(x *observer) bool { return x == o })
	}
}

// Level is the current level; it always equals the sequence length.
func (e *Engine) Level() int { return e.n }

// Phase reports where the engine is inside a round.
func (e *Engine) Phase() Phase { return e.phase }

// Sequence returns a copy of the current sequence.
func (e *Engine) Sequence() []signal.Symbol {
	out := make([]signal.Symbol, e.n)
	copy(out, e.seq[:e.n])
	return out
}

// Reset starts a new game: level 1 with one freshly drawn symbol.
func (e *Engine) Reset() {
	e.n = 0
	e.seq[0] = signal.Draw(e.devs.Entropy)
	e.n = 1
}

// Advance appends one freshly drawn symbol and returns the new level.
// Call it only after a correct attempt.
func (e *Engine) Advance() (int, error) {
	if e.n >= MaxLevel {
		return e.n, fmt.Errorf("advance past level %d: %w", e.n, ErrSequenceFull)
	}
	e.seq[e.n] = signal.Draw(e.devs.Entropy)
	e.n++
	return e.n, nil
}

// Attempt plays the sequence back, collects as many symbols as it holds and
// judges them. It blocks until the player has entered every symbol.
func (e *Engine) Attempt(ctx context.Context) (Result, error) {
	defer e.setPhase(PhaseIdle)

	want := e.seq[:e.n]
	e.setPhase(PhasePresenting)
	for _, s := range want {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := e.blink(s); err != nil {
			return "", err
		}
	}
	e.log.Debug().Str("sequence", signal.Format(want)).Int("level", e.n).Msg("current combination")

	e.setPhase(PhaseCollecting)
	var got [MaxLevel]signal.Symbol
	k := 0
	for k < e.n {
		s, ok, err := e.readSignal(ctx)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		got[k] = s
		k++
	}
	e.log.Debug().Str("attempt", signal.Format(got[:k])).Msg("guessed combination")

	return Judge(want, got[:k]), nil
}

// Judge compares an attempt with the sequence by length and order.
func Judge(want, got []signal.Symbol) Result {
	if len(want) != len(got) {
		return ResultIncorrect
	}
	for i := range want {
		if want[i] != got[i] {
			return ResultIncorrect
		}
	}
	return ResultCorrect
}

// blink shows one symbol: pulse, then the fixed gap.
func (e *Engine) blink(s signal.Symbol) error {
	if err := e.devs.LED.SetActive(); err != nil {
		return fmt.Errorf("led on: %w", err)
	}
	e.devs.Delay.Wait(signal.PulseDuration(s))
	if err := e.devs.LED.SetInactive(); err != nil {
		return fmt.Errorf("led off: %w", err)
	}
	e.devs.Delay.Wait(signal.Gap)
	return nil
}

// readSignal times one press. ok is false when the hold was bounce and the
// caller must sample again.
func (e *Engine) readSignal(ctx context.Context) (s signal.Symbol, ok bool, err error) {
	if err := e.devs.LED.SetInactive(); err != nil {
		return 0, false, fmt.Errorf("led off: %w", err)
	}

	for {
		pressed, err := e.devs.Button.IsActive()
		if err != nil {
			return 0, false, fmt.Errorf("read button: %w", err)
		}
		if pressed {
			break
		}
		if err := e.pause(ctx); err != nil {
			return 0, false, err
		}
	}

	if err := e.devs.Timer.Start(e.safetyCap); err != nil {
		return 0, false, fmt.Errorf("start timer: %w", err)
	}
	lit := false
	for {
		pressed, err := e.devs.Button.IsActive()
		if err != nil {
			return 0, false, fmt.Errorf("read button: %w", err)
		}
		if !pressed {
			break
		}
		if e.holdIndicator > 0 && !lit {
			held, err := e.devs.Timer.Elapsed()
			if err != nil {
				return 0, false, fmt.Errorf("read timer: %w", err)
			}
			if held > e.holdIndicator {
				if err := e.devs.LED.SetActive(); err != nil {
					return 0, false, fmt.Errorf("led on: %w", err)
				}
				lit = true
			}
		}
		if err := e.pause(ctx); err != nil {
			return 0, false, err
		}
	}

	held, err := e.devs.Timer.Elapsed()
	if err != nil {
		return 0, false, fmt.Errorf("read timer: %w", err)
	}
	if err := e.devs.Timer.Cancel(); err != nil {
		return 0, false, fmt.Errorf("cancel timer: %w", err)
	}
	if lit {
		if err := e.devs.LED.SetInactive(); err != nil {
			return 0, false, fmt.Errorf("led off: %w", err)
		}
	}

	s, ok = signal.Classify(held)
	ev := e.log.Debug().Dur("held", held)
	if ok {
		ev.Str("symbol", s.String()).Msg("time")
	} else {
		ev.Msg("time (bounce, ignored)")
	}
	return s, ok, nil
}

func (e *Engine) pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.pollInterval > 0 {
		e.devs.Delay.Wait(e.pollInterval)
	}
	return nil
}

func (e *Engine) setPhase(p Phase) {
	if e.phase == p {
		return
	}
	e.phase = p
	for _, o := range e.observers {
		o.fn(p)
	}
}
