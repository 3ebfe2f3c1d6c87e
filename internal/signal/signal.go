// internal/signal/signal.go
//
// Signal codec for the memory game.
// Responsibilities:
//   - Classify a measured button hold into a Symbol (or reject it as bounce).
//   - Map a Symbol to the length of the output pulse that displays it.
//   - Turn one pseudo-random 32-bit draw into a Symbol.
//
// Notes:
//   - The thresholds are fixed; the game has no difficulty settings.
//   - Everything here is pure: no I/O, no state.
package signal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Symbol is one element of a game sequence, analogous to a Morse dot or dash.
type Symbol uint8

const (
	Short Symbol = iota
	Long
)

const (
	// NoiseFloor is the shortest hold counted as input. Anything below it is
	// contact bounce.
	NoiseFloor = 10 * time.Millisecond

	// ShortCeiling is the longest hold (inclusive) classified as Short.
	ShortCeiling = 500 * time.Millisecond

	ShortPulse = 500 * time.Millisecond
	LongPulse  = 2000 * time.Millisecond

	// Gap is the inactive time following every pulse during playback.
	Gap = 250 * time.Millisecond
)

// ErrBadSymbol is returned by Parse for characters other than '.' and '-'.
var ErrBadSymbol = errors.New("bad symbol")

// Source supplies pseudo-random 32-bit values.
type Source interface {
	NextU32() uint32
}

// Classify maps a hold duration to a Symbol.
// ok is false when the hold is shorter than NoiseFloor and must be re-sampled.
func Classify(d time.Duration) (s Symbol, ok bool) {
	switch {
	case d < NoiseFloor:
		return 0, false
	case d <= ShortCeiling:
		return Short, true
	default:
		return Long, true
	}
}

// PulseDuration reports how long the actuator stays active to display s.
// Every pulse is followed by Gap.
func PulseDuration(s Symbol) time.Duration {
	if s == Long {
		return LongPulse
	}
	return ShortPulse
}

// Draw consumes exactly one value from src and picks a Symbol by parity.
func Draw(src Source) Symbol {
	if src.NextU32()%2 == 1 {
		return Long
	}
	return Short
}

// String renders the symbol as '.' or '-'.
func (s Symbol) String() string {
	switch s {
	case Short:
		return "."
	case Long:
		return "-"
	default:
		return "?"
	}
}

// Format renders a sequence as a dot/dash string, e.g. ".-..".
func Format(seq []Symbol) string {
	var b strings.Builder
	b.Grow(len(seq))
	for _, s := range seq {
		b.WriteString(s.String())
	}
	return b.String()
}

// Parse is the inverse of Format. Whitespace is ignored.
func Parse(text string) ([]Symbol, error) {
	out := make([]Symbol, 0, len(text))
	for _, r := range text {
		switch r {
		case '.':
			out = append(out, Short)
		case '-':
			out = append(out, Long)
		case ' ', '\t', '\n':
		default:
			return nil, fmt.Errorf("%w: %q", ErrBadSymbol, r)
		}
	}
	return out, nil
}
