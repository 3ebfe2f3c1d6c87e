// internal/game/types.go
//
// Core type definitions for the memory game engine.
// Defines:
//   - Result: outcome of one attempt (correct/incorrect).
//   - Phase: where the engine is inside a round.
//   - Snapshot: what the driver loop reports after each transition.

package game

import (
	"context"
	"errors"
	"time"
)

// MaxLevel is the capacity of the sequence buffer.
const MaxLevel = 64

// ErrSequenceFull is returned by Advance when the sequence already holds
// MaxLevel symbols. The engine state is left untouched.
var ErrSequenceFull = errors.New("sequence full")

// Result is the judgment of one attempt.
type Result string

const (
	ResultCorrect   Result = "correct"
	ResultIncorrect Result = "incorrect"
)

// Phase tracks the engine through a round:
// idle → presenting → collecting → idle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePresenting Phase = "presenting"
	PhaseCollecting Phase = "collecting"
)

// Snapshot is a point-in-time view of a running game.
// The sequence itself is deliberately left out; only its length is shown.
type Snapshot struct {
	Level  int       `json:"level"`
	Phase  Phase     `json:"phase"`
	Rounds int       `json:"rounds"`         // attempts judged so far
	Best   int       `json:"best"`           // highest level reached
	Last   Result    `json:"last,omitempty"` // result of the latest attempt
	At     time.Time `json:"at"`
}

// Recorder receives snapshots from the driver loop.
type Recorder interface {
	Record(ctx context.Context, s Snapshot) error
}
