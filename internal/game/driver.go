// internal/game/driver.go
//
// Endless game loop around an Engine.
// Responsibilities:
//   - Attempt, then Advance on a correct answer or Reset on a wrong one.
//   - Record a Snapshot on every phase change and after every judged round.
//
// Notes:
//   - Run returns ctx errors as is and wraps capability errors with the level.
//   - A full sequence (ErrSequenceFull) ends the game.

package game

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Run drives the engine forever: attempt, then advance on success or reset on
// failure. It returns only when ctx is done, when a capability fails, or when
// the sequence cannot grow any further (ErrSequenceFull).
//
// rec may be nil. Recording is best effort: a failing recorder is logged and
// the game goes on.
func Run(ctx context.Context, e *Engine, rec Recorder) error {
	snap := Snapshot{Level: e.Level(), Phase: e.Phase(), Best: e.Level()}
	record := func() {
		if rec == nil {
			return
		}
		snap.At = time.Now().UTC()
		if err := rec.Record(ctx, snap); err != nil {
			e.log.Warn().Err(err).Msg("record snapshot")
		}
	}
	defer e.Observe(func(p Phase) {
		snap.Phase = p
		record()
	})()
	record()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := e.Attempt(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("attempt at level %d: %w", e.Level(), err)
		}

		snap.Rounds++
		snap.Last = res
		switch res {
		case ResultCorrect:
			level, err := e.Advance()
			if err != nil {
				return err
			}
			e.log.Info().Int("level", level).Msg("correct! next level")
		default:
			e.log.Info().Int("level", e.Level()).Msg("incorrect! starting new game")
			e.Reset()
		}

		snap.Level = e.Level()
		if snap.Level > snap.Best {
			snap.Best = snap.Level
		}
		record()
	}
}
