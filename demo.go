package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/morse/internal/device/sim"
	"github.com/robalobadob/morse/internal/entropy"
	"github.com/robalobadob/morse/internal/game"
	"github.com/robalobadob/morse/internal/signal"
	"github.com/robalobadob/morse/internal/store"
)

type demoOptions struct {
	rounds   int
	mistakes float64
	seed     uint64
	sequence string // fixed dot/dash script instead of random draws
}

func newDemoCmd() *cobra.Command {
	opts := demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Watch a simulated player on simulated hardware (virtual time)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.rounds <= 0 {
				return fmt.Errorf("--rounds must be positive")
			}
			if opts.mistakes < 0 || opts.mistakes > 1 {
				return fmt.Errorf("--mistakes must be within [0,1]")
			}
			sum, err := runDemo(cmd.Context(), opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "rounds %d, best level %d, final level %d, virtual time %s\n",
				sum.Rounds, sum.Best, sum.Level, sum.Elapsed)
			return err
		},
	}
	cmd.Flags().IntVar(&opts.rounds, "rounds", 20, "rounds to play")
	cmd.Flags().Float64Var(&opts.mistakes, "mistakes", 0.05, "probability the player gets a symbol wrong")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "seed for sequence and player")
	cmd.Flags().StringVar(&opts.sequence, "sequence", "", `draw symbols from this script, e.g. ".-..", instead of at random`)
	return cmd
}

type demoSummary struct {
	game.Snapshot
	Elapsed time.Duration
}

// stopAfter records into a store and cancels the game after limit rounds.
type stopAfter struct {
	store.Store
	limit  int
	cancel context.CancelFunc
}

func (s stopAfter) Record(ctx context.Context, snap game.Snapshot) error {
	if snap.Rounds >= s.limit {
		s.cancel()
	}
	return s.Store.Record(ctx, snap)
}

func runDemo(ctx context.Context, opts demoOptions) (demoSummary, error) {
	rig := sim.New()
	sim.NewMirror(rig, opts.mistakes, opts.seed)
	set := rig.Set()
	if opts.sequence != "" {
		script, err := signal.Parse(opts.sequence)
		if err != nil {
			return demoSummary{}, fmt.Errorf("--sequence: %w", err)
		}
		for _, s := range script {
			rig.Entropy.Values = append(rig.Entropy.Values, uint32(s))
		}
	} else {
		src, err := entropy.NewSeededChaCha(opts.seed)
		if err != nil {
			return demoSummary{}, err
		}
		set.Entropy = src
	}

	eng, err := game.New(set, game.WithLogger(log.Logger), game.WithPollInterval(10*time.Millisecond))
	if err != nil {
		return demoSummary{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	st := store.NewMemoryStore()
	err = game.Run(ctx, eng, stopAfter{Store: st, limit: opts.rounds, cancel: cancel})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, game.ErrSequenceFull) {
		return demoSummary{}, err
	}

	latest, err := st.Latest(context.Background())
	if err != nil {
		return demoSummary{}, err
	}
	return demoSummary{Snapshot: latest, Elapsed: rig.Delay.Total}, nil
}
