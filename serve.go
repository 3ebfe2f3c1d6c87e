package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/morse/internal/config"
	"github.com/robalobadob/morse/internal/device"
	"github.com/robalobadob/morse/internal/device/panel"
	"github.com/robalobadob/morse/internal/entropy"
	"github.com/robalobadob/morse/internal/game"
	"github.com/robalobadob/morse/internal/httpserver"
	"github.com/robalobadob/morse/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the game on the virtual panel served over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			setLogLevel(cfg.LogLevel)
			return serve(cmd.Context(), cfg)
		},
	}
}

// panelApp is the wired panel game: HTTP handler, engine and store over
// one virtual panel. serve runs it; tests drive it through httptest.
type panelApp struct {
	handler http.Handler
	engine  *game.Engine
	store   store.Store
	panel   *panel.Panel
}

func newPanelApp(cfg config.Config, src device.Entropy) (*panelApp, error) {
	p := panel.New()
	st := store.NewMemoryStore()
	eng, err := game.New(device.Set{
		LED:     p,
		Button:  p,
		Timer:   device.NewSystemStopwatch(),
		Delay:   device.SleepWaiter{},
		Entropy: src,
	},
		game.WithLogger(log.Logger),
		game.WithPollInterval(cfg.PollInterval),
		game.WithHoldIndicator(cfg.HoldIndicator),
		game.WithSafetyCap(cfg.SafetyCap),
	)
	if err != nil {
		return nil, err
	}
	h := httpserver.New(st, p, httpserver.Options{
		Secret:       cfg.JWTSecret,
		ClientOrigin: cfg.ClientOrigin,
	}).Handler()
	return &panelApp{handler: h, engine: eng, store: st, panel: p}, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := ossignal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := entropy.New(cfg.Entropy, cfg.DailySalt, time.Now())
	if err != nil {
		return err
	}
	app, err := newPanelApp(cfg, src)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	httpErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("entropy", string(cfg.Entropy)).Msg("starting panel")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
		close(httpErr)
	}()

	gameErr := make(chan error, 1)
	go func() { gameErr <- game.Run(ctx, app.engine, app.store) }()

	select {
	case err = <-gameErr:
	case err = <-httpErr:
		stop()
		<-gameErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	if err == nil || errors.Is(err, context.Canceled) {
		log.Info().Msg("panel stopped")
		return nil
	}
	// Hardware faults and a full sequence have no recovery path.
	return fmt.Errorf("game stopped at level %d: %w", app.engine.Level(), err)
}
