package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/morse/internal/config"
	"github.com/robalobadob/morse/internal/httpserver"
)

func newTokenCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the panel button routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("MORSE_JWT_SECRET is not set; the panel is open without a token")
			}
			ttl := time.Duration(cfg.JWTExpiresDays) * 24 * time.Hour
			token, exp, err := httpserver.SignToken(cfg.JWTSecret, subject, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n# expires %s\n", token, exp.UTC().Format(time.RFC3339))
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "bench", "token subject")
	return cmd
}
