// internal/config/config.go
//
// Process configuration.
// Values come from the environment (MORSE_*), optionally seeded from a .env
// file. The game timing thresholds are constants in the signal package and
// are deliberately not configurable here.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/robalobadob/morse/internal/entropy"
)

const envPrefix = "MORSE"

// Config is everything main needs to wire the game.
type Config struct {
	LogLevel       string
	Addr           string
	ClientOrigin   string
	JWTSecret      string
	JWTExpiresDays int
	PollInterval   time.Duration
	HoldIndicator  time.Duration
	SafetyCap      time.Duration
	Entropy        entropy.Mode
	DailySalt      string
}

func defaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("addr", ":5175")
	v.SetDefault("client_origin", "http://localhost:5173")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_expires_days", 14)
	v.SetDefault("poll_interval", time.Millisecond)
	v.SetDefault("hold_indicator", 2*time.Second)
	v.SetDefault("safety_cap", time.Hour)
	v.SetDefault("entropy", string(entropy.ModeChaCha))
	v.SetDefault("daily_salt", "")
}

// Load reads .env (or the given files) into the environment and resolves
// the configuration. A missing default .env is not an error; a missing
// explicit file is.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	defaults(v)

	cfg := Config{
		LogLevel:       v.GetString("log_level"),
		Addr:           v.GetString("addr"),
		ClientOrigin:   v.GetString("client_origin"),
		JWTSecret:      v.GetString("jwt_secret"),
		JWTExpiresDays: v.GetInt("jwt_expires_days"),
		PollInterval:   v.GetDuration("poll_interval"),
		HoldIndicator:  v.GetDuration("hold_indicator"),
		SafetyCap:      v.GetDuration("safety_cap"),
		Entropy:        entropy.Mode(strings.ToLower(v.GetString("entropy"))),
		DailySalt:      v.GetString("daily_salt"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.PollInterval < 0:
		return fmt.Errorf("%s_POLL_INTERVAL must not be negative", envPrefix)
	case c.HoldIndicator < 0:
		return fmt.Errorf("%s_HOLD_INDICATOR must not be negative", envPrefix)
	case c.SafetyCap <= 0:
		return fmt.Errorf("%s_SAFETY_CAP must be positive", envPrefix)
	case c.JWTExpiresDays <= 0:
		return fmt.Errorf("%s_JWT_EXPIRES_DAYS must be positive", envPrefix)
	}
	switch c.Entropy {
	case entropy.ModeChaCha:
	case entropy.ModeDaily:
		if c.DailySalt == "" {
			return fmt.Errorf("%s_DAILY_SALT is required for daily entropy", envPrefix)
		}
	default:
		return fmt.Errorf("%s_ENTROPY: unknown mode %q", envPrefix, c.Entropy)
	}
	return nil
}
