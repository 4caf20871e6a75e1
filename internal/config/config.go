package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port              string `env:"PORT" envDefault:"8080"`
	DatabaseURL       string `env:"DATABASE_URL"`
	ChallengesFile    string `env:"CHALLENGES_FILE" envDefault:"quiz_data/challenges.json"`
	ChallengesPerGame int    `env:"CHALLENGES_PER_GAME" envDefault:"10"`
	MaxPlayers        int    `env:"MAX_PLAYERS" envDefault:"10"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
