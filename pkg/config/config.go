// Package config loads typed configuration structs from environment
// variables, with an optional .env file for development. Config structs
// declare their variables with `env:` tags:
//
//	type StripeConfig struct {
//		SecretKey string `env:"STRIPE_SECRET_KEY,required"`
//	}
//
//	cfg, err := config.Load[hosted.StripeConfig]()
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrParseFailed = errors.New("config: parsing environment variables failed")

var loadDotEnv sync.Once

// Load parses environment variables into a fresh T. The default .env file
// is loaded once per process before the first parse; a missing .env file
// is not an error.
func Load[T any]() (T, error) {
	loadDotEnv.Do(func() {
		_ = godotenv.Load()
	})

	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParseFailed, err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on error, for initialization paths where a
// misconfigured process should not start.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}
