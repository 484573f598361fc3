package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// LoadEnv loads the given .env files into the process environment.
// Variables already set in the environment take precedence.
// With no arguments the default .env file is loaded and a missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		loadDefaultEnv()
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

func loadDefaultEnv() {
	defaultEnvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})
}

// Parse reads environment variables into v. The default .env file is
// loaded once beforehand.
//
// Example:
//
//	type QueueConfig struct {
//		Namespace string        `env:"QUEUE_NAMESPACE" envDefault:"reliableemail"`
//		Idle      time.Duration `env:"QUEUE_IDLE_INTERVAL" envDefault:"5s"`
//	}
//
//	var cfg QueueConfig
//	if err := config.Parse(&cfg); err != nil {
//		// Handle error
//	}
func Parse[T any](v *T) error {
	loadDefaultEnv()
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}
