// Package config loads application configuration from environment variables
// into tagged structs.
//
// It wraps github.com/joho/godotenv (optional .env files) and
// github.com/caarlos0/env/v11 (struct parsing):
//
//   - LoadEnv reads one or more .env files; variables already present in the
//     environment win.
//   - Parse fills a struct from the current environment on every call.
//
// # Usage
//
//	if err := config.LoadEnv(envFile); err != nil {
//	    return err
//	}
//
//	var cfg queue.Config
//	if err := config.Parse(&cfg); err != nil {
//	    return err
//	}
//
// Flags and tests may change the environment between invocations; each
// Parse sees the current values.
//
// # Error Handling
//
//   - ErrParsingConfig: the environment could not be parsed into the struct.
//   - ErrNilPointer: nil pointer passed to Parse.
//   - ErrLoadingEnvFile: an explicitly named .env file could not be read.
package config
