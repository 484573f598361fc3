package queue

import "time"

// Config holds the configuration for the queue and its workers
type Config struct {
	Namespace     string        `env:"QUEUE_NAMESPACE" envDefault:"reliableemail"`
	IdleInterval  time.Duration `env:"QUEUE_IDLE_INTERVAL" envDefault:"5s"`
	RetryEnabled  bool          `env:"QUEUE_RETRY_ENABLED" envDefault:"false"`
	RetryTimeout  time.Duration `env:"QUEUE_RETRY_TIMEOUT" envDefault:"0s"`
	RetryInterval time.Duration `env:"QUEUE_RETRY_INTERVAL" envDefault:"1s"`
	Workers       int           `env:"QUEUE_WORKERS" envDefault:"1"`
}

// RetryPolicy builds the store retry policy described by the config
func (c Config) RetryPolicy() RetryPolicy {
	if !c.RetryEnabled {
		return NoRetry()
	}
	return RetryWithin(c.RetryTimeout, c.RetryInterval)
}
