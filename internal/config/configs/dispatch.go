package configs

import "time"

// Dispatch tunes the campaign batch worker. BatchSize caps how many pending
// recipients one invocation claims; Concurrency bounds simultaneous SMTP
// sends within a batch. Both stay small so an invocation finishes inside a
// serverless-style wall-clock budget. StaleClaim is the age after which an
// in_flight row abandoned by a dead invocation is requeued.
type Dispatch struct {
	BatchSize   int           `env:"BATCH_SIZE" envDefault:"20"`
	Concurrency int           `env:"CONCURRENCY" envDefault:"3"`
	StaleClaim  time.Duration `env:"STALE_CLAIM" envDefault:"5m"`
}
