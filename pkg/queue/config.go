package queue

import "time"

// Config holds the configuration for the dispatch engine
type Config struct {
	CycleInterval   time.Duration `env:"NOTIFIER_CYCLE_INTERVAL" envDefault:"60s"`
	BatchCap        int           `env:"NOTIFIER_BATCH_CAP" envDefault:"10"`
	RateBatchSize   int           `env:"NOTIFIER_RATE_BATCH" envDefault:"2"`
	InterGroupDelay time.Duration `env:"NOTIFIER_GROUP_DELAY" envDefault:"1s"`
	RetryCeiling    int8          `env:"NOTIFIER_RETRY_CEILING" envDefault:"3"`
	RetryDelay      time.Duration `env:"NOTIFIER_RETRY_DELAY" envDefault:"5m"`
}
