package scheduler

import (
	"time"

	"github.com/smallbiznis/propbill/internal/config"
)

// Config controls scheduler intervals and job bounds.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	LockTTL     time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 24 * time.Hour,
		JobTimeout:  10 * time.Minute,
		LockTTL:     15 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.LockTTL < c.JobTimeout {
		c.LockTTL = c.JobTimeout
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	return Config{RunInterval: cfg.Scheduler.RunInterval}.withDefaults()
}
