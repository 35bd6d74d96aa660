package module

import (
	"time"

	"plateful/internal/platform/config"
)

// Options holds configuration settings for the ondemand module
type Options struct {
	CollectionURL       string
	CollectionTimeout   time.Duration
	InstantCooldown     time.Duration
	BaseInterval        time.Duration
	NoResultsMultiplier int
	CooldownFloor       time.Duration

	MaxWaiting           int
	MaxActive            int
	MaxProcessingBacklog int

	SweepBatch     int
	Concurrency    int
	TickEvery      time.Duration
	EstimatedCycle time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	od := cfg.Prefix("CORE_ONDEMAND_")
	return Options{
		CollectionURL:       od.MayString("COLLECTION_URL", "http://localhost:9210"),
		CollectionTimeout:   od.MayDuration("COLLECTION_TIMEOUT", 5*time.Minute),
		InstantCooldown:     od.MayDuration("INSTANT_COOLDOWN", 30*time.Minute),
		BaseInterval:        od.MayDuration("BASE_INTERVAL", 6*time.Hour),
		NoResultsMultiplier: od.MayInt("NO_RESULTS_MULTIPLIER", 4),
		CooldownFloor:       od.MayDuration("COOLDOWN_FLOOR", time.Hour),

		MaxWaiting:           od.MayInt("MAX_WAITING", 10),
		MaxActive:            od.MayInt("MAX_ACTIVE", 3),
		MaxProcessingBacklog: od.MayInt("MAX_PROCESSING_BACKLOG", 25),

		SweepBatch:     od.MayInt("SWEEP_BATCH", 10),
		Concurrency:    od.MayInt("CONCURRENCY", 2),
		TickEvery:      od.MayDuration("TICK_EVERY", 15*time.Second),
		EstimatedCycle: od.MayDuration("ESTIMATED_CYCLE", 90*time.Second),
	}
}
