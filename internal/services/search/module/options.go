package module

import "plateful/internal/platform/config"

// Options holds configuration settings for the search module
type Options struct {
	DefaultPageSize    int
	MaxPageSize        int
	TopDishes          int
	OverfetchFactor    int
	IncludeUnsupported bool
	TriggerThreshold   int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	sf := cfg.Prefix("CORE_SEARCH_")
	return Options{
		DefaultPageSize:    sf.MayInt("PAGE_SIZE", 20),
		MaxPageSize:        sf.MayInt("MAX_PAGE_SIZE", 100),
		TopDishes:          sf.MayInt("TOP_DISHES", 3),
		OverfetchFactor:    sf.MayInt("OVERFETCH_FACTOR", 3),
		IncludeUnsupported: sf.MayBool("OPEN_NOW_INCLUDE_UNSUPPORTED", false),
		TriggerThreshold:   sf.MayInt("TRIGGER_THRESHOLD", 3),
	}
}
