package domain

import "context"

// QueryPort is the search surface exposed to transports
type QueryPort interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	Plan(ctx context.Context, req SearchRequest) (*PlanPreview, error)
}

// TriggerInput asks the on-demand subsystem to backfill one thin term
type TriggerInput struct {
	Term        string
	EntityType  string
	Reason      string
	LocationKey string
}

// TriggerPort hands thin-coverage terms to the on-demand controller.
// Implementations must never block the search path; failures are logged
// and swallowed by the caller.
type TriggerPort interface {
	Trigger(ctx context.Context, inputs []TriggerInput) error
}

// EventSink records one row per executed search for offline analysis
type EventSink interface {
	RecordSearch(ctx context.Context, ev SearchEvent) error
}

// SearchEvent is the analytics row written after each execution
type SearchEvent struct {
	Terms            []string
	Format           string
	Coverage         string
	RestaurantTotal  int
	DishTotal        int
	OpenNow          bool
	BoundsApplied    bool
	Triggered        bool
	ElapsedMs        int64
}
