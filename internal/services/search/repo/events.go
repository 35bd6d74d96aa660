package repo

import (
	"context"
	"time"

	"plateful/internal/platform/store"
	"plateful/internal/services/search/domain"
)

// Events writes one analytics row per executed search to ClickHouse.
// A nil seam makes every write a no-op so the API can run without CH.
type Events struct {
	ch  store.Clickhouse
	now func() time.Time
}

// NewEvents constructs the sink; chs may be nil
func NewEvents(chs store.Clickhouse) *Events {
	return &Events{ch: chs, now: time.Now}
}

var _ domain.EventSink = (*Events)(nil)

// RecordSearch implements domain.EventSink
func (e *Events) RecordSearch(ctx context.Context, ev domain.SearchEvent) error {
	if e == nil || e.ch == nil {
		return nil
	}
	row := []any{
		e.now().UTC(),
		ev.Terms,
		ev.Format,
		ev.Coverage,
		uint32(ev.RestaurantTotal),
		uint32(ev.DishTotal),
		ev.OpenNow,
		ev.BoundsApplied,
		ev.Triggered,
		uint64(ev.ElapsedMs),
	}
	return e.ch.Insert(ctx, "search_events", [][]any{row})
}
