package service

import (
	"context"
	"fmt"
	"time"

	"plateful/internal/modkit/repokit"
	"plateful/internal/platform/logger"
	"plateful/internal/services/search/domain"
	"plateful/internal/services/search/planner"
	"plateful/internal/services/search/repo"
)

// Config tunes execution; zero values fall back to the defaults below
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	TopDishes       int

	// OverfetchFactor multiplies the database window when open-now filtering
	// runs post-fetch, so a page can still fill after closed venues drop out
	OverfetchFactor int

	// IncludeUnsupported keeps restaurants with no determinable operating
	// status in open-now results instead of dropping them
	IncludeUnsupported bool

	// TriggerThreshold is the result count at or below which thin coverage
	// hands terms to the on-demand controller
	TriggerThreshold int
}

func (c Config) withDefaults() Config {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 20
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 100
	}
	if c.TopDishes <= 0 {
		c.TopDishes = 3
	}
	if c.OverfetchFactor <= 1 {
		c.OverfetchFactor = 3
	}
	if c.TriggerThreshold <= 0 {
		c.TriggerThreshold = 3
	}
	return c
}

// Svc implements domain.QueryPort
type Svc struct {
	storage repo.Storage
	events  domain.EventSink
	trigger domain.TriggerPort
	cfg     Config
	log     logger.Logger
	now     func() time.Time
}

// New constructs the search service. events and trigger may be nil; both
// degrade to no-ops so the query path never depends on them.
func New(
	db repokit.Queryer,
	b repokit.Binder[repo.Storage],
	events domain.EventSink,
	trigger domain.TriggerPort,
	cfg Config,
) *Svc {
	return &Svc{
		storage: repokit.MustBind(b, db),
		events:  events,
		trigger: trigger,
		cfg:     cfg.withDefaults(),
		log:     *logger.Named("search"),
		now:     time.Now,
	}
}

var _ domain.QueryPort = (*Svc)(nil)

// Search implements domain.QueryPort
func (s *Svc) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	start := s.now()
	plan := planner.Build(req, start)

	page, size := s.window(req)
	offset := (page - 1) * size

	dbWindow := repo.Window{Limit: size, Offset: offset}
	if plan.HasOpenNow() {
		// pagination re-applies after the post-fetch filter
		dbWindow = repo.Window{Limit: (offset + size) * s.cfg.OverfetchFactor, Offset: 0}
	}

	q := repo.Compile(plan, dbWindow, s.cfg.TopDishes)

	f, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	at := start
	if t := plan.OpenAt(); t != nil {
		at = *t
	}
	ctxs := buildContexts(f, plan.Center, at)

	resp := &domain.SearchResponse{
		Page:     page,
		PageSize: size,
		Meta: domain.Metadata{
			Format:  plan.Format,
			Applied: q.Applied,
			Notes:   plan.Notes,
		},
	}

	if plan.HasOpenNow() {
		r := openNowReconcile(f, ctxs, size, offset, dbWindow.Limit, s.cfg.IncludeUnsupported)
		resp.Restaurants = mapRestaurants(r.restaurants, ctxs)
		resp.Dishes = mapConnections(r.connections, ctxs)
		resp.TotalRestaurants = r.restTotal
		resp.TotalDishes = r.connTotal
		resp.Meta.OpenNowSupported = r.supported
		resp.Meta.OpenNowUnsupported = r.unsupported
	} else {
		resp.Restaurants = mapRestaurants(f.restaurants, ctxs)
		resp.Dishes = mapConnections(f.connections, ctxs)
		resp.TotalRestaurants = f.restTotal
		resp.TotalDishes = f.connTotal
	}

	if req.IncludeSQLPreview {
		resp.SQLPreview = q.Preview
	}

	resp.Meta.Coverage, resp.Meta.CollectionTriggered = s.coverage(ctx, req, resp)
	s.recordEvent(ctx, req, resp, start)
	return resp, nil
}

// Plan implements domain.QueryPort
func (s *Svc) Plan(_ context.Context, req domain.SearchRequest) (*domain.PlanPreview, error) {
	plan := planner.Build(req, s.now())
	page, size := s.window(req)
	q := repo.Compile(plan, repo.Window{Limit: size, Offset: (page - 1) * size}, s.cfg.TopDishes)
	return &domain.PlanPreview{Plan: plan, SQLPreview: q.Preview, Applied: q.Applied}, nil
}

func (s *Svc) window(req domain.SearchRequest) (page, size int) {
	page = req.Page
	if page < 1 {
		page = 1
	}
	size = req.PageSize
	if size <= 0 {
		size = s.cfg.DefaultPageSize
	}
	if size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}
	return page, size
}

// coverage classifies the result set and hands thin terms to the on-demand
// controller. Trigger failures are logged and swallowed; backfill problems
// never fail a search that already has data to return.
func (s *Svc) coverage(
	ctx context.Context,
	req domain.SearchRequest,
	resp *domain.SearchResponse,
) (domain.CoverageStatus, bool) {
	hadTargets := len(req.Restaurants)+len(req.Dishes)+len(req.DishAttributes) > 0 ||
		len(req.DishCategories)+len(req.RestaurantAttributes) > 0
	total := resp.TotalRestaurants + resp.TotalDishes

	if !hadTargets {
		return domain.CoverageFull, false
	}
	if total > s.cfg.TriggerThreshold {
		return domain.CoverageFull, false
	}

	triggered := false
	if s.trigger != nil {
		inputs := triggerInputs(req, total == 0)
		if len(inputs) > 0 {
			if err := s.trigger.Trigger(ctx, inputs); err != nil {
				s.log.Warn().Err(err).Msg("on-demand trigger failed")
			} else {
				triggered = true
			}
		}
	}

	if total == 0 {
		return domain.CoverageUnresolved, triggered
	}
	if triggered {
		return domain.CoveragePartial, triggered
	}
	return domain.CoverageFull, false
}

// triggerInputs builds one on-demand input per named term in the request
func triggerInputs(req domain.SearchRequest, empty bool) []domain.TriggerInput {
	reason := "thin_coverage"
	if empty {
		reason = "no_results"
	}
	key := locationKey(req)

	var out []domain.TriggerInput
	add := func(groups []domain.EntityGroup, entityType string) {
		for _, g := range groups {
			if g.Term == "" {
				continue
			}
			out = append(out, domain.TriggerInput{
				Term:        g.Term,
				EntityType:  entityType,
				Reason:      reason,
				LocationKey: key,
			})
		}
	}
	add(req.Dishes, "dish")
	add(req.Restaurants, "restaurant")
	for _, cat := range req.DishCategories {
		out = append(out, domain.TriggerInput{
			Term: cat, EntityType: "dish_category", Reason: reason, LocationKey: key,
		})
	}
	return out
}

// locationKey is a coarse geographic bucket; "global" means no geography
// and is never auto-dispatched by the controller
func locationKey(req domain.SearchRequest) string {
	if req.Bounds != nil {
		c := req.Bounds.Center()
		return fmt.Sprintf("%.2f,%.2f", c.Lat, c.Lng)
	}
	if req.UserLocation != nil {
		return fmt.Sprintf("%.2f,%.2f", req.UserLocation.Lat, req.UserLocation.Lng)
	}
	return "global"
}

func (s *Svc) recordEvent(
	ctx context.Context,
	req domain.SearchRequest,
	resp *domain.SearchResponse,
	start time.Time,
) {
	if s.events == nil {
		return
	}
	var terms []string
	for _, g := range req.Restaurants {
		terms = append(terms, g.Term)
	}
	for _, g := range req.Dishes {
		terms = append(terms, g.Term)
	}
	ev := domain.SearchEvent{
		Terms:           terms,
		Format:          string(resp.Meta.Format),
		Coverage:        string(resp.Meta.Coverage),
		RestaurantTotal: resp.TotalRestaurants,
		DishTotal:       resp.TotalDishes,
		OpenNow:         resp.Meta.Applied.OpenNow,
		BoundsApplied:   resp.Meta.Applied.Bounds,
		Triggered:       resp.Meta.CollectionTriggered,
		ElapsedMs:       s.now().Sub(start).Milliseconds(),
	}
	if err := s.events.RecordSearch(ctx, ev); err != nil {
		s.log.Warn().Err(err).Msg("search event write failed")
	}
}
