// Package service orchestrates planning, execution, and coverage for search
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"plateful/internal/core/geo"
	"plateful/internal/core/hours"
	"plateful/internal/core/price"
	perr "plateful/internal/platform/errors"
	"plateful/internal/services/search/domain"
	"plateful/internal/services/search/repo"
)

// fetched is the raw output of one concurrent store round trip
type fetched struct {
	restaurants []domain.RestaurantRow
	connections []domain.ConnectionRow
	restTotal   int
	connTotal   int
}

// fetch runs all four statements concurrently; the first error is terminal
// for the whole execution
func (s *Svc) fetch(ctx context.Context, q repo.Queries) (fetched, error) {
	var (
		out      fetched
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		rows, err := s.storage.Restaurants(ctx, q.Restaurants)
		if err != nil {
			fail(err)
			return
		}
		out.restaurants = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := s.storage.Connections(ctx, q.Connections)
		if err != nil {
			fail(err)
			return
		}
		out.connections = rows
	}()
	go func() {
		defer wg.Done()
		n, err := s.storage.Count(ctx, q.RestaurantCount)
		if err != nil {
			fail(err)
			return
		}
		out.restTotal = n
	}()
	go func() {
		defer wg.Done()
		n, err := s.storage.Count(ctx, q.ConnectionCount)
		if err != nil {
			fail(err)
			return
		}
		out.connTotal = n
	}()
	wg.Wait()

	if firstErr != nil {
		return fetched{}, perr.Wrapf(firstErr, perr.ErrorCodeDB, "search fetch failed")
	}
	return out, nil
}

// buildContexts derives one RestaurantContext per distinct restaurant across
// both row sets so the hours evaluation runs once per restaurant, not per row
func buildContexts(
	f fetched,
	center *geo.Point,
	at time.Time,
) map[string]*domain.RestaurantContext {
	ctxs := make(map[string]*domain.RestaurantContext, len(f.restaurants))

	add := func(id, locID string, lat, lng float64, tz *string, off *int, hoursSrc []byte, level *int) {
		if _, ok := ctxs[id]; ok {
			return
		}
		rc := &domain.RestaurantContext{LocationID: locID, PriceLevel: level}
		if level != nil {
			rc.PriceSymbol = price.Symbol(*level)
			rc.PriceText = price.Description(*level)
		}
		if center != nil {
			d := geo.DistanceMiles(*center, geo.Point{Lat: lat, Lng: lng})
			rc.DistanceMiles = &d
		}
		rc.Status = evaluateHours(hoursSrc, tz, off, at)
		ctxs[id] = rc
	}

	for _, r := range f.restaurants {
		add(r.ID, r.LocationID, r.Lat, r.Lng, r.Timezone, r.UTCOffset, r.HoursSource, r.PriceLevel)
	}
	for _, c := range f.connections {
		add(c.RestaurantID, c.LocationID, c.Lat, c.Lng, c.Timezone, c.UTCOffset, c.HoursSource, c.PriceLevel)
	}
	return ctxs
}

// evaluateHours parses the stored schedule document and evaluates it.
// Any parse or timezone gap degrades to a nil status for that restaurant only.
func evaluateHours(src []byte, tz *string, off *int, at time.Time) *hours.Status {
	if len(src) == 0 {
		return nil
	}
	var doc any
	if err := json.Unmarshal(src, &doc); err != nil {
		return nil
	}
	sched := hours.Schedule{Source: doc}
	if tz != nil {
		sched.Timezone = *tz
	}
	sched.UTCOffsetMinutes = off
	return hours.Evaluate(sched, at)
}

// openNowReconcile filters both row sets to open restaurants and re-applies
// skip/take over the filtered sets. Restaurants with no determinable status
// are counted as unsupported and kept or dropped per policy; they are never
// treated as closed silently.
type openNowResult struct {
	restaurants []domain.RestaurantRow
	connections []domain.ConnectionRow
	restTotal   int
	connTotal   int
	supported   int
	unsupported int
}

func openNowReconcile(
	f fetched,
	ctxs map[string]*domain.RestaurantContext,
	limit, offset, dbLimit int,
	includeUnsupported bool,
) openNowResult {
	keep := make(map[string]bool, len(ctxs))
	var supported, unsupported int
	for id, rc := range ctxs {
		switch {
		case rc.Status == nil:
			unsupported++
			keep[id] = includeUnsupported
		case rc.Status.IsOpen:
			supported++
			keep[id] = true
		default:
			supported++
		}
	}

	var rest []domain.RestaurantRow
	for _, r := range f.restaurants {
		if keep[r.ID] {
			rest = append(rest, r)
		}
	}
	var conns []domain.ConnectionRow
	for _, c := range f.connections {
		if keep[c.RestaurantID] {
			conns = append(conns, c)
		}
	}

	out := openNowResult{supported: supported, unsupported: unsupported}

	// when the over-fetch window captured the full candidate set the filtered
	// lengths are the true totals; otherwise the database totals stay as an
	// upper bound rather than fabricating a number
	out.restTotal = f.restTotal
	if len(f.restaurants) < dbLimit {
		out.restTotal = len(rest)
	}
	out.connTotal = f.connTotal
	if len(f.connections) < dbLimit {
		out.connTotal = len(conns)
	}

	out.restaurants = skipTake(rest, offset, limit)
	out.connections = skipTake(conns, offset, limit)
	return out
}

func skipTake[T any](xs []T, offset, limit int) []T {
	if offset >= len(xs) {
		return nil
	}
	xs = xs[offset:]
	if limit < len(xs) {
		xs = xs[:limit]
	}
	return xs
}

func mapRestaurants(
	rows []domain.RestaurantRow,
	ctxs map[string]*domain.RestaurantContext,
) []domain.RestaurantResult {
	out := make([]domain.RestaurantResult, 0, len(rows))
	for _, r := range rows {
		res := domain.RestaurantResult{
			ID:       r.ID,
			Name:     r.Name,
			Address:  r.Address,
			Lat:      r.Lat,
			Lng:      r.Lng,
			Votes:    r.Votes,
			Mentions: r.Mentions,
		}
		if len(r.TopDishes) > 0 {
			// best effort; a bad aggregate leaves the list empty
			_ = json.Unmarshal(r.TopDishes, &res.TopDishes)
		}
		if rc := ctxs[r.ID]; rc != nil {
			res.RestaurantContext = *rc
		}
		out = append(out, res)
	}
	return out
}

func mapConnections(
	rows []domain.ConnectionRow,
	ctxs map[string]*domain.RestaurantContext,
) []domain.DishResult {
	out := make([]domain.DishResult, 0, len(rows))
	for _, c := range rows {
		res := domain.DishResult{
			RestaurantID:   c.RestaurantID,
			RestaurantName: c.RestaurantName,
			DishID:         c.DishID,
			DishName:       c.DishName,
			Address:        c.Address,
			Lat:            c.Lat,
			Lng:            c.Lng,
			Votes:          c.Votes,
			Mentions:       c.Mentions,
		}
		if c.Category != nil {
			res.Category = *c.Category
		}
		if rc := ctxs[c.RestaurantID]; rc != nil {
			res.RestaurantContext = *rc
		}
		out = append(out, res)
	}
	return out
}
