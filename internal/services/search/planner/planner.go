// Package planner translates a SearchRequest into a declarative QueryPlan.
// Planning is pure: no I/O, no clock reads beyond the instant passed in.
package planner

import (
	"fmt"
	"strings"
	"time"

	"plateful/internal/core/geo"
	"plateful/internal/core/price"
	"plateful/internal/services/search/domain"
)

// Build derives the plan for req. Identical requests produce structurally
// equal plans; now only stamps the open-now clause and its description.
func Build(req domain.SearchRequest, now time.Time) domain.QueryPlan {
	plan := domain.QueryPlan{
		Format: deriveFormat(req),
		Center: deriveCenter(req),
	}

	plan.RestaurantFilters = restaurantFilters(req, now)
	plan.ConnectionFilters = connectionFilters(req)
	plan.MissingScopes, plan.Notes = diagnostics(req)

	return plan
}

// deriveFormat picks single_list only when restaurants are the sole
// populated entity scope
func deriveFormat(req domain.SearchRequest) domain.ResultFormat {
	hasRestaurants := anyPopulated(req.Restaurants)
	hasDishes := anyPopulated(req.Dishes) || len(req.DishCategories) > 0
	hasDishAttrs := anyPopulated(req.DishAttributes)
	hasRestAttrs := anyPopulated(req.RestaurantAttributes)

	if hasRestaurants && !hasDishes && !hasDishAttrs && !hasRestAttrs {
		return domain.FormatSingleList
	}
	return domain.FormatDualList
}

// deriveCenter prefers the bounds midpoint, else the user coordinate
func deriveCenter(req domain.SearchRequest) *geo.Point {
	if req.Bounds != nil {
		c := req.Bounds.Center()
		return &c
	}
	return req.UserLocation
}

func restaurantFilters(req domain.SearchRequest, now time.Time) []domain.FilterClause {
	var out []domain.FilterClause

	if ids := collectIDs(req.Restaurants); len(ids) > 0 {
		out = append(out, domain.FilterClause{
			Scope:       domain.ScopeRestaurant,
			Kind:        domain.KindRestaurant,
			EntityIDs:   ids,
			Description: fmt.Sprintf("restaurant in %s", termList(req.Restaurants)),
		})
	}
	if ids := collectIDs(req.RestaurantAttributes); len(ids) > 0 {
		out = append(out, domain.FilterClause{
			Scope:       domain.ScopeRestaurant,
			Kind:        domain.KindRestaurantAttribute,
			EntityIDs:   ids,
			Description: fmt.Sprintf("restaurant attribute overlap %s", termList(req.RestaurantAttributes)),
		})
	}
	if req.Bounds != nil {
		b := *req.Bounds
		out = append(out, domain.FilterClause{
			Scope:       domain.ScopeRestaurant,
			Kind:        domain.KindBounds,
			Bounds:      &b,
			Description: fmt.Sprintf("location within (%.4f,%.4f)x(%.4f,%.4f)", b.A.Lat, b.A.Lng, b.B.Lat, b.B.Lng),
		})
	}
	if req.OpenNow {
		at := now
		out = append(out, domain.FilterClause{
			Scope:       domain.ScopeRestaurant,
			Kind:        domain.KindOpenNow,
			OpenAt:      &at,
			Description: "open at " + at.UTC().Format(time.RFC3339),
		})
	}
	if levels := price.Normalize(req.PriceLevels); len(levels) > 0 {
		out = append(out, domain.FilterClause{
			Scope:       domain.ScopeRestaurant,
			Kind:        domain.KindPrice,
			PriceLevels: levels,
			Description: fmt.Sprintf("price level in %v", levels),
		})
	}
	return out
}

func connectionFilters(req domain.SearchRequest) []domain.FilterClause {
	var out []domain.FilterClause

	dishIDs := collectIDs(req.Dishes)
	if len(dishIDs) > 0 || len(req.DishCategories) > 0 {
		// one clause: dish id membership OR category membership
		out = append(out, domain.FilterClause{
			Scope:       domain.ScopeConnection,
			Kind:        domain.KindDish,
			EntityIDs:   dishIDs,
			Categories:  append([]string(nil), req.DishCategories...),
			Description: dishDescription(req),
		})
	}

	// dish attributes only ride along with (or instead of) dish entities;
	// they are never applied against an explicitly requested-but-empty dish set
	attrIDs := collectIDs(req.DishAttributes)
	if len(attrIDs) > 0 && !(len(req.Dishes) > 0 && len(dishIDs) == 0) {
		out = append(out, domain.FilterClause{
			Scope:       domain.ScopeConnection,
			Kind:        domain.KindDishAttribute,
			EntityIDs:   attrIDs,
			Description: fmt.Sprintf("dish attribute overlap %s", termList(req.DishAttributes)),
		})
	}

	if req.MinVotes > 0 {
		out = append(out, domain.FilterClause{
			Scope:       domain.ScopeConnection,
			Kind:        domain.KindMinVotes,
			MinVotes:    req.MinVotes,
			Description: fmt.Sprintf("at least %d votes", req.MinVotes),
		})
	}
	return out
}

func diagnostics(req domain.SearchRequest) (missing []string, notes []string) {
	if !anyPopulated(req.Restaurants) {
		missing = append(missing, "restaurants")
	}
	if !anyPopulated(req.Dishes) && len(req.DishCategories) == 0 {
		missing = append(missing, "dishes")
		notes = append(notes, "no dish entities; rankings will not be contextual")
	}
	if !anyPopulated(req.DishAttributes) {
		missing = append(missing, "dish_attributes")
	}
	if !anyPopulated(req.RestaurantAttributes) {
		missing = append(missing, "restaurant_attributes")
	}
	if req.Bounds == nil && req.UserLocation == nil {
		notes = append(notes, "no geography; distance will be omitted")
	}
	return missing, notes
}

func anyPopulated(groups []domain.EntityGroup) bool {
	for _, g := range groups {
		if g.Populated() {
			return true
		}
	}
	return false
}

func collectIDs(groups []domain.EntityGroup) []string {
	var out []string
	seen := map[string]bool{}
	for _, g := range groups {
		for _, id := range g.IDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func termList(groups []domain.EntityGroup) string {
	terms := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.Term != "" {
			terms = append(terms, g.Term)
		}
	}
	if len(terms) == 0 {
		return "(unnamed)"
	}
	return strings.Join(terms, ", ")
}

func dishDescription(req domain.SearchRequest) string {
	var parts []string
	if anyPopulated(req.Dishes) {
		parts = append(parts, "dish in "+termList(req.Dishes))
	}
	if len(req.DishCategories) > 0 {
		parts = append(parts, "category in "+strings.Join(req.DishCategories, ", "))
	}
	return strings.Join(parts, " or ")
}
