// Package domain defines the types and interfaces for the search service
package domain

import (
	"time"

	"plateful/internal/core/geo"
)

// EntityGroup is one resolved query term with its backing entity IDs
type EntityGroup struct {
	Term string   `json:"term"`
	IDs  []string `json:"ids"` // uuids
}

// Populated reports whether the group carries at least one backing ID
func (g EntityGroup) Populated() bool { return len(g.IDs) > 0 }

// SearchRequest is the resolved, request-scoped input to planning.
// Entity resolution happens upstream; this core never resolves names to IDs.
type SearchRequest struct {
	Restaurants          []EntityGroup `json:"restaurants,omitempty"`
	Dishes               []EntityGroup `json:"dishes,omitempty"`
	DishCategories       []string      `json:"dish_categories,omitempty"`
	DishAttributes       []EntityGroup `json:"dish_attributes,omitempty"`
	RestaurantAttributes []EntityGroup `json:"restaurant_attributes,omitempty"`

	Bounds       *geo.Bounds `json:"bounds,omitempty"`
	OpenNow      bool        `json:"open_now,omitempty"`
	PriceLevels  []int       `json:"price_levels,omitempty"`
	MinVotes     int         `json:"min_votes,omitempty"`
	UserLocation *geo.Point  `json:"user_location,omitempty"`

	Page     int `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize int `json:"page_size,omitempty" validate:"omitempty,min=1,max=100"`

	IncludeSQLPreview bool `json:"include_sql_preview,omitempty"`
}

// ClauseScope says which half of the query a clause constrains
type ClauseScope string

// Clause scopes
const (
	ScopeRestaurant ClauseScope = "restaurant"
	ScopeConnection ClauseScope = "connection"
)

// ClauseKind tags what a clause matches on
type ClauseKind string

// Clause kinds
const (
	KindRestaurant          ClauseKind = "restaurant"
	KindRestaurantAttribute ClauseKind = "restaurant_attribute"
	KindBounds              ClauseKind = "bounds"
	KindOpenNow             ClauseKind = "open_now"
	KindPrice               ClauseKind = "price"
	KindDish                ClauseKind = "dish"
	KindDishAttribute       ClauseKind = "dish_attribute"
	KindMinVotes            ClauseKind = "min_votes"
)

// FilterClause is one declarative constraint. Exactly one payload group is
// meaningful per kind; the rest stay zero. Clauses are assembled by the
// planner and read by the builder, never mutated after planning.
type FilterClause struct {
	Scope       ClauseScope `json:"scope"`
	Kind        ClauseKind  `json:"kind"`
	EntityIDs   []string    `json:"entity_ids,omitempty"`
	Categories  []string    `json:"categories,omitempty"`
	Bounds      *geo.Bounds `json:"bounds,omitempty"`
	PriceLevels []int       `json:"price_levels,omitempty"`
	MinVotes    int         `json:"min_votes,omitempty"`
	OpenAt      *time.Time  `json:"open_at,omitempty"`
	Description string      `json:"description"`
}

// ResultFormat selects the response shape
type ResultFormat string

// Result formats
const (
	FormatSingleList ResultFormat = "single_list"
	FormatDualList   ResultFormat = "dual_list"
)

// QueryPlan is the planner's output: declarative clauses plus diagnostics.
// It carries no SQL; compilation belongs to the repo layer.
type QueryPlan struct {
	Format            ResultFormat   `json:"format"`
	RestaurantFilters []FilterClause `json:"restaurant_filters"`
	ConnectionFilters []FilterClause `json:"connection_filters"`

	// Center is the search center used for representative-location selection:
	// bounds midpoint when bounds were given, else the user coordinate
	Center *geo.Point `json:"center,omitempty"`

	MissingScopes []string `json:"missing_scopes,omitempty"`
	Notes         []string `json:"notes,omitempty"`
}

// HasOpenNow reports whether the plan carries an open-now clause
func (p QueryPlan) HasOpenNow() bool { return p.OpenAt() != nil }

// OpenAt returns the open-now evaluation instant, nil when not requested
func (p QueryPlan) OpenAt() *time.Time {
	for _, c := range p.RestaurantFilters {
		if c.Kind == KindOpenNow {
			return c.OpenAt
		}
	}
	return nil
}
