package domain

import "plateful/internal/core/hours"

// RestaurantRow is one restaurant-query row as scanned from the store
type RestaurantRow struct {
	ID           string
	Name         string
	LocationID   string
	Address      string
	Lat          float64
	Lng          float64
	Timezone     *string
	UTCOffset    *int
	HoursSource  []byte // raw schedule document
	PriceLevel   *int
	DisplayRank  *float64
	QualityScore *float64
	Votes        int64
	Mentions     int64
	TopDishes    []byte // pre-aggregated json array of {id, name, votes}
}

// ConnectionRow is one restaurant-dish row with enough restaurant and
// location fields to render a map pin without a second fetch
type ConnectionRow struct {
	RestaurantID   string
	RestaurantName string
	LocationID     string
	Address        string
	Lat            float64
	Lng            float64
	Timezone       *string
	UTCOffset      *int
	HoursSource    []byte
	PriceLevel     *int
	DishID         string
	DishName       string
	Category       *string
	Votes          int64
	Mentions       int64
}

// RestaurantContext is the per-restaurant derived state shared across all
// rows for that restaurant within one execution
type RestaurantContext struct {
	LocationID    string        `json:"location_id"`
	Status        *hours.Status `json:"operating_status,omitempty"`
	PriceLevel    *int          `json:"price_level,omitempty"`
	PriceSymbol   string        `json:"price_symbol,omitempty"`
	PriceText     string        `json:"price_text,omitempty"`
	DistanceMiles *float64      `json:"distance_miles,omitempty"`
}

// TopDish is one entry of a restaurant's pre-aggregated dish list
type TopDish struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Votes int64  `json:"votes"`
}

// RestaurantResult is one row of the restaurant-centric list
type RestaurantResult struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Votes     int64     `json:"votes"`
	Mentions  int64     `json:"mentions"`
	TopDishes []TopDish `json:"top_dishes,omitempty"`
	RestaurantContext
}

// DishResult is one row of the dish-centric list
type DishResult struct {
	RestaurantID   string  `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	DishID         string  `json:"dish_id"`
	DishName       string  `json:"dish_name"`
	Category       string  `json:"category,omitempty"`
	Address        string  `json:"address,omitempty"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Votes          int64   `json:"votes"`
	Mentions       int64   `json:"mentions"`
	RestaurantContext
}

// CoverageStatus summarizes how well the result set covered the request
type CoverageStatus string

// Coverage statuses
const (
	CoverageFull       CoverageStatus = "full"
	CoveragePartial    CoverageStatus = "partial"
	CoverageUnresolved CoverageStatus = "unresolved"
)

// AppliedFilters records which optional constraints made it into SQL
type AppliedFilters struct {
	Bounds   bool `json:"bounds"`
	OpenNow  bool `json:"open_now"`
	Price    bool `json:"price"`
	MinVotes bool `json:"min_votes"`
}

// Metadata rides along on every search response
type Metadata struct {
	Format              ResultFormat   `json:"format"`
	Applied             AppliedFilters `json:"applied"`
	OpenNowSupported    int            `json:"open_now_supported,omitempty"`
	OpenNowUnsupported  int            `json:"open_now_unsupported,omitempty"`
	Coverage            CoverageStatus `json:"coverage"`
	CollectionTriggered bool           `json:"collection_triggered,omitempty"`
	Notes               []string       `json:"notes,omitempty"`
}

// SearchResponse is the public result shape
type SearchResponse struct {
	Restaurants      []RestaurantResult `json:"restaurants"`
	Dishes           []DishResult       `json:"dishes"`
	TotalRestaurants int                `json:"total_restaurants"`
	TotalDishes      int                `json:"total_dishes"`
	Page             int                `json:"page"`
	PageSize         int                `json:"page_size"`
	Meta             Metadata           `json:"meta"`
	SQLPreview       string             `json:"sql_preview,omitempty"`
}

// PlanPreview is the response of the plan-only endpoint
type PlanPreview struct {
	Plan       QueryPlan      `json:"plan"`
	SQLPreview string         `json:"sql_preview"`
	Applied    AppliedFilters `json:"applied"`
}
