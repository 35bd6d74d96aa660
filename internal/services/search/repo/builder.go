// Package repo compiles query plans to SQL and runs them against Postgres
package repo

import (
	"fmt"
	"strings"

	"plateful/internal/services/search/domain"
)

// Window is the database-level pagination window
type Window struct {
	Limit  int
	Offset int
}

// Compiled is one parameterized statement ready for the store
type Compiled struct {
	SQL  string
	Args []any
}

// Queries bundles the four statements of one execution plus diagnostics
type Queries struct {
	Restaurants     Compiled
	Connections     Compiled
	RestaurantCount Compiled
	ConnectionCount Compiled
	Preview         string
	Applied         domain.AppliedFilters
}

// Compile turns a plan and window into the restaurant and connection
// statements, their count variants, an inlined preview and applied-filter
// metadata. Open-now never compiles to SQL; it is a post-fetch concern and
// only marks Applied.OpenNow.
func Compile(plan domain.QueryPlan, w Window, topK int) Queries {
	if topK <= 0 {
		topK = 3
	}
	var q Queries
	q.Applied = appliedOf(plan)

	q.Restaurants = compileRestaurants(plan, &w, topK, false)
	q.RestaurantCount = compileRestaurants(plan, nil, topK, true)
	q.Connections = compileConnections(plan, &w, false)
	q.ConnectionCount = compileConnections(plan, nil, true)

	q.Preview = "-- restaurants\n" + render(q.Restaurants) +
		"\n-- connections\n" + render(q.Connections)
	return q
}

func appliedOf(plan domain.QueryPlan) domain.AppliedFilters {
	var a domain.AppliedFilters
	for _, c := range plan.RestaurantFilters {
		switch c.Kind {
		case domain.KindBounds:
			a.Bounds = true
		case domain.KindOpenNow:
			a.OpenNow = true
		case domain.KindPrice:
			a.Price = len(c.PriceLevels) > 0
		}
	}
	for _, c := range plan.ConnectionFilters {
		if c.Kind == domain.KindMinVotes {
			a.MinVotes = true
		}
	}
	return a
}

type compiler struct {
	sb   strings.Builder
	args []any
}

func (c *compiler) arg(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

func compileRestaurants(plan domain.QueryPlan, w *Window, topK int, count bool) Compiled {
	var c compiler

	if count {
		c.sb.WriteString("SELECT COUNT(*)\n")
	} else {
		c.sb.WriteString(`SELECT
	r.id::text, r.name,
	loc.id::text, loc.address, loc.lat, loc.lng,
	loc.timezone, loc.utc_offset_minutes, loc.hours,
	r.price_level, r.display_rank, r.quality_score, r.votes, r.mentions,
	COALESCE(td.dishes, '[]'::jsonb)
`)
	}
	c.sb.WriteString("FROM restaurants r\n")
	c.writeLocationLateral(plan)
	if !count {
		fmt.Fprintf(&c.sb, `LEFT JOIN LATERAL (
	SELECT jsonb_agg(jsonb_build_object('id', x.dish_id, 'name', x.name, 'votes', x.votes)) AS dishes
	FROM (
		SELECT rd.dish_id, d.name, rd.votes
		FROM restaurant_dishes rd
		JOIN dishes d ON d.id = rd.dish_id
		WHERE rd.restaurant_id = r.id
		ORDER BY rd.votes DESC, rd.dish_id ASC
		LIMIT %d
	) x
) td ON TRUE
`, topK)
	}

	c.sb.WriteString("WHERE TRUE\n")
	for _, cl := range plan.RestaurantFilters {
		c.writeRestaurantClause(cl)
	}

	if !count {
		c.sb.WriteString(
			"ORDER BY COALESCE(r.display_rank, r.quality_score) DESC NULLS LAST, " +
				"r.votes DESC, r.mentions DESC, r.id ASC\n")
		c.sb.WriteString("LIMIT " + c.arg(w.Limit) + " OFFSET " + c.arg(w.Offset))
	}
	return Compiled{SQL: c.sb.String(), Args: c.args}
}

func compileConnections(plan domain.QueryPlan, w *Window, count bool) Compiled {
	var c compiler

	if count {
		c.sb.WriteString("SELECT COUNT(*)\n")
	} else {
		c.sb.WriteString(`SELECT
	r.id::text, r.name,
	loc.id::text, loc.address, loc.lat, loc.lng,
	loc.timezone, loc.utc_offset_minutes, loc.hours,
	r.price_level,
	d.id::text, d.name, d.category,
	rd.votes, rd.mentions
`)
	}
	c.sb.WriteString(`FROM restaurant_dishes rd
JOIN restaurants r ON r.id = rd.restaurant_id
JOIN dishes d ON d.id = rd.dish_id
`)
	c.writeLocationLateral(plan)

	c.sb.WriteString("WHERE TRUE\n")
	for _, cl := range plan.RestaurantFilters {
		c.writeRestaurantClause(cl)
	}
	for _, cl := range plan.ConnectionFilters {
		c.writeConnectionClause(cl)
	}

	if !count {
		c.sb.WriteString(
			"ORDER BY COALESCE(rd.display_rank, rd.quality_score) DESC NULLS LAST, " +
				"rd.votes DESC, rd.mentions DESC, rd.restaurant_id ASC, rd.dish_id ASC\n")
		c.sb.WriteString("LIMIT " + c.arg(w.Limit) + " OFFSET " + c.arg(w.Offset))
	}
	return Compiled{SQL: c.sb.String(), Args: c.args}
}

// writeLocationLateral picks one representative location per restaurant:
// closest to the search center when one exists, else the most recently
// updated, with the id as a deterministic tie-break either way
func (c *compiler) writeLocationLateral(plan domain.QueryPlan) {
	c.sb.WriteString(`JOIN LATERAL (
	SELECT l.id, l.address, l.lat, l.lng, l.timezone, l.utc_offset_minutes, l.hours
	FROM restaurant_locations l
	WHERE l.restaurant_id = r.id
`)
	if plan.Center != nil {
		lat := c.arg(plan.Center.Lat)
		lng := c.arg(plan.Center.Lng)
		c.sb.WriteString(
			"\tORDER BY (l.lat - " + lat + ")^2 + (l.lng - " + lng + ")^2 ASC, l.id ASC\n")
	} else {
		c.sb.WriteString("\tORDER BY l.updated_at DESC, l.id ASC\n")
	}
	c.sb.WriteString("\tLIMIT 1\n) loc ON TRUE\n")
}

func (c *compiler) writeRestaurantClause(cl domain.FilterClause) {
	switch cl.Kind {
	case domain.KindRestaurant:
		if len(cl.EntityIDs) == 0 {
			// explicit empty result, not an error
			c.sb.WriteString("  AND FALSE\n")
			return
		}
		c.sb.WriteString("  AND r.id = ANY(" + c.arg(cl.EntityIDs) + "::uuid[])\n")
	case domain.KindRestaurantAttribute:
		if len(cl.EntityIDs) == 0 {
			c.sb.WriteString("  AND FALSE\n")
			return
		}
		c.sb.WriteString("  AND r.attribute_ids && " + c.arg(cl.EntityIDs) + "::uuid[]\n")
	case domain.KindBounds:
		if cl.Bounds == nil {
			return
		}
		minLat, maxLat := cl.Bounds.MinMaxLat()
		minLng, maxLng := cl.Bounds.MinMaxLng()
		c.sb.WriteString("  AND loc.lat BETWEEN " + c.arg(minLat) + " AND " + c.arg(maxLat) + "\n")
		c.sb.WriteString("  AND loc.lng BETWEEN " + c.arg(minLng) + " AND " + c.arg(maxLng) + "\n")
	case domain.KindPrice:
		// an empty level set means no constraint, unlike empty entity IDs
		if len(cl.PriceLevels) == 0 {
			return
		}
		c.sb.WriteString("  AND r.price_level = ANY(" + c.arg(cl.PriceLevels) + "::int[])\n")
	case domain.KindOpenNow:
		// evaluated post-fetch
	}
}

func (c *compiler) writeConnectionClause(cl domain.FilterClause) {
	switch cl.Kind {
	case domain.KindDish:
		var ors []string
		if len(cl.EntityIDs) > 0 {
			ors = append(ors, "rd.dish_id = ANY("+c.arg(cl.EntityIDs)+"::uuid[])")
		}
		if len(cl.Categories) > 0 {
			ors = append(ors, "d.category = ANY("+c.arg(cl.Categories)+"::text[])")
		}
		if len(ors) == 0 {
			c.sb.WriteString("  AND FALSE\n")
			return
		}
		c.sb.WriteString("  AND (" + strings.Join(ors, " OR ") + ")\n")
	case domain.KindDishAttribute:
		if len(cl.EntityIDs) == 0 {
			c.sb.WriteString("  AND FALSE\n")
			return
		}
		c.sb.WriteString("  AND d.attribute_ids && " + c.arg(cl.EntityIDs) + "::uuid[]\n")
	case domain.KindMinVotes:
		n := c.arg(cl.MinVotes)
		c.sb.WriteString("  AND (rd.votes >= " + n + " OR r.votes >= " + n + ")\n")
	}
}
