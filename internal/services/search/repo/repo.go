package repo

import (
	"context"

	"plateful/internal/modkit/repokit"
	"plateful/internal/services/search/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage runs compiled search statements
type Storage interface {
	Restaurants(ctx context.Context, c Compiled) ([]domain.RestaurantRow, error)
	Connections(ctx context.Context, c Compiled) ([]domain.ConnectionRow, error)
	Count(ctx context.Context, c Compiled) (int, error)
}

// Restaurants implements Storage
func (s *pg) Restaurants(ctx context.Context, c Compiled) ([]domain.RestaurantRow, error) {
	rows, err := s.q.Query(ctx, c.SQL, c.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RestaurantRow
	for rows.Next() {
		var r domain.RestaurantRow
		if err := rows.Scan(
			&r.ID, &r.Name,
			&r.LocationID, &r.Address, &r.Lat, &r.Lng,
			&r.Timezone, &r.UTCOffset, &r.HoursSource,
			&r.PriceLevel, &r.DisplayRank, &r.QualityScore, &r.Votes, &r.Mentions,
			&r.TopDishes,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Connections implements Storage
func (s *pg) Connections(ctx context.Context, c Compiled) ([]domain.ConnectionRow, error) {
	rows, err := s.q.Query(ctx, c.SQL, c.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ConnectionRow
	for rows.Next() {
		var r domain.ConnectionRow
		if err := rows.Scan(
			&r.RestaurantID, &r.RestaurantName,
			&r.LocationID, &r.Address, &r.Lat, &r.Lng,
			&r.Timezone, &r.UTCOffset, &r.HoursSource,
			&r.PriceLevel,
			&r.DishID, &r.DishName, &r.Category,
			&r.Votes, &r.Mentions,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count implements Storage
func (s *pg) Count(ctx context.Context, c Compiled) (int, error) {
	var n int
	if err := s.q.QueryRow(ctx, c.SQL, c.Args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
