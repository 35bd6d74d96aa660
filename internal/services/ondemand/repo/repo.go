// Package repo provides the ondemand repository implementation
package repo

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"plateful/internal/core/terms"
	"plateful/internal/modkit/repokit"
	"plateful/internal/services/ondemand/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the ondemand persistence surface. Every status change is a
// single conditional update keyed on the expected current status, never a
// read-then-write pair.
type Storage interface {
	UpsertOccurrence(ctx context.Context, in domain.Input) (domain.Request, error)
	Transition(ctx context.Context, id string, from, to domain.Status) (bool, error)
	SaveMetadata(ctx context.Context, id string, md domain.Metadata) error
	Complete(ctx context.Context, id, entityID string) (bool, error)
	RevertToPending(ctx context.Context, id string, md domain.Metadata, attemptAt time.Time) (bool, error)
	SweepBatch(ctx context.Context, limit int) ([]domain.Request, error)
	Backlog(ctx context.Context) (domain.BacklogCounts, error)
	ResolveEntity(ctx context.Context, term, entityType string) (string, error)
	CreatePlaceholder(ctx context.Context, term, entityType string) (string, error)
}

const requestColumns = `
	id::text, term, entity_type, reason, location_key,
	status::text, occurrences, entity_id::text, metadata,
	last_attempt_at, created_at, updated_at`

// UpsertOccurrence implements Storage. A fresh key inserts pending with one
// occurrence; a known key bumps the counter and leaves status alone.
func (s *pg) UpsertOccurrence(ctx context.Context, in domain.Input) (domain.Request, error) {
	key := in.LocationKey
	if key == "" {
		key = domain.GlobalLocationKey
	}
	const sql = `
		INSERT INTO on_demand_requests
			(id, term, entity_type, reason, location_key, status, occurrences, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', 1, '{}'::jsonb, NOW(), NOW())
		ON CONFLICT (term, entity_type, reason, location_key) DO UPDATE
		SET occurrences = on_demand_requests.occurrences + 1,
		    updated_at  = NOW()
		RETURNING` + requestColumns

	row := s.q.QueryRow(ctx, sql, uuid.NewString(), in.Term, in.EntityType, in.Reason, key)
	return scanRequest(row)
}

// Transition implements Storage; reports whether the CAS won
func (s *pg) Transition(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	const sql = `
		UPDATE on_demand_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`
	tag, err := s.q.Exec(ctx, sql, id, string(from), string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SaveMetadata implements Storage
func (s *pg) SaveMetadata(ctx context.Context, id string, md domain.Metadata) error {
	b, err := json.Marshal(md)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx,
		`UPDATE on_demand_requests SET metadata = $2, updated_at = NOW() WHERE id = $1`,
		id, b)
	return err
}

// Complete implements Storage: processing to completed with the resolved or
// placeholder entity id
func (s *pg) Complete(ctx context.Context, id, entityID string) (bool, error) {
	const sql = `
		UPDATE on_demand_requests
		SET status = 'completed', entity_id = $2::uuid, updated_at = NOW()
		WHERE id = $1 AND status = 'processing'`
	tag, err := s.q.Exec(ctx, sql, id, entityID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RevertToPending implements Storage: a live record falls back to pending
// with its cooldown metadata and attempt stamp
func (s *pg) RevertToPending(
	ctx context.Context,
	id string,
	md domain.Metadata,
	attemptAt time.Time,
) (bool, error) {
	b, err := json.Marshal(md)
	if err != nil {
		return false, err
	}
	const sql = `
		UPDATE on_demand_requests
		SET status = 'pending', metadata = $2, last_attempt_at = $3, updated_at = NOW()
		WHERE id = $1 AND status IN ('queued', 'processing')`
	tag, err := s.q.Exec(ctx, sql, id, b, attemptAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SweepBatch implements Storage: highest-occurrence, longest-unseen pending
// rows first
func (s *pg) SweepBatch(ctx context.Context, limit int) ([]domain.Request, error) {
	const sql = `
		SELECT` + requestColumns + `
		FROM on_demand_requests
		WHERE status = 'pending'
		ORDER BY occurrences DESC, COALESCE(last_attempt_at, created_at) ASC
		LIMIT $1`
	rows, err := s.q.Query(ctx, sql, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Backlog implements Storage
func (s *pg) Backlog(ctx context.Context) (domain.BacklogCounts, error) {
	rows, err := s.q.Query(ctx,
		`SELECT status::text, COUNT(*) FROM on_demand_requests GROUP BY status`)
	if err != nil {
		return domain.BacklogCounts{}, err
	}
	defer rows.Close()

	var out domain.BacklogCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return domain.BacklogCounts{}, err
		}
		switch domain.Status(status) {
		case domain.StatusPending:
			out.Pending = n
		case domain.StatusQueued:
			out.Queued = n
		case domain.StatusProcessing:
			out.Processing = n
		case domain.StatusCompleted:
			out.Completed = n
		}
	}
	return out, rows.Err()
}

// ResolveEntity implements Storage: look up an existing entity by normalized
// name; "" means unresolved
func (s *pg) ResolveEntity(ctx context.Context, term, entityType string) (string, error) {
	var sql string
	switch entityType {
	case "restaurant":
		sql = `SELECT id::text FROM restaurants WHERE lower(name) = lower($1) LIMIT 1`
	case "dish_category":
		sql = `SELECT id::text FROM dishes WHERE lower(category) = lower($1) LIMIT 1`
	default:
		sql = `SELECT id::text FROM dishes WHERE lower(name) = lower($1) LIMIT 1`
	}
	var id string
	if err := s.q.QueryRow(ctx, sql, term).Scan(&id); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// CreatePlaceholder implements Storage: an unresolved term still completes
// against a placeholder entity so later runs can attach data to it
func (s *pg) CreatePlaceholder(ctx context.Context, term, entityType string) (string, error) {
	id := uuid.NewString()
	var sql string
	switch entityType {
	case "restaurant":
		sql = `INSERT INTO restaurants (id, name, placeholder, created_at, updated_at)
		       VALUES ($1, $2, TRUE, NOW(), NOW())`
	default:
		sql = `INSERT INTO dishes (id, name, placeholder, created_at, updated_at)
		       VALUES ($1, $2, TRUE, NOW(), NOW())`
	}
	if _, err := s.q.Exec(ctx, sql, id, terms.Display(term)); err != nil {
		return "", err
	}
	return id, nil
}

func scanRequest(row interface{ Scan(...any) error }) (domain.Request, error) {
	var (
		r        domain.Request
		status   string
		entityID *string
		meta     []byte
	)
	if err := row.Scan(
		&r.ID, &r.Term, &r.EntityType, &r.Reason, &r.LocationKey,
		&status, &r.Occurrences, &entityID, &meta,
		&r.LastAttemptAt, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return domain.Request{}, err
	}
	r.Status = domain.Status(status)
	r.EntityID = entityID
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &r.Metadata); err != nil {
			return domain.Request{}, err
		}
	}
	return r, nil
}
