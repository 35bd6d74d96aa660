// Package service implements the on-demand admission controller
package service

import (
	"context"
	"sort"
	"time"

	"plateful/internal/core/terms"
	"plateful/internal/modkit/repokit"
	"plateful/internal/platform/logger"
	"plateful/internal/services/ondemand/domain"
	"plateful/internal/services/ondemand/repo"
)

// Config tunes admission; zero values fall back to the defaults below
type Config struct {
	// InstantCooldown is stamped on a request after an empty or failed run
	InstantCooldown time.Duration

	// BaseInterval is the per-key safe interval between successful runs
	BaseInterval time.Duration

	// NoResultsMultiplier stretches the interval after a no-result run;
	// the effective cooldown never drops below CooldownFloor
	NoResultsMultiplier int
	CooldownFloor       time.Duration

	// Backpressure limits against the shared collection queue
	MaxWaiting           int
	MaxActive            int
	MaxProcessingBacklog int

	// SortModes maps each result sort mode to its own refresh interval
	SortModes map[string]time.Duration

	SweepBatch     int
	Concurrency    int
	TickEvery      time.Duration
	EstimatedCycle time.Duration
}

func (c Config) withDefaults() Config {
	if c.InstantCooldown <= 0 {
		c.InstantCooldown = 30 * time.Minute
	}
	if c.BaseInterval <= 0 {
		c.BaseInterval = 6 * time.Hour
	}
	if c.NoResultsMultiplier <= 0 {
		c.NoResultsMultiplier = 4
	}
	if c.CooldownFloor <= 0 {
		c.CooldownFloor = time.Hour
	}
	if c.MaxWaiting <= 0 {
		c.MaxWaiting = 10
	}
	if c.MaxActive <= 0 {
		c.MaxActive = 3
	}
	if c.MaxProcessingBacklog <= 0 {
		c.MaxProcessingBacklog = 25
	}
	if len(c.SortModes) == 0 {
		c.SortModes = map[string]time.Duration{
			"newest":        6 * time.Hour,
			"top_past_week": 24 * time.Hour,
		}
	}
	if c.SweepBatch <= 0 {
		c.SweepBatch = 10
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}
	if c.TickEvery <= 0 {
		c.TickEvery = 15 * time.Second
	}
	if c.EstimatedCycle <= 0 {
		c.EstimatedCycle = 90 * time.Second
	}
	return c
}

// Svc implements domain.EnqueuePort, domain.StatusPort and domain.WorkerPort
type Svc struct {
	storage    repo.Storage
	collection domain.CollectionPort
	cfg        Config
	log        logger.Logger
	now        func() time.Time

	// dispatch hands an admitted request to the processing stage;
	// the default runs it in a detached goroutine (fire and forget)
	dispatch func(r domain.Request, sortPlan []string)
}

// New constructs the ondemand service
func New(
	db repokit.Queryer,
	b repokit.Binder[repo.Storage],
	collection domain.CollectionPort,
	cfg Config,
) *Svc {
	s := &Svc{
		storage:    repokit.MustBind(b, db),
		collection: collection,
		cfg:        cfg.withDefaults(),
		log:        *logger.Named("ondemand"),
		now:        time.Now,
	}
	s.dispatch = func(r domain.Request, sortPlan []string) {
		// a triggered cycle outlives the originating request
		go s.process(context.Background(), r, sortPlan)
	}
	return s
}

var (
	_ domain.EnqueuePort = (*Svc)(nil)
	_ domain.StatusPort  = (*Svc)(nil)
	_ domain.WorkerPort  = (*Svc)(nil)
)

// Enqueue implements domain.EnqueuePort. The backlog sweep runs first so
// organically-stale requests get serviced even without a fresh matching query.
func (s *Svc) Enqueue(ctx context.Context, inputs []domain.Input) ([]domain.Receipt, error) {
	s.sweep(ctx)

	out := make([]domain.Receipt, 0, len(inputs))
	for _, in := range inputs {
		// canonical term form is the record's identity
		in.Term = terms.Key(in.Term)
		r, err := s.storage.UpsertOccurrence(ctx, in)
		if err != nil {
			return nil, err
		}
		out = append(out, s.admit(ctx, r))
	}
	return out, nil
}

// Backlog implements domain.StatusPort
func (s *Svc) Backlog(ctx context.Context) (domain.BacklogCounts, error) {
	return s.storage.Backlog(ctx)
}

// sweep pulls the highest-occurrence, longest-unseen pending rows and runs
// them through the same admission logic
func (s *Svc) sweep(ctx context.Context) {
	rows, err := s.storage.SweepBatch(ctx, s.cfg.SweepBatch)
	if err != nil {
		s.log.Warn().Err(err).Msg("backlog sweep failed")
		return
	}
	for _, r := range rows {
		s.admit(ctx, r)
	}
}

// admit walks the gates in order and either queues the request or defers it.
// Deferrals record their reason but never change status.
func (s *Svc) admit(ctx context.Context, r domain.Request) domain.Receipt {
	if r.Status != domain.StatusPending {
		// a concurrent trigger already advanced this key
		return domain.Receipt{Reason: "already_" + string(r.Status)}
	}
	if r.LocationKey == domain.GlobalLocationKey || r.LocationKey == "" {
		return s.deferral(ctx, r, "no_location")
	}

	now := s.now()
	md := r.Metadata

	if md.InstantCooldownUntil != nil && md.InstantCooldownUntil.After(now) {
		return s.deferral(ctx, r, "instant_cooldown")
	}

	if md.LastRunAt != nil {
		interval := s.cfg.BaseInterval
		if md.LastOutcome == domain.OutcomeNoResults {
			interval = s.cfg.BaseInterval * time.Duration(s.cfg.NoResultsMultiplier)
			if interval < s.cfg.CooldownFloor {
				interval = s.cfg.CooldownFloor
			}
		}
		if now.Sub(*md.LastRunAt) < interval {
			return s.deferral(ctx, r, "refresh_interval")
		}
	}

	waiting := 0
	depth, err := s.collection.QueueDepth(ctx)
	switch {
	case err != nil:
		// fail open: a monitoring outage must not starve requests
		s.log.Warn().Err(err).Msg("queue depth introspection failed; admitting")
	case depth.Execution.Waiting >= s.cfg.MaxWaiting,
		depth.Execution.Active >= s.cfg.MaxActive,
		depth.Processing.Waiting >= s.cfg.MaxProcessingBacklog:
		return s.deferral(ctx, r, "backpressure")
	default:
		waiting = depth.Execution.Waiting
	}

	sortPlan := s.dueSorts(md, now)
	if len(sortPlan) == 0 {
		return s.deferral(ctx, r, "sorts_not_due")
	}

	won, err := s.storage.Transition(ctx, r.ID, domain.StatusPending, domain.StatusQueued)
	if err != nil {
		s.log.Error().Err(err).Str("request_id", r.ID).Msg("queue transition failed")
		return domain.Receipt{Reason: "transition_error"}
	}
	if !won {
		return domain.Receipt{Reason: "already_advanced"}
	}

	s.dispatch(r, sortPlan)
	eta := s.cfg.EstimatedCycle * time.Duration(waiting+1)
	return domain.Receipt{Queued: true, ETAMs: eta.Milliseconds()}
}

// deferral bumps the deferred counter and records why, leaving status alone
func (s *Svc) deferral(ctx context.Context, r domain.Request, reason string) domain.Receipt {
	md := r.Metadata
	md.DeferredAttempts++
	md.LastDeferReason = reason
	if err := s.storage.SaveMetadata(ctx, r.ID, md); err != nil {
		s.log.Warn().Err(err).Str("request_id", r.ID).Msg("deferral metadata write failed")
	}
	return domain.Receipt{Reason: reason}
}

// dueSorts returns the sort modes whose own refresh interval has elapsed,
// in stable order
func (s *Svc) dueSorts(md domain.Metadata, now time.Time) []string {
	var due []string
	for mode, interval := range s.cfg.SortModes {
		last, ok := md.SortRuns[mode]
		if !ok || now.Sub(last) >= interval {
			due = append(due, mode)
		}
	}
	sort.Strings(due)
	return due
}
