package service

import (
	"context"
	"time"

	tim "plateful/internal/platform/time"
	"plateful/internal/services/ondemand/domain"
)

// process runs one admitted request through the collection cycle and owns
// every transition after queued. It never returns an error to the caller;
// failures land in the request's metadata and cooldown.
func (s *Svc) process(ctx context.Context, r domain.Request, sortPlan []string) {
	won, err := s.storage.Transition(ctx, r.ID, domain.StatusQueued, domain.StatusProcessing)
	if err != nil {
		s.log.Error().Err(err).Str("request_id", r.ID).Msg("processing transition failed")
		return
	}
	if !won {
		return
	}

	res, cycleErr := s.collection.ExecuteKeywordSearchCycle(ctx, r.LocationKey, []string{r.Term}, sortPlan)

	now := s.now()
	md := r.Metadata
	md.LastRunAt = tim.Ptr(now)
	if md.SortRuns == nil {
		md.SortRuns = map[string]time.Time{}
	}
	for _, mode := range sortPlan {
		md.SortRuns[mode] = now
	}

	switch {
	case cycleErr != nil:
		md.LastOutcome = domain.OutcomeError
		md.InstantCooldownUntil = tim.Ptr(now.Add(s.cfg.InstantCooldown))
		s.log.Warn().Err(cycleErr).
			Str("request_id", r.ID).
			Str("term", r.Term).
			Msg("collection cycle failed")
		s.revert(ctx, r.ID, md)

	case !res.Found && res.SearchResults == 0:
		md.LastOutcome = domain.OutcomeNoResults
		md.InstantCooldownUntil = tim.Ptr(now.Add(s.cfg.InstantCooldown))
		s.revert(ctx, r.ID, md)

	default:
		md.LastOutcome = domain.OutcomeSuccess
		md.InstantCooldownUntil = nil
		s.complete(ctx, r, md, res)
	}
}

func (s *Svc) revert(ctx context.Context, id string, md domain.Metadata) {
	if _, err := s.storage.RevertToPending(ctx, id, md, *md.LastRunAt); err != nil {
		s.log.Error().Err(err).Str("request_id", id).Msg("revert to pending failed")
	}
}

// complete resolves the backing entity (or creates a placeholder) and marks
// the request completed
func (s *Svc) complete(ctx context.Context, r domain.Request, md domain.Metadata, res domain.CycleResult) {
	entityID := res.EntityID
	if entityID == "" {
		var err error
		entityID, err = s.storage.ResolveEntity(ctx, r.Term, r.EntityType)
		if err != nil {
			s.log.Error().Err(err).Str("request_id", r.ID).Msg("entity resolution failed")
		}
	}
	if entityID == "" {
		var err error
		entityID, err = s.storage.CreatePlaceholder(ctx, r.Term, r.EntityType)
		if err != nil {
			s.log.Error().Err(err).Str("request_id", r.ID).Msg("placeholder creation failed")
			// fall back to pending so a later run can retry the resolution
			md.LastOutcome = domain.OutcomeError
			md.InstantCooldownUntil = tim.Ptr(s.now().Add(s.cfg.InstantCooldown))
			s.revert(ctx, r.ID, md)
			return
		}
	}

	if err := s.storage.SaveMetadata(ctx, r.ID, md); err != nil {
		s.log.Warn().Err(err).Str("request_id", r.ID).Msg("completion metadata write failed")
	}
	if _, err := s.storage.Complete(ctx, r.ID, entityID); err != nil {
		s.log.Error().Err(err).Str("request_id", r.ID).Msg("completion transition failed")
	}
}
