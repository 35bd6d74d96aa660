// Package domain defines the types and interfaces for the ondemand service
package domain

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of an on-demand request
type Status string

// Request lifecycle states
const (
	StatusPending    Status = "pending"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// GlobalLocationKey marks a request with no venue universe to search.
// Such requests are recorded but never auto-dispatched.
const GlobalLocationKey = "global"

// Input is one collection trigger as received from the search path
type Input struct {
	Term        string `json:"term" validate:"required,min=1,max=200"`
	EntityType  string `json:"entity_type" validate:"required,oneof=dish restaurant dish_category"`
	Reason      string `json:"reason" validate:"required,min=1,max=64"`
	LocationKey string `json:"location_key,omitempty"`
}

// Receipt reports what happened to one enqueued input
type Receipt struct {
	Queued bool   `json:"queued"`
	ETAMs  int64  `json:"eta_ms,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Request is one persisted on-demand record, unique per
// (term, entity_type, reason, location_key)
type Request struct {
	ID            string     `json:"id"`
	Term          string     `json:"term"`
	EntityType    string     `json:"entity_type"`
	Reason        string     `json:"reason"`
	LocationKey   string     `json:"location_key"`
	Status        Status     `json:"status"`
	Occurrences   int        `json:"occurrences"`
	EntityID      *string    `json:"entity_id,omitempty"`
	Metadata      Metadata   `json:"metadata"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Outcomes recorded in metadata after a run
const (
	OutcomeSuccess   = "success"
	OutcomeNoResults = "no_results"
	OutcomeError     = "error"
)

// Metadata is the open-ended structured blob on each request. Known fields
// are typed; unknown keys written by other versions round-trip untouched.
type Metadata struct {
	InstantCooldownUntil *time.Time           `json:"-"`
	LastRunAt            *time.Time           `json:"-"`
	LastOutcome          string               `json:"-"`
	DeferredAttempts     int                  `json:"-"`
	LastDeferReason      string               `json:"-"`
	SortRuns             map[string]time.Time `json:"-"`

	extra map[string]json.RawMessage
}

type metadataWire struct {
	InstantCooldownUntil *time.Time           `json:"instant_cooldown_until,omitempty"`
	LastRunAt            *time.Time           `json:"last_run_at,omitempty"`
	LastOutcome          string               `json:"last_outcome,omitempty"`
	DeferredAttempts     int                  `json:"deferred_attempts,omitempty"`
	LastDeferReason      string               `json:"last_defer_reason,omitempty"`
	SortRuns             map[string]time.Time `json:"sort_runs,omitempty"`
}

var knownMetadataKeys = map[string]bool{
	"instant_cooldown_until": true,
	"last_run_at":            true,
	"last_outcome":           true,
	"deferred_attempts":      true,
	"last_defer_reason":      true,
	"sort_runs":              true,
}

// MarshalJSON merges typed fields with preserved unknown keys
func (m Metadata) MarshalJSON() ([]byte, error) {
	wire := metadataWire{
		InstantCooldownUntil: m.InstantCooldownUntil,
		LastRunAt:            m.LastRunAt,
		LastOutcome:          m.LastOutcome,
		DeferredAttempts:     m.DeferredAttempts,
		LastDeferReason:      m.LastDeferReason,
		SortRuns:             m.SortRuns,
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}
	if len(m.extra) == 0 {
		return b, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	if merged == nil {
		merged = map[string]json.RawMessage{}
	}
	for k, v := range m.extra {
		if !knownMetadataKeys[k] {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON fills typed fields and stashes everything else
func (m *Metadata) UnmarshalJSON(b []byte) error {
	var wire metadataWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*m = Metadata{
		InstantCooldownUntil: wire.InstantCooldownUntil,
		LastRunAt:            wire.LastRunAt,
		LastOutcome:          wire.LastOutcome,
		DeferredAttempts:     wire.DeferredAttempts,
		LastDeferReason:      wire.LastDeferReason,
		SortRuns:             wire.SortRuns,
	}
	for k := range raw {
		if knownMetadataKeys[k] {
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		m.extra = raw
	}
	return nil
}

// BacklogCounts summarizes rows per status for the status endpoint
type BacklogCounts struct {
	Pending    int `json:"pending"`
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
}
