package domain

import "context"

// StageDepth is one queue stage's job counts
type StageDepth struct {
	Waiting int `json:"waiting"`
	Active  int `json:"active"`
	Delayed int `json:"delayed"`
}

// QueueDepth is the collection subsystem's backlog snapshot
type QueueDepth struct {
	Execution  StageDepth `json:"execution"`
	Processing StageDepth `json:"processing"`
}

// CycleResult is the outcome of one keyword search cycle
type CycleResult struct {
	SearchResults     int    `json:"search_results"`
	ProcessingResults int    `json:"processing_results"`
	EntityID          string `json:"entity_id,omitempty"`
	Found             bool   `json:"found"`
}

// CollectionPort is the opaque surface of the external collection subsystem.
// The controller only inspects counts and success signals.
type CollectionPort interface {
	ExecuteKeywordSearchCycle(
		ctx context.Context,
		locationKey string,
		priorityTargets []string,
		sortPlan []string,
	) (CycleResult, error)
	QueueDepth(ctx context.Context) (QueueDepth, error)
}

// EnqueuePort admits collection triggers; one receipt per input
type EnqueuePort interface {
	Enqueue(ctx context.Context, inputs []Input) ([]Receipt, error)
}

// StatusPort reports backlog state
type StatusPort interface {
	Backlog(ctx context.Context) (BacklogCounts, error)
}

// WorkerPort runs the backlog sweep loop until the context ends
type WorkerPort interface {
	Run(ctx context.Context) error
}
