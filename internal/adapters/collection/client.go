// Package collection provides an HTTP client for the collection subsystem
// that crawls external sources for restaurant and dish mentions
package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "plateful/internal/platform/errors"
	"plateful/internal/platform/logger"
	"plateful/internal/services/ondemand/domain"
)

const (
	defaultTimeout   = 5 * time.Minute
	defaultUA        = "plateful-ondemand"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transient responses; cycle calls are never retried
	// since a cycle may have partially executed
	MaxRetries int
	RetryBase  time.Duration
}

// Client talks to the collection service over its internal REST API
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("collection"),
		sleep: time.Sleep,
	}
}

var _ domain.CollectionPort = (*Client)(nil)

type cycleRequest struct {
	LocationKey     string   `json:"location_key"`
	PriorityTargets []string `json:"priority_targets"`
	SortPlan        []string `json:"sort_plan"`
}

// ExecuteKeywordSearchCycle runs one blocking crawl cycle for the given
// location and terms. The call is long lived and deliberately unretried.
func (c *Client) ExecuteKeywordSearchCycle(
	ctx context.Context, locationKey string, priorityTargets []string, sortPlan []string,
) (domain.CycleResult, error) {
	payload, err := json.Marshal(cycleRequest{
		LocationKey:     locationKey,
		PriorityTargets: priorityTargets,
		SortPlan:        sortPlan,
	})
	if err != nil {
		return domain.CycleResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "collection cycle encode failed")
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.opts.BaseURL+"/internal/cycles", bytes.NewReader(payload),
	)
	if err != nil {
		return domain.CycleResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "collection cycle request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.CycleResult{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "collection cycle do failed")
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("location_key", locationKey).
		Msg("collection cycle response")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return domain.CycleResult{}, perr.Newf(
			perr.ErrorCodeUnavailable, "collection cycle status %d body %s", resp.StatusCode, string(body),
		)
	}

	var out domain.CycleResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.CycleResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "collection cycle decode failed")
	}
	return out, nil
}

// QueueDepth reads the collection backlog snapshot. Transient failures are
// retried with exponential backoff; callers treat a final error as unknown
// depth, not as an empty queue.
func (c *Client) QueueDepth(ctx context.Context) (domain.QueueDepth, error) {
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return domain.QueueDepth{}, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/internal/queues", nil)
		if err != nil {
			return domain.QueueDepth{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "collection depth request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			if !c.shouldRetry(attempts) {
				return domain.QueueDepth{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "collection depth do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("collection transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var out domain.QueueDepth
			err := json.NewDecoder(resp.Body).Decode(&out)
			_ = drainAndClose(resp.Body)
			if err != nil {
				return domain.QueueDepth{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "collection depth decode failed")
			}
			return out, nil
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return domain.QueueDepth{}, perr.Newf(perr.ErrorCodeUnavailable, "collection depth transient error")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("collection transient error retrying")
			c.sleep(back)
			attempts++
			continue
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = drainAndClose(resp.Body)
			return domain.QueueDepth{}, perr.Newf(
				perr.ErrorCodeUnknown, "collection depth status %d body %s", resp.StatusCode, string(body),
			)
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(10 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	return rc.Close()
}
